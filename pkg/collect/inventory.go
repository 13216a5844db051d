package collect

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/normalize"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// Inventory collects "show inventory" (platform-mapped) and normalizes
// each row into a typed InventoryItem.
func Inventory(ctx context.Context, devices []*fleetdevice.Device, opts Options) ([]model.InventoryItem, []DeviceError) {
	facade := opts.facadeOrDefault()
	return runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]model.InventoryItem, error) {
		rd := resolve(dev)
		outputs, err := openAndSend(ctx, dev, opts.Credentials, opts.SSH, opts.Cache, rd.entry.Commands.InventoryModules)
		if err != nil {
			return nil, err
		}
		rows, err := facade.Parse(rd.entry.TemplatePlatform, rd.entry.Commands.InventoryModules, textparse.DomainInventory, outputs[0])
		if err != nil {
			return nil, err
		}
		name := dev.Hostname
		if name == "" {
			name = dev.Host
		}
		return normalize.NormalizeInventory(rows, name), nil
	})
}
