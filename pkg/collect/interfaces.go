package collect

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/normalize"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// Interfaces collects the three interface-shaped commands (detail, status,
// description) and merges them into one record per interface.
func Interfaces(ctx context.Context, devices []*fleetdevice.Device, opts Options) ([]model.Interface, []DeviceError) {
	facade := opts.facadeOrDefault()
	return runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]model.Interface, error) {
		rd := resolve(dev)
		cmds := rd.entry.Commands
		outputs, err := openAndSend(ctx, dev, opts.Credentials, opts.SSH, opts.Cache, cmds.Interfaces, cmds.InterfaceStatus, cmds.InterfaceDescriptions)
		if err != nil {
			return nil, err
		}

		detail, err := facade.Parse(rd.entry.TemplatePlatform, cmds.Interfaces, textparse.DomainInterfaces, outputs[0])
		if err != nil {
			return nil, err
		}
		status, err := facade.Parse(rd.entry.TemplatePlatform, cmds.InterfaceStatus, textparse.DomainInterfaceStatus, outputs[1])
		if err != nil {
			return nil, err
		}
		description, err := facade.Parse(rd.entry.TemplatePlatform, cmds.InterfaceDescriptions, textparse.DomainInterfaceDescriptions, outputs[2])
		if err != nil {
			return nil, err
		}

		return normalize.NormalizeInterfaces(detail, status, description, normalize.InterfaceOptions{
			DeviceHostname: dev.Hostname,
			DeviceHost:     dev.Host,
		}), nil
	})
}
