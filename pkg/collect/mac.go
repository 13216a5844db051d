package collect

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/normalize"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// MACTable collects "show mac address-table" (platform-mapped) plus an
// interface-status snapshot, parses, and normalizes into deduplicated
// MACEntry records tagged with device identity.
func MACTable(ctx context.Context, devices []*fleetdevice.Device, opts Options) ([]model.MACEntry, []DeviceError) {
	facade := opts.facadeOrDefault()
	return runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]model.MACEntry, error) {
		rd := resolve(dev)
		outputs, err := openAndSend(ctx, dev, opts.Credentials, opts.SSH, opts.Cache, rd.entry.Commands.MACTable, rd.entry.Commands.InterfaceStatus)
		if err != nil {
			return nil, err
		}

		macRows, err := facade.Parse(rd.entry.TemplatePlatform, rd.entry.Commands.MACTable, textparse.DomainMACTable, outputs[0])
		if err != nil {
			return nil, err
		}
		statusRows, err := facade.Parse(rd.entry.TemplatePlatform, rd.entry.Commands.InterfaceStatus, textparse.DomainInterfaceStatus, outputs[1])
		if err != nil {
			return nil, err
		}

		return normalize.NormalizeMACTable(macRows, normalize.MACTableOptions{
			DeviceHostname: dev.Hostname,
			DeviceHost:     dev.Host,
			PortStatus:     portStatusByInterface(statusRows),
		}), nil
	})
}

func portStatusByInterface(rows []textparse.Row) map[string]model.PortStatus {
	out := make(map[string]model.PortStatus, len(rows))
	for _, row := range rows {
		iface := normalize.CanonicalInterfaceName(row["interface"])
		if iface == "" {
			continue
		}
		switch row["status"] {
		case "connected":
			out[iface] = model.PortOnline
		case "notconnect", "disabled", "err-disabled":
			out[iface] = model.PortOffline
		default:
			out[iface] = model.PortUnknown
		}
	}
	return out
}
