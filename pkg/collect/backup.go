package collect

import (
	"context"
	"time"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

// ConfigSnapshot is one device's raw running-configuration text, captured
// verbatim for config-backup — this collector deliberately skips the
// parse/normalize stages since a backup is stored, not reconciled.
type ConfigSnapshot struct {
	DeviceHostname string
	DeviceHost     string
	CapturedAt     time.Time
	Config         string
}

// ConfigBackup captures each device's running configuration verbatim.
func ConfigBackup(ctx context.Context, devices []*fleetdevice.Device, opts Options) ([]ConfigSnapshot, []DeviceError) {
	return runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]ConfigSnapshot, error) {
		rd := resolve(dev)
		outputs, err := openAndSend(ctx, dev, opts.Credentials, opts.SSH, opts.Cache, rd.entry.Commands.RunningConfig)
		if err != nil {
			return nil, err
		}
		return []ConfigSnapshot{{
			DeviceHostname: dev.Hostname,
			DeviceHost:     dev.Host,
			CapturedAt:     time.Now(),
			Config:         outputs[0],
		}}, nil
	})
}
