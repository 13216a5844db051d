package collect

import (
	"context"
	"time"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/fleetssh"
)

// DeviceInfo opens a session to each device to probe reachability and
// hostname/status; it carries no per-domain command beyond what connection
// open already requires (the open sequence already sets
// hostname and status on success).
func DeviceInfo(ctx context.Context, devices []*fleetdevice.Device, opts Options) []DeviceError {
	_, errs := runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]struct{}, error) {
		start := time.Now()
		err := fleetssh.WithSession(ctx, dev, opts.Credentials, opts.SSH, func(sess *fleetssh.Session) error {
			dev.SetConnected(sess.Hostname, time.Now())
			return nil
		})
		if err != nil {
			dev.SetError(err)
			return nil, err
		}
		if elapsed := time.Since(start); elapsed > softBudget {
			logging.WithDevice(dev.Host).Warnf("device-info collection exceeded soft budget: %s", elapsed)
		}
		return nil, nil
	})
	return errs
}
