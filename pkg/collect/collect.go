// Package collect implements the per-domain collectors: connect, send the
// platform-mapped command(s), parse, normalize, tag with device identity.
// Concurrency across devices uses alitto/pond/v2's result-pool group, so a
// failing device never aborts the call — its error is isolated and reported
// alongside the results collected from every other device.
package collect

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/fleetssh"
	"github.com/fleetsync/fleetsync/pkg/platform"
	"github.com/fleetsync/fleetsync/pkg/statecache"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// Options configures one collector call.
type Options struct {
	Credentials fleetdevice.Credentials
	MaxWorkers  int
	SSH         fleetssh.Options
	Facade      *textparse.Facade
	// Cache, when non-nil, is consulted before every command send and
	// populated after every live collect, so repeated calls against an
	// unchanged device within the cache's TTL skip the SSH round-trip.
	Cache *statecache.Client
}

func (o Options) maxWorkersOrDefault() int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return 5
}

func (o Options) facadeOrDefault() *textparse.Facade {
	if o.Facade != nil {
		return o.Facade
	}
	return textparse.NewFacade()
}

// DeviceError pairs a device with the error collecting from it produced.
// A failing device contributes an empty result and an entry here — it
// never aborts the overall call.
type DeviceError struct {
	Device *fleetdevice.Device
	Err    error
}

// resolvedDevice is what every per-device worker needs once it knows which
// platform entry and command map apply.
type resolvedDevice struct {
	device   *fleetdevice.Device
	entry    platform.Entry
	fellBack bool
}

func resolve(dev *fleetdevice.Device) resolvedDevice {
	entry, fellBack := platform.LookupOrFallback(dev.PlatformTag)
	return resolvedDevice{device: dev, entry: entry, fellBack: fellBack}
}

// runPerDevice fans work out across devices with a bounded worker pool,
// isolating each device's error instead of failing the whole call. work is
// called once per device inside the pool; it returns the records that
// device contributed and its error (nil on success).
func runPerDevice[T any](ctx context.Context, devices []*fleetdevice.Device, maxWorkers int, work func(ctx context.Context, dev *fleetdevice.Device) ([]T, error)) ([]T, []DeviceError) {
	pool := pond.NewResultPool[perDeviceResult[T]](maxWorkers)
	group := pool.NewGroupContext(ctx)

	for _, d := range devices {
		dev := d
		group.SubmitErr(func() (perDeviceResult[T], error) {
			records, err := work(ctx, dev)
			return perDeviceResult[T]{device: dev, records: records, err: err}, nil
		})
	}

	results, _ := group.Wait()

	var all []T
	var errs []DeviceError
	for _, r := range results {
		if r.err != nil {
			logging.WithDevice(r.device.Host).WithError(r.err).Warn("collector: device failed")
			errs = append(errs, DeviceError{Device: r.device, Err: r.err})
			continue
		}
		all = append(all, r.records...)
	}
	return all, errs
}

type perDeviceResult[T any] struct {
	device  *fleetdevice.Device
	records []T
	err     error
}

func openAndSend(ctx context.Context, dev *fleetdevice.Device, creds fleetdevice.Credentials, opts fleetssh.Options, cache *statecache.Client, commands ...string) ([]string, error) {
	outputs := make([]string, len(commands))
	var uncached []int
	for i, cmd := range commands {
		if cmd == "" {
			continue
		}
		if out, ok := cache.Get(ctx, dev.Host, cmd); ok {
			outputs[i] = out
			continue
		}
		uncached = append(uncached, i)
	}
	if len(uncached) == 0 {
		return outputs, nil
	}

	err := fleetssh.WithSession(ctx, dev, creds, opts, func(sess *fleetssh.Session) error {
		for _, i := range uncached {
			cmd := commands[i]
			out, err := sess.SendCommand(cmd)
			if err != nil {
				return err
			}
			outputs[i] = out
			cache.Set(ctx, dev.Host, cmd, out)
		}
		return nil
	})
	return outputs, err
}

// softBudget is the soft per-device time budget collectors log a warning
// against; it does not cancel in-flight work.
const softBudget = 60 * time.Second
