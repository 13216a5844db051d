package fleetapi

import (
	"context"
	"fmt"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/pipeline"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

// PipelineCollector implements pipeline.Collector over pkg/collect, the
// concrete wiring cmd/fleetsync and cmd/fleetsyncd both need between the
// generic executor and the real collection engine.
type PipelineCollector struct {
	Options collect.Options
}

func logDeviceErrors(operation string, errs []collect.DeviceError) {
	if len(errs) == 0 {
		return
	}
	log := logging.WithOperation(operation)
	for _, e := range errs {
		log.WithField("device", e.Device.Host).Warn(e.Err)
	}
}

// totalFailure reports whether every device in the run failed, in which
// case the collect step itself should fail rather than produce an empty
// result silently (the per-device isolation stops at "isolate",
// it never promises a usable result out of zero successes).
func totalFailure(total int, errs []collect.DeviceError) error {
	if total > 0 && len(errs) >= total {
		return fmt.Errorf("collection failed for all %d devices: %w", total, errs[0].Err)
	}
	return nil
}

func (c PipelineCollector) Collect(ctx context.Context, target string, rc *pipeline.RunContext) (any, error) {
	opts := c.Options
	opts.Credentials = rc.Credentials

	switch target {
	case "interfaces":
		items, errs := collect.Interfaces(ctx, rc.Devices, opts)
		logDeviceErrors("collect_interfaces", errs)
		return items, totalFailure(len(rc.Devices), errs)
	case "mac":
		items, errs := collect.MACTable(ctx, rc.Devices, opts)
		logDeviceErrors("collect_mac", errs)
		return items, totalFailure(len(rc.Devices), errs)
	case "neighbors":
		items, errs := collect.Neighbors(ctx, rc.Devices, opts)
		logDeviceErrors("collect_neighbors", errs)
		return items, totalFailure(len(rc.Devices), errs)
	case "inventory":
		items, errs := collect.Inventory(ctx, rc.Devices, opts)
		logDeviceErrors("collect_inventory", errs)
		return items, totalFailure(len(rc.Devices), errs)
	case "backup":
		items, errs := collect.ConfigBackup(ctx, rc.Devices, opts)
		logDeviceErrors("collect_backup", errs)
		return items, totalFailure(len(rc.Devices), errs)
	case "device":
		errs := collect.DeviceInfo(ctx, rc.Devices, opts)
		logDeviceErrors("collect_device", errs)
		return rc.Devices, totalFailure(len(rc.Devices), errs)
	default:
		return nil, fmt.Errorf("unsupported collect target %q", target)
	}
}

// PipelineSyncer implements pipeline.Syncer over pkg/reconcile's per-kind
// syncers, sharing one SyncCore (and therefore one device/interface lookup
// cache) across every sync step in a run.
type PipelineSyncer struct {
	Core    *reconcile.SyncCore
	Options reconcile.AllOptions
}

func statOutcome(stats reconcile.Stats, err error) (pipeline.SyncOutcome, error) {
	msg := fmt.Sprintf("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		stats.Created, stats.Updated, stats.Deleted, stats.Skipped, stats.Failed)
	return pipeline.SyncOutcome{Message: msg, Output: stats}, err
}

func (s PipelineSyncer) Sync(ctx context.Context, target string, data any, rc *pipeline.RunContext) (pipeline.SyncOutcome, error) {
	switch target {
	case "devices":
		devices, _ := data.([]*fleetdevice.Device)
		stats, err := reconcile.NewDeviceSyncer(s.Core).Sync(ctx, s.Options.Scope, devices, s.Options.Devices)
		return statOutcome(stats, err)
	case "interfaces":
		ifaces, _ := data.([]model.Interface)
		stats, err := reconcile.NewInterfaceSyncer(s.Core).Sync(ctx, s.Options.Scope, ifaces, s.Options.Interface)
		return statOutcome(stats, err)
	case "vlans":
		ifaces, _ := data.([]model.Interface)
		stats, err := reconcile.NewVLANSyncer(s.Core).Sync(ctx, s.Options.Scope, ifaces, s.Options.VLAN)
		return statOutcome(stats, err)
	case "cables":
		neighbors, _ := data.([]model.NeighborRecord)
		stats, err := reconcile.NewCableSyncer(s.Core).Sync(ctx, s.Options.Scope, neighbors, s.Options.Cable)
		return statOutcome(stats, err)
	case "inventory":
		items, _ := data.([]model.InventoryItem)
		stats, err := reconcile.NewInventorySyncer(s.Core).Sync(ctx, s.Options.Scope, items, s.Options.Inventory)
		return statOutcome(stats, err)
	case "ip_addresses":
		// No collector in this repository produces model.IPBinding records
		// (pkg/collect has no IP-address collector); an ip_addresses sync
		// step is accepted but reports nothing to do rather than failing
		// the whole pipeline over a structurally absent input.
		return pipeline.SyncOutcome{Message: "no IP address bindings collected; skipped"}, nil
	default:
		return pipeline.SyncOutcome{}, fmt.Errorf("unsupported sync target %q", target)
	}
}

// PipelineExporter implements pipeline.Exporter by handing collected data
// to a caller-supplied sink function — cmd/fleetsync prints to stdout,
// cmd/fleetsyncd only logs that the export step completed.
type PipelineExporter struct {
	Write func(target string, data any) error
}

func (e PipelineExporter) Export(ctx context.Context, target string, data any, rc *pipeline.RunContext) error {
	if e.Write == nil {
		return fmt.Errorf("no export sink configured for target %q", target)
	}
	return e.Write(target, data)
}
