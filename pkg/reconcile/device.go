package reconcile

import (
	"context"
	"fmt"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
	"github.com/fleetsync/fleetsync/pkg/fields"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

// DeviceSyncer reconciles the device catalog against the remote
// inventory's device objects.
type DeviceSyncer struct {
	*SyncCore
}

// NewDeviceSyncer builds a DeviceSyncer over a shared SyncCore.
func NewDeviceSyncer(core *SyncCore) *DeviceSyncer {
	return &DeviceSyncer{SyncCore: core}
}

// DeviceSyncOptions supplies the dependent-object names needed to create a
// device: site, role, manufacturer, and device type
// are all resolved through get-or-create before the device payload is
// built. Role/Manufacturer/DeviceType may vary per device (e.g. by
// platform), so they are resolver functions rather than flat strings.
type DeviceSyncOptions struct {
	Site         string
	Tenant       string
	Role         func(dev *fleetdevice.Device) string
	Manufacturer func(dev *fleetdevice.Device) string
	DeviceType   func(dev *fleetdevice.Device) string
	Cleanup      bool
}

type deviceRecord struct{ dev *fleetdevice.Device }

func (r deviceRecord) Key() string {
	if r.dev.Hostname != "" {
		return r.dev.Hostname
	}
	return r.dev.Host
}

func present(v string) diff.Value { return diff.Value{Raw: v, Present: true} }

func (r deviceRecord) Field(name string) diff.Value {
	switch name {
	case "host":
		return present(r.dev.Host)
	case "platform_tag":
		return present(r.dev.PlatformTag)
	case "hostname":
		return present(r.dev.Hostname)
	case "serial":
		return present(r.dev.Serial)
	case "model":
		return present(r.dev.Model)
	case "role":
		return present(r.dev.Role)
	case "status":
		return present(string(r.dev.Status))
	default:
		return diff.Value{}
	}
}

// Sync reconciles devices against the remote inventory. scope.DeviceIDs is
// ignored for devices (the scope that matters here is the tenant, for
// cleanup); it exists for interface consistency with the other syncers.
func (s *DeviceSyncer) Sync(ctx context.Context, scope Scope, devices []*fleetdevice.Device, opts DeviceSyncOptions) (Stats, error) {
	var stats Stats
	remote, err := s.Client.ListRemote(ctx, KindDevice, scope)
	if err != nil {
		return stats, fmt.Errorf("list remote devices: %w", err)
	}

	registry := fields.DefaultDeviceRegistry()
	localRecords := make([]diff.Record, len(devices))
	byKey := make(map[string]*fleetdevice.Device, len(devices))
	for i, dev := range devices {
		localRecords[i] = deviceRecord{dev}
		byKey[deviceRecord{dev}.Key()] = dev
	}
	remoteRecords := make([]diff.Record, len(remote))
	for i, r := range remote {
		remoteRecords[i] = r
	}

	plan := diff.Compute(localRecords, remoteRecords, diff.Options{
		CreateMissing:  true,
		UpdateExisting: true,
		Cleanup:        opts.Cleanup,
		CompareFields:  registry.CompareFields,
		ClearOnEmpty:   registry.ClearOnEmpty,
	})
	stats.Skipped += len(plan.ToSkip)

	for _, item := range plan.ToCreate {
		dev := byKey[item.Name]
		fieldsMap, err := s.buildCreatePayload(ctx, dev, opts)
		if err != nil {
			stats.Failed++
			stats.detail("device %s: resolve dependencies failed: %v", item.Name, err)
			continue
		}
		if s.DryRun {
			stats.Created++
			stats.detail("[DRY-RUN] would create device %s", item.Name)
			continue
		}
		if _, err := s.Client.Create(ctx, KindDevice, fieldsMap); err != nil {
			stats.Failed++
			stats.detail("device %s: create failed: %v", item.Name, err)
			continue
		}
		stats.Created++
		stats.detail("created device %s", item.Name)
	}

	for _, item := range plan.ToUpdate {
		if s.DryRun {
			stats.Updated++
			stats.detail("[DRY-RUN] would update device %s (%d fields)", item.Name, len(item.FieldChanges))
			continue
		}
		remoteObj := item.Remote.(RemoteObject)
		fieldsMap := make(map[string]string, len(item.FieldChanges))
		for _, fc := range item.FieldChanges {
			fieldsMap[fc.Field] = fc.NewValue
		}
		if _, err := s.Client.Update(ctx, KindDevice, remoteObj.ID, fieldsMap); err != nil {
			stats.Failed++
			stats.detail("device %s: update failed: %v", item.Name, err)
			continue
		}
		stats.Updated++
		stats.detail("updated device %s (%d fields)", item.Name, len(item.FieldChanges))
	}

	for _, item := range plan.ToDelete {
		remoteObj := item.Remote.(RemoteObject)
		if s.DryRun {
			stats.Deleted++
			stats.detail("[DRY-RUN] would delete device %s", item.Name)
			continue
		}
		if err := s.Client.Delete(ctx, KindDevice, remoteObj.ID); err != nil {
			stats.Failed++
			stats.detail("device %s: delete failed: %v", item.Name, err)
			continue
		}
		stats.Deleted++
		stats.detail("deleted device %s", item.Name)
	}

	logging.WithOperation("sync_devices").Infof("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		stats.Created, stats.Updated, stats.Deleted, stats.Skipped, stats.Failed)
	return stats, nil
}

func (s *DeviceSyncer) buildCreatePayload(ctx context.Context, dev *fleetdevice.Device, opts DeviceSyncOptions) (map[string]string, error) {
	site, err := s.getOrCreate(ctx, KindSite, opts.Site, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve site: %w", err)
	}
	roleName := dev.Role
	if opts.Role != nil {
		roleName = opts.Role(dev)
	}
	role, err := s.getOrCreate(ctx, KindRole, roleName, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	manufacturerName := dev.PlatformTag
	if opts.Manufacturer != nil {
		manufacturerName = opts.Manufacturer(dev)
	}
	manufacturer, err := s.getOrCreate(ctx, KindManufacturer, manufacturerName, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve manufacturer: %w", err)
	}
	deviceTypeName := dev.Model
	if opts.DeviceType != nil {
		deviceTypeName = opts.DeviceType(dev)
	}
	if deviceTypeName == "" {
		deviceTypeName = dev.PlatformTag
	}
	deviceType, err := s.getOrCreate(ctx, KindDeviceType, deviceTypeName, map[string]string{"manufacturer_id": manufacturer.ID})
	if err != nil {
		return nil, fmt.Errorf("resolve device type: %w", err)
	}

	name := dev.Hostname
	if name == "" {
		name = dev.Host
	}
	payload := map[string]string{
		"name":           name,
		"hostname":       dev.Hostname,
		"host":           dev.Host,
		"platform_tag":   dev.PlatformTag,
		"serial":         dev.Serial,
		"model":          dev.Model,
		"site_id":        site.ID,
		"role_id":        role.ID,
		"device_type_id": deviceType.ID,
	}
	if opts.Tenant != "" {
		tenant, err := s.getOrCreate(ctx, KindTenant, opts.Tenant, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve tenant: %w", err)
		}
		payload["tenant_id"] = tenant.ID
	}
	return payload, nil
}
