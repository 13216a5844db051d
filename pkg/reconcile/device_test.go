package reconcile

import (
	"context"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

func deviceSyncOpts() DeviceSyncOptions {
	return DeviceSyncOptions{
		Site:         "DC1",
		Role:         func(dev *fleetdevice.Device) string { return "switch" },
		Manufacturer: func(dev *fleetdevice.Device) string { return "Cisco" },
		DeviceType:   func(dev *fleetdevice.Device) string { return dev.Model },
	}
}

func TestDeviceSyncCreatesMissing(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, false)
	syncer := NewDeviceSyncer(core)

	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios", Serial: "ABC123", Model: "C9300"},
	}
	stats, err := syncer.Sync(context.Background(), Scope{}, devices, deviceSyncOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", stats)
	}
	if _, ok := inv.deviceByName["sw1"]; !ok {
		t.Fatal("expected device registered in fake inventory")
	}
	if inv.objects[KindSite] == nil {
		t.Fatal("expected site resolved via get-or-create")
	}
}

func TestDeviceSyncUpdatesChangedFields(t *testing.T) {
	inv := newFakeInventory()
	existing, _ := inv.Create(context.Background(), KindDevice, map[string]string{
		"name": "sw1", "hostname": "sw1", "serial": "OLD", "model": "C9200",
	})
	inv.deviceByName["sw1"] = existing

	core := NewSyncCore(inv, false)
	syncer := NewDeviceSyncer(core)
	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios", Serial: "NEW", Model: "C9200"},
	}
	stats, err := syncer.Sync(context.Background(), Scope{}, devices, deviceSyncOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("expected 1 update (serial changed), got %+v", stats)
	}
	if inv.objects[KindDevice][existing.ID].StringField("serial") != "NEW" {
		t.Fatalf("expected serial updated to NEW, got %+v", inv.objects[KindDevice][existing.ID])
	}
}

func TestDeviceSyncNoChangesSkips(t *testing.T) {
	inv := newFakeInventory()
	existing, _ := inv.Create(context.Background(), KindDevice, map[string]string{
		"name": "sw1", "hostname": "sw1", "serial": "ABC", "model": "C9200",
	})
	inv.deviceByName["sw1"] = existing

	core := NewSyncCore(inv, false)
	syncer := NewDeviceSyncer(core)
	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios", Serial: "ABC", Model: "C9200"},
	}
	stats, err := syncer.Sync(context.Background(), Scope{}, devices, deviceSyncOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Skipped != 1 || stats.Updated != 0 {
		t.Fatalf("expected a no-op skip, got %+v", stats)
	}
}

func TestDeviceSyncDryRunNeverMutates(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, true)
	syncer := NewDeviceSyncer(core)
	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios", Serial: "ABC", Model: "C9200"},
	}
	stats, err := syncer.Sync(context.Background(), Scope{}, devices, deviceSyncOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("expected dry-run to still report a create, got %+v", stats)
	}
	if len(inv.deviceByName) != 0 {
		t.Fatal("dry-run must never write to the remote inventory")
	}
}

func TestDeviceSyncCleanupRestrictedToScope(t *testing.T) {
	inv := newFakeInventory()
	orphan, _ := inv.Create(context.Background(), KindDevice, map[string]string{"name": "ghost", "hostname": "ghost"})
	inv.deviceByName["ghost"] = orphan

	core := NewSyncCore(inv, false)
	syncer := NewDeviceSyncer(core)
	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios"},
	}
	opts := deviceSyncOpts()
	opts.Cleanup = true
	stats, err := syncer.Sync(context.Background(), Scope{}, devices, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Deleted != 1 {
		t.Fatalf("expected the orphaned remote device deleted, got %+v", stats)
	}
	if _, ok := inv.objects[KindDevice][orphan.ID]; ok {
		t.Fatal("expected orphan removed from fake inventory")
	}
}
