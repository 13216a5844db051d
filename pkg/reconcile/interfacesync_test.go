package reconcile

import (
	"context"
	"regexp"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/model"
)

func deviceIDResolver(ids map[string]string) func(string) (string, bool) {
	return func(host string) (string, bool) {
		id, ok := ids[host]
		return id, ok
	}
}

func TestInterfaceSyncCreatesAndLinksLAGParent(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, false)
	syncer := NewInterfaceSyncer(core)

	ifaces := []model.Interface{
		{DeviceHostname: "sw1", Name: "Po1", Description: "uplink-bundle", Enabled: true},
		{DeviceHostname: "sw1", Name: "Gi0/1", Enabled: true, LAGParent: "Po1"},
		{DeviceHostname: "sw1", Name: "Gi0/2", Enabled: true, LAGParent: "Po1"},
	}
	opts := InterfaceSyncOptions{DeviceRemoteID: deviceIDResolver(map[string]string{"sw1": "dev-1"})}
	stats, err := syncer.Sync(context.Background(), Scope{}, ifaces, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 3 {
		t.Fatalf("expected 3 created interfaces, got %+v", stats)
	}
	memberID := inv.interfaces["dev-1/Gi0/1"].ID
	parentID := inv.interfaces["dev-1/Po1"].ID
	if inv.objects[KindInterface][memberID].StringField("lag_id") != parentID {
		t.Fatalf("expected Gi0/1 linked to Po1's remote id, got %+v", inv.objects[KindInterface][memberID])
	}
}

func TestInterfaceSyncExcludedRegexSkips(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, false)
	syncer := NewInterfaceSyncer(core)

	ifaces := []model.Interface{
		{DeviceHostname: "sw1", Name: "Vl1", Enabled: true},
		{DeviceHostname: "sw1", Name: "Gi0/1", Enabled: true},
	}
	opts := InterfaceSyncOptions{
		DeviceRemoteID: deviceIDResolver(map[string]string{"sw1": "dev-1"}),
		ExcludeRegexes: []*regexp.Regexp{regexp.MustCompile(`^Vl`)},
	}
	stats, err := syncer.Sync(context.Background(), Scope{}, ifaces, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 1 || stats.Skipped != 1 {
		t.Fatalf("expected the Vlan interface excluded, got %+v", stats)
	}
}

func TestInterfaceSyncCircularLAGParentingSkipped(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, false)
	syncer := NewInterfaceSyncer(core)

	ifaces := []model.Interface{
		{DeviceHostname: "sw1", Name: "Gi0/1", Enabled: true, LAGParent: "Gi0/2"},
		{DeviceHostname: "sw1", Name: "Gi0/2", Enabled: true, LAGParent: "Gi0/1"},
	}
	opts := InterfaceSyncOptions{DeviceRemoteID: deviceIDResolver(map[string]string{"sw1": "dev-1"})}
	stats, err := syncer.Sync(context.Background(), Scope{}, ifaces, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 2 {
		t.Fatalf("expected both interfaces created despite circular parenting, got %+v", stats)
	}
	memberID := inv.interfaces["dev-1/Gi0/1"].ID
	if inv.objects[KindInterface][memberID].StringField("lag_id") != "" {
		t.Fatal("expected circular LAG parenting to never set lag_id")
	}
}

func TestInterfaceSyncClearModeOnEmpty(t *testing.T) {
	inv := newFakeInventory()
	existing, _ := inv.Create(context.Background(), KindInterface, map[string]string{
		"device_id": "dev-1", "device_key": "sw1", "name": "Gi0/1", "mode": "access", "description": "old-desc",
	})
	inv.interfaces["dev-1/Gi0/1"] = existing

	core := NewSyncCore(inv, false)
	syncer := NewInterfaceSyncer(core)
	ifaces := []model.Interface{
		{DeviceHostname: "sw1", Name: "Gi0/1", Enabled: true, Mode: model.ModeUnset, Description: ""},
	}
	opts := InterfaceSyncOptions{DeviceRemoteID: deviceIDResolver(map[string]string{"sw1": "dev-1"})}
	stats, err := syncer.Sync(context.Background(), Scope{}, ifaces, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("expected mode/description clear to register as an update, got %+v", stats)
	}
	updated := inv.objects[KindInterface][existing.ID]
	if updated.StringField("mode") != "" || updated.StringField("description") != "" {
		t.Fatalf("expected mode and description cleared, got %+v", updated)
	}
}
