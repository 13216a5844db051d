package reconcile

import (
	"context"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/model"
)

func TestDeriveVLANIDsDedupsAndSorts(t *testing.T) {
	ifaces := []model.Interface{
		{Name: "Vlan20"}, {Name: "Vlan10"}, {Name: "Vlan10"}, {Name: "Gi0/1"},
	}
	got := DeriveVLANIDs(ifaces)
	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Fatalf("expected [10 20], got %v", got)
	}
}

func TestVLANSyncCreatesOnlyNewVLANs(t *testing.T) {
	inv := newFakeInventory()
	inv.Create(context.Background(), KindVLAN, map[string]string{"vid": "10"})
	core := NewSyncCore(inv, false)
	syncer := NewVLANSyncer(core)

	ifaces := []model.Interface{{Name: "Vlan10"}, {Name: "Vlan30"}}
	stats, err := syncer.Sync(context.Background(), Scope{}, ifaces, VLANSyncOptions{Site: "DC1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Created != 1 || stats.Skipped != 1 {
		t.Fatalf("expected vlan 30 created and vlan 10 skipped, got %+v", stats)
	}
}
