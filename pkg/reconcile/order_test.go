package reconcile

import (
	"context"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
)

func TestSyncAllOrdersDevicesBeforeDependents(t *testing.T) {
	inv := newFakeInventory()
	core := NewSyncCore(inv, false)

	data := AllData{
		Devices: []*fleetdevice.Device{
			{Host: "10.0.0.1", Hostname: "sw1", PlatformTag: "cisco_ios"},
		},
		Interfaces: []model.Interface{
			{DeviceHostname: "sw1", Name: "Gi0/1", Enabled: true},
		},
		IPs: []model.IPBinding{
			{Device: "sw1", InterfaceShort: "Gi0/1", AddressCIDR: "10.0.0.1/24"},
		},
	}
	opts := AllOptions{
		Devices: deviceSyncOpts(),
		VLAN:    VLANSyncOptions{Site: "DC1"},
	}
	result := SyncAll(context.Background(), core, data, opts)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected kind-level errors: %+v", result.Errors)
	}
	if result.Devices.Created != 1 {
		t.Fatalf("expected device created, got %+v", result.Devices)
	}
	if result.Interfaces.Created != 1 {
		t.Fatalf("expected interface created once the device existed remotely, got %+v", result.Interfaces)
	}
	if result.IPs.Created != 1 {
		t.Fatalf("expected ip bound to the now-existing interface, got %+v", result.IPs)
	}
}

func TestSyncAllContinuesAfterKindFailure(t *testing.T) {
	inv := newFakeInventory()
	inv.failList[KindDevice] = true
	core := NewSyncCore(inv, false)

	data := AllData{
		Interfaces: []model.Interface{{DeviceHostname: "sw1", Name: "Vlan10", Enabled: true}},
	}
	opts := AllOptions{VLAN: VLANSyncOptions{Site: "DC1"}}
	result := SyncAll(context.Background(), core, data, opts)

	if result.Errors["devices"] == nil {
		t.Fatal("expected a kind-level error for devices")
	}
	if result.VLANs.Created != 1 {
		t.Fatalf("expected vlan sync to still run after the device kind failed, got %+v", result.VLANs)
	}
}
