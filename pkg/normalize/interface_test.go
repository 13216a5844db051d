package normalize

import (
	"testing"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

func TestNormalizeInterfacesMergesThreeSources(t *testing.T) {
	detail := []textparse.Row{
		{"interface": "GigabitEthernet0/1", "admin": "up", "protocol": "up", "mtu": "1500", "mac": "AABB.CCDD.EEFF", "duplex": "full", "speed": "1000"},
	}
	status := []textparse.Row{
		{"interface": "Gi0/1", "description": "uplink", "status": "connected", "vlan": "10", "duplex": "a-full", "speed": "a-1000"},
	}
	description := []textparse.Row{
		{"interface": "Gi0/1", "description": "uplink to core", "status": "up", "protocol": "up"},
	}
	out := NormalizeInterfaces(detail, status, description, InterfaceOptions{DeviceHostname: "sw1"})
	if len(out) != 1 {
		t.Fatalf("expected 1 merged interface, got %d: %+v", len(out), out)
	}
	r := out[0]
	if r.Name != "Gi0/1" {
		t.Fatalf("expected canonical name Gi0/1, got %q", r.Name)
	}
	if r.Description != "uplink to core" {
		t.Fatalf("expected description override, got %q", r.Description)
	}
	if r.Status != model.IfUp {
		t.Fatalf("expected up status, got %v", r.Status)
	}
	if r.AccessVLAN != 10 || r.Mode != model.ModeAccess {
		t.Fatalf("expected access vlan 10, got %+v", r)
	}
	if r.MTU != 1500 {
		t.Fatalf("expected mtu 1500, got %d", r.MTU)
	}
}

func TestNormalizeInterfacesHandlesMissingSources(t *testing.T) {
	status := []textparse.Row{
		{"interface": "Gi0/2", "status": "notconnect"},
	}
	out := NormalizeInterfaces(nil, status, nil, InterfaceOptions{DeviceHostname: "sw1"})
	if len(out) != 1 || out[0].Status != model.IfDisabled {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestInterfaceStatusFromAdminProtocol(t *testing.T) {
	cases := []struct {
		admin, protocol string
		want            model.InterfaceStatus
	}{
		{"up", "up", model.IfUp},
		{"up", "down", model.IfError},
		{"down", "down", model.IfDown},
		{"administratively down", "down", model.IfDisabled},
	}
	for _, c := range cases {
		if got := interfaceStatusFromAdminProtocol(c.admin, c.protocol); got != c.want {
			t.Errorf("interfaceStatusFromAdminProtocol(%q, %q) = %v, want %v", c.admin, c.protocol, got, c.want)
		}
	}
}
