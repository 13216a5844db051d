package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

func TestRunPerDeviceIsolatesFailures(t *testing.T) {
	devices := []*fleetdevice.Device{
		{Host: "10.0.0.1"},
		{Host: "10.0.0.2"},
		{Host: "10.0.0.3"},
	}
	records, errs := runPerDevice(context.Background(), devices, 2, func(ctx context.Context, dev *fleetdevice.Device) ([]string, error) {
		if dev.Host == "10.0.0.2" {
			return nil, errors.New("boom")
		}
		return []string{dev.Host}, nil
	})
	if len(errs) != 1 || errs[0].Device.Host != "10.0.0.2" {
		t.Fatalf("expected exactly one isolated failure, got %+v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected records from the 2 successful devices, got %+v", records)
	}
}

func TestRunPerDeviceAllSucceed(t *testing.T) {
	devices := []*fleetdevice.Device{{Host: "a"}, {Host: "b"}}
	records, errs := runPerDevice(context.Background(), devices, 5, func(ctx context.Context, dev *fleetdevice.Device) ([]int, error) {
		return []int{1}, nil
	})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestPortStatusByInterface(t *testing.T) {
	rows := []textparse.Row{
		{"interface": "GigabitEthernet0/1", "status": "connected"},
		{"interface": "Gi0/2", "status": "notconnect"},
		{"interface": "Gi0/3", "status": "weird"},
	}
	got := portStatusByInterface(rows)
	if got["Gi0/1"] != model.PortOnline {
		t.Errorf("expected Gi0/1 online, got %v", got["Gi0/1"])
	}
	if got["Gi0/2"] != model.PortOffline {
		t.Errorf("expected Gi0/2 offline, got %v", got["Gi0/2"])
	}
	if got["Gi0/3"] != model.PortUnknown {
		t.Errorf("expected Gi0/3 unknown, got %v", got["Gi0/3"])
	}
}

func TestResolveFallsBackToCiscoIOSForUnknownPlatform(t *testing.T) {
	dev := &fleetdevice.Device{Host: "x", PlatformTag: "made-up-vendor"}
	rd := resolve(dev)
	if !rd.fellBack {
		t.Fatal("expected fallback to be used")
	}
	if rd.entry.CanonicalTag != "cisco_ios" {
		t.Fatalf("expected cisco_ios fallback, got %q", rd.entry.CanonicalTag)
	}
}
