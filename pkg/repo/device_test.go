package repo

import (
	"path/filepath"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

func TestOpenMissingCatalogStartsEmpty(t *testing.T) {
	c, err := OpenDeviceCatalog(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.List()) != 0 {
		t.Fatalf("expected empty catalog, got %d devices", len(c.List()))
	}
}

func TestPutPersistsAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, err := OpenDeviceCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Put(&fleetdevice.Device{Host: "sw1", PlatformTag: "cisco_ios", Port: 22, Enabled: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := OpenDeviceCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}
	devices := reopened.List()
	if len(devices) != 1 || devices[0].Host != "sw1" || !devices[0].Enabled {
		t.Fatalf("expected persisted device to survive reopen, got %+v", devices)
	}
}

func TestPutReplacesExistingHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, _ := OpenDeviceCatalog(path)
	_ = c.Put(&fleetdevice.Device{Host: "sw1", PlatformTag: "cisco_ios", Role: "access"})
	_ = c.Put(&fleetdevice.Device{Host: "sw1", PlatformTag: "cisco_ios", Role: "core"})

	devices := c.List()
	if len(devices) != 1 || devices[0].Role != "core" {
		t.Fatalf("expected one replaced entry with Role=core, got %+v", devices)
	}
}

func TestRemoveDeletesExistingHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, _ := OpenDeviceCatalog(path)
	_ = c.Put(&fleetdevice.Device{Host: "sw1"})
	_ = c.Put(&fleetdevice.Device{Host: "sw2"})

	if err := c.Remove("sw1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	devices := c.List()
	if len(devices) != 1 || devices[0].Host != "sw2" {
		t.Fatalf("expected only sw2 to remain, got %+v", devices)
	}
}

func TestRemoveAbsentHostIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, _ := OpenDeviceCatalog(path)
	_ = c.Put(&fleetdevice.Device{Host: "sw1"})

	if err := c.Remove("ghost"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.List()) != 1 {
		t.Fatalf("expected sw1 untouched, got %+v", c.List())
	}
}

func TestGetReturnsClone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, _ := OpenDeviceCatalog(path)
	_ = c.Put(&fleetdevice.Device{Host: "sw1", Tags: []string{"edge"}})

	dev, found := c.Get("sw1")
	if !found {
		t.Fatal("expected to find sw1")
	}
	dev.Tags[0] = "mutated"

	dev2, _ := c.Get("sw1")
	if dev2.Tags[0] != "edge" {
		t.Fatalf("expected Get to return an independent copy, got %+v", dev2)
	}
}

func TestReplaceOverwritesWholeCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	c, _ := OpenDeviceCatalog(path)
	_ = c.Put(&fleetdevice.Device{Host: "sw1"})

	if err := c.Replace([]*fleetdevice.Device{{Host: "sw2"}, {Host: "sw3"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	devices := c.List()
	if len(devices) != 2 {
		t.Fatalf("expected replace to overwrite catalog, got %+v", devices)
	}
}
