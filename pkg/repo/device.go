// Package repo persists the device catalog as a single JSON document with
// atomic rewrite (write-temp + rename). A missing catalog file is not an
// error — OpenDeviceCatalog starts with an empty collection instead.
package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

// deviceDocument is the on-disk shape: {devices: [Device, ...], updated_at}.
type deviceDocument struct {
	Devices   []*fleetdevice.Device `json:"devices"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DeviceCatalog is the mutex-guarded, file-backed device collection.
type DeviceCatalog struct {
	mu      sync.Mutex
	path    string
	devices []*fleetdevice.Device
}

// OpenDeviceCatalog loads path if present, or starts with an empty catalog
// — a missing catalog file is not an error.
func OpenDeviceCatalog(path string) (*DeviceCatalog, error) {
	c := &DeviceCatalog{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("repo: read %s: %w", path, err)
	}
	var doc deviceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("repo: parse %s: %w", path, err)
	}
	c.devices = doc.Devices
	return c, nil
}

// List returns a deep-enough copy of the catalog, safe for the caller to
// mutate without affecting repository state.
func (c *DeviceCatalog) List() []*fleetdevice.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*fleetdevice.Device, len(c.devices))
	for i, d := range c.devices {
		out[i] = d.Clone()
	}
	return out
}

// Get returns the catalog entry for host, if present.
func (c *DeviceCatalog) Get(host string) (*fleetdevice.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.devices {
		if d.Host == host {
			return d.Clone(), true
		}
	}
	return nil, false
}

// Put inserts dev, or replaces the existing entry with the same Host, then
// persists the catalog.
func (c *DeviceCatalog) Put(dev *fleetdevice.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.devices {
		if d.Host == dev.Host {
			c.devices[i] = dev
			return c.saveLocked()
		}
	}
	c.devices = append(c.devices, dev)
	return c.saveLocked()
}

// Remove deletes the catalog entry for host, if present, then persists the
// catalog. Removing an absent host is a no-op.
func (c *DeviceCatalog) Remove(host string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.devices {
		if d.Host == host {
			c.devices = append(c.devices[:i], c.devices[i+1:]...)
			return c.saveLocked()
		}
	}
	return nil
}

// Replace overwrites the entire catalog with devices and persists it.
func (c *DeviceCatalog) Replace(devices []*fleetdevice.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices = devices
	return c.saveLocked()
}

func (c *DeviceCatalog) saveLocked() error {
	if c.path == "" {
		return nil
	}
	doc := deviceDocument{Devices: c.devices, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("repo: encode: %w", err)
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("repo: mkdir %s: %w", dir, err)
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("repo: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("repo: rename %s: %w", c.path, err)
	}
	return nil
}
