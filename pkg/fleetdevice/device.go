// Package fleetdevice holds the canonical Device descriptor and the
// in-memory credentials holder. Devices are created from a persisted
// catalog (pkg/repo) or an ad-hoc CLI/HTTP request list, and are mutated
// only by the connection manager (pkg/fleetssh) to record hostname,
// status, and last error.
package fleetdevice

import (
	"sync"
	"time"
)

// Status is the device's last-observed connectivity state.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

// Device is the canonical descriptor for one fleet member.
//
// PlatformTag is the canonical key into pkg/platform: it determines the SSH
// driver, the text-template platform, and the command set. Host/Port/Role
// and Tags are caller-supplied; Hostname/Status/LastError/ConnectedAt are
// populated by the connection manager and device-info collector, never by
// the caller. No collector sets Vendor or OSVersion.
type Device struct {
	Host        string   `json:"host"`
	PlatformTag string   `json:"platform_tag"`
	Port        int      `json:"port"`
	Role        string   `json:"role,omitempty"`
	Enabled     bool     `json:"enabled"`
	Tags        []string `json:"tags,omitempty"`

	// Serial and Model are catalog-maintained fields compared during
	// device reconciliation; they are not derived from any
	// collector.
	Serial string `json:"serial,omitempty"`
	Model  string `json:"model,omitempty"`

	// Populated by the connection manager.
	Hostname  string `json:"hostname,omitempty"`
	Status    Status `json:"status"`
	LastError string `json:"last_error,omitempty"`

	// Optional descriptive fields; no collector populates Vendor or
	// OSVersion. Never required for reconciliation.
	Vendor      string     `json:"vendor,omitempty"`
	OSVersion   string     `json:"os_version,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`

	mu sync.Mutex
}

// Clone returns a deep-enough copy safe to hand to a concurrent worker:
// Tags is copied, and the new Device has its own mutex.
func (d *Device) Clone() *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	tags := make([]string, len(d.Tags))
	copy(tags, d.Tags)
	clone := &Device{
		Host:        d.Host,
		PlatformTag: d.PlatformTag,
		Port:        d.Port,
		Role:        d.Role,
		Enabled:     d.Enabled,
		Tags:        tags,
		Serial:      d.Serial,
		Model:       d.Model,
		Hostname:    d.Hostname,
		Status:      d.Status,
		LastError:   d.LastError,
		Vendor:      d.Vendor,
		OSVersion:   d.OSVersion,
	}
	if d.ConnectedAt != nil {
		t := *d.ConnectedAt
		clone.ConnectedAt = &t
	}
	return clone
}

// SetConnected records a successful connection: status=online, the derived
// hostname, and the connection timestamp. Thread-safe.
func (d *Device) SetConnected(hostname string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Hostname = hostname
	d.Status = StatusOnline
	d.LastError = ""
	d.ConnectedAt = &now
}

// SetError records a connection or command failure. Thread-safe.
func (d *Device) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = StatusError
	if err != nil {
		d.LastError = err.Error()
	}
}

// SetOffline marks the device unreachable without recording an error string
// (e.g. a deliberate skip).
func (d *Device) SetOffline() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = StatusOffline
}

// Port or default returns the device's configured SSH port, or 22.
func (d *Device) PortOrDefault() int {
	if d.Port > 0 {
		return d.Port
	}
	return 22
}
