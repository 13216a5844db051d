package fleetdevice

import (
	"errors"
	"testing"
	"time"
)

func TestSetConnected(t *testing.T) {
	d := &Device{Host: "10.0.0.1", PlatformTag: "cisco_ios"}
	now := time.Now()
	d.SetConnected("leaf1", now)

	if d.Status != StatusOnline {
		t.Fatalf("expected StatusOnline, got %s", d.Status)
	}
	if d.Hostname != "leaf1" {
		t.Fatalf("expected hostname leaf1, got %s", d.Hostname)
	}
	if d.ConnectedAt == nil || !d.ConnectedAt.Equal(now) {
		t.Fatalf("expected ConnectedAt to be set to %v", now)
	}
}

func TestSetErrorClearsOnReconnect(t *testing.T) {
	d := &Device{Host: "10.0.0.1"}
	d.SetError(errors.New("boom"))
	if d.Status != StatusError || d.LastError != "boom" {
		t.Fatalf("unexpected state after SetError: %+v", d)
	}
	d.SetConnected("leaf1", time.Now())
	if d.LastError != "" {
		t.Fatalf("expected LastError cleared on reconnect, got %q", d.LastError)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := &Device{Host: "10.0.0.1", Tags: []string{"pod1"}}
	clone := d.Clone()
	clone.Tags[0] = "pod2"
	if d.Tags[0] != "pod1" {
		t.Fatal("expected Clone to deep-copy Tags")
	}
}

func TestPortOrDefault(t *testing.T) {
	d := &Device{}
	if d.PortOrDefault() != 22 {
		t.Fatalf("expected default port 22, got %d", d.PortOrDefault())
	}
	d.Port = 2222
	if d.PortOrDefault() != 2222 {
		t.Fatalf("expected configured port 2222, got %d", d.PortOrDefault())
	}
}

func TestCredentialsStringDoesNotLeak(t *testing.T) {
	c := Credentials{Username: "admin", Password: "hunter2", EnableSecret: "enable123"}
	s := c.String()
	if contains(s, "hunter2") || contains(s, "enable123") {
		t.Fatalf("Credentials.String() leaked a secret: %s", s)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
