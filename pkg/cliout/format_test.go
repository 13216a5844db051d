package cliout

import (
	"strings"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/model"
)

func TestDotPadShortNameGetsDots(t *testing.T) {
	got := DotPad("sw1", 10)
	if !strings.HasPrefix(got, "sw1 ") || !strings.Contains(got, ".") {
		t.Fatalf("expected dot-padded name, got %q", got)
	}
}

func TestDotPadNameAtOrAboveWidthUnchanged(t *testing.T) {
	got := DotPad("switch-core-access-2", 5)
	if got != "switch-core-access-2" {
		t.Fatalf("expected unchanged name, got %q", got)
	}
}

func TestInterfaceStatusColorMapsSeverity(t *testing.T) {
	cases := map[model.InterfaceStatus]string{
		model.IfUp:    "\033[32m",
		model.IfDown:  "\033[33m",
		model.IfError: "\033[31m",
	}
	for status, code := range cases {
		if got := InterfaceStatusColor(status); !strings.HasPrefix(got, code) {
			t.Errorf("status %s: expected prefix %q, got %q", status, code, got)
		}
	}
}
