package cliout

import (
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
)

// ANSI color helpers.

func Green(s string) string  { return "\033[32m" + s + "\033[0m" }
func Yellow(s string) string { return "\033[33m" + s + "\033[0m" }
func Red(s string) string    { return "\033[31m" + s + "\033[0m" }
func Bold(s string) string   { return "\033[1m" + s + "\033[0m" }
func Dim(s string) string    { return "\033[2m" + s + "\033[0m" }

// DotPad pads name with dots to the given width, e.g.
// DotPad("sw1-core", 20) -> "sw1-core ...........".
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// InterfaceStatusColor colors a status string for terminal display: up is
// green, down yellow, error red, disabled and unknown dimmed.
func InterfaceStatusColor(status model.InterfaceStatus) string {
	switch status {
	case model.IfUp:
		return Green(string(status))
	case model.IfDisabled, model.IfUnknown:
		return Dim(string(status))
	case model.IfDown:
		return Yellow(string(status))
	case model.IfError:
		return Red(string(status))
	default:
		return string(status)
	}
}
