// Package platform maps canonical platform tags to SSH driver tags, text
// template platform tags, and per-command strings for every supported
// vendor. It is deliberately expressed as plain map literals: no library
// models "static lookup table" more directly than a map.
package platform

import (
	"fmt"

	"github.com/fleetsync/fleetsync/internal/errs"
)

// Commands is the per-command map a collector sends to a device.
type Commands struct {
	Inventory             string
	MACTable              string
	LLDPNeighbors         string
	CDPNeighbors          string
	Interfaces            string
	InterfaceStatus       string
	InterfaceDescriptions string
	InventoryModules      string
	RunningConfig         string
	Version               string
}

// Entry is one platform registry row.
type Entry struct {
	// CanonicalTag is the key used throughout fleetsync (device.PlatformTag).
	CanonicalTag string
	// DriverTag selects the SSH command dialect / prompt handling.
	DriverTag string
	// TemplatePlatform is the key used by the text-template parser stage.
	// Several canonical tags may share one template platform.
	TemplatePlatform string
	Commands         Commands
}

// FallbackTag is used when an unknown platform tag is encountered and the
// caller opts to fall back rather than fail.
const FallbackTag = "cisco_ios"

var registry = map[string]Entry{
	"cisco_ios": {
		CanonicalTag:     "cisco_ios",
		DriverTag:        "cisco_ios",
		TemplatePlatform: "cisco_ios",
		Commands: Commands{
			Inventory:             "show inventory",
			MACTable:              "show mac address-table",
			LLDPNeighbors:         "show lldp neighbors detail",
			CDPNeighbors:          "show cdp neighbors detail",
			Interfaces:            "show interfaces",
			InterfaceStatus:       "show interfaces status",
			InterfaceDescriptions: "show interfaces description",
			InventoryModules:      "show inventory",
			RunningConfig:         "show running-config",
			Version:               "show version",
		},
	},
	"cisco_nxos": {
		CanonicalTag:     "cisco_nxos",
		DriverTag:        "cisco_nxos",
		TemplatePlatform: "cisco_nxos",
		Commands: Commands{
			Inventory:             "show inventory",
			MACTable:              "show mac address-table",
			LLDPNeighbors:         "show lldp neighbors detail",
			CDPNeighbors:          "show cdp neighbors detail",
			Interfaces:            "show interface",
			InterfaceStatus:       "show interface status",
			InterfaceDescriptions: "show interface description",
			InventoryModules:      "show inventory",
			RunningConfig:         "show running-config",
			Version:               "show version",
		},
	},
	"arista_eos": {
		CanonicalTag:     "arista_eos",
		DriverTag:        "arista_eos",
		TemplatePlatform: "arista_eos",
		Commands: Commands{
			Inventory:             "show inventory",
			MACTable:              "show mac address-table",
			LLDPNeighbors:         "show lldp neighbors detail",
			CDPNeighbors:          "show cdp neighbors detail",
			Interfaces:            "show interfaces",
			InterfaceStatus:       "show interfaces status",
			InterfaceDescriptions: "show interfaces description",
			InventoryModules:      "show inventory",
			RunningConfig:         "show running-config",
			Version:               "show version",
		},
	},
	"juniper_junos": {
		CanonicalTag:     "juniper_junos",
		DriverTag:        "juniper_junos",
		TemplatePlatform: "juniper_junos",
		Commands: Commands{
			Inventory:             "show chassis hardware",
			MACTable:              "show ethernet-switching table",
			LLDPNeighbors:         "show lldp neighbors",
			CDPNeighbors:          "", // Junos does not speak CDP
			Interfaces:            "show interfaces",
			InterfaceStatus:       "show interfaces terse",
			InterfaceDescriptions: "show interfaces descriptions",
			InventoryModules:      "show chassis hardware",
			RunningConfig:         "show configuration",
			Version:               "show version",
		},
	},
	"qtech": {
		// qtech devices speak an IOS-like CLI; reuse the cisco_ios template
		// platform and command set.
		CanonicalTag:     "qtech",
		DriverTag:        "cisco_ios",
		TemplatePlatform: "cisco_ios",
		Commands: Commands{
			Inventory:             "show inventory",
			MACTable:              "show mac address-table",
			LLDPNeighbors:         "show lldp neighbors detail",
			CDPNeighbors:          "show cdp neighbors detail",
			Interfaces:            "show interfaces",
			InterfaceStatus:       "show interfaces status",
			InterfaceDescriptions: "show interfaces description",
			InventoryModules:      "show inventory",
			RunningConfig:         "show running-config",
			Version:               "show version",
		},
	},
}

// customTemplates maps (templatePlatform, command) -> bundled template path,
// taking precedence over the text-template library's built-in for that key.
var customTemplates = map[[2]string]string{}

// RegisterCustomTemplate installs (or overrides) a custom template override
// for (templatePlatform, command). Exposed so deployments can point at a
// bundled template file without modifying this package.
func RegisterCustomTemplate(templatePlatform, command, path string) {
	customTemplates[[2]string{templatePlatform, command}] = path
}

// CustomTemplate looks up a custom template override. ok is false if none is
// registered — callers fall through to the library/regex stages.
func CustomTemplate(templatePlatform, command string) (path string, ok bool) {
	path, ok = customTemplates[[2]string{templatePlatform, command}]
	return
}

// Lookup returns the registry entry for tag. If tag is unknown, it returns
// an error wrapping errs.ErrUnknownPlatform-compatible text; callers may
// then call LookupOrFallback.
func Lookup(tag string) (Entry, error) {
	e, ok := registry[tag]
	if !ok {
		return Entry{}, fmt.Errorf("platform %q: %w", tag, errs.ErrUnknownPlatform)
	}
	return e, nil
}

// LookupOrFallback returns the registry entry for tag, or the fallback
// (cisco_ios) entry if tag is unknown. The second return reports whether the
// fallback was used.
func LookupOrFallback(tag string) (Entry, bool) {
	if e, ok := registry[tag]; ok {
		return e, false
	}
	return registry[FallbackTag], true
}

// Tags returns all registered canonical platform tags, sorted by insertion
// is not guaranteed; callers that need a stable order should sort the result.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for t := range registry {
		tags = append(tags, t)
	}
	return tags
}
