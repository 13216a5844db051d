package fields

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OverrideConfig is the on-disk shape of a field-overrides file: one
// optional list of Field overrides per entity kind. A kind absent from the
// file keeps its Go-literal defaults (pkg/fields/defaults.go) untouched.
type OverrideConfig struct {
	Device    []Field `yaml:"device,omitempty"`
	Interface []Field `yaml:"interface,omitempty"`
	MACEntry  []Field `yaml:"mac_entry,omitempty"`
	Neighbor  []Field `yaml:"neighbor,omitempty"`
	Inventory []Field `yaml:"inventory,omitempty"`
	IPAddress []Field `yaml:"ip_address,omitempty"`
}

// LoadOverrideConfig reads and parses a field-overrides YAML file.
func LoadOverrideConfig(path string) (OverrideConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return OverrideConfig{}, fmt.Errorf("reading field overrides %s: %w", path, err)
	}
	var oc OverrideConfig
	if err := yaml.Unmarshal(raw, &oc); err != nil {
		return OverrideConfig{}, fmt.Errorf("parsing field overrides %s: %w", path, err)
	}
	return oc, nil
}

// ForKind returns the override list declared for kind, or nil if the
// config file didn't mention it.
func (oc OverrideConfig) ForKind(kind EntityKind) []Field {
	switch kind {
	case KindDevice:
		return oc.Device
	case KindInterface:
		return oc.Interface
	case KindMACEntry:
		return oc.MACEntry
	case KindNeighbor:
		return oc.Neighbor
	case KindInventory:
		return oc.Inventory
	case KindIPAddress:
		return oc.IPAddress
	default:
		return nil
	}
}

// Kinds lists every entity kind a validate-fields run checks, in a stable
// order.
func Kinds() []EntityKind {
	return []EntityKind{KindDevice, KindInterface, KindMACEntry, KindNeighbor, KindInventory, KindIPAddress}
}

// ValidateOverrides checks one kind's override list against its base
// registry: every Internal name must already exist on the base registry
// (overrides rename/reorder/enable existing fields, they never invent new
// ones), DisplayName must be non-empty, and Order values must be unique.
func ValidateOverrides(base *Registry, overrides []Field) []error {
	var errs []error
	seenOrder := map[int]string{}
	for _, f := range overrides {
		if _, ok := base.find(f.Internal); !ok {
			errs = append(errs, fmt.Errorf("%s: unknown field %q", base.kind, f.Internal))
			continue
		}
		if f.DisplayName == "" {
			errs = append(errs, fmt.Errorf("%s: field %q has an empty display name", base.kind, f.Internal))
		}
		if prev, dup := seenOrder[f.Order]; dup {
			errs = append(errs, fmt.Errorf("%s: fields %q and %q share order %d", base.kind, prev, f.Internal, f.Order))
		} else {
			seenOrder[f.Order] = f.Internal
		}
	}
	return errs
}

// Override returns a new Registry with each entry in overrides replacing
// the base field of the same Internal name. overrides must already be
// valid per ValidateOverrides; unknown Internal names are skipped rather
// than inserted, keeping Override total over any input.
func (r *Registry) Override(overrides []Field) *Registry {
	merged := make([]Field, len(r.fields))
	copy(merged, r.fields)
	for _, o := range overrides {
		for i, f := range merged {
			if f.Internal == o.Internal {
				merged[i] = o
				break
			}
		}
	}
	return NewRegistry(r.kind, merged)
}

// DefaultRegistry returns the built-in registry for kind, or nil for an
// unrecognized kind.
func DefaultRegistry(kind EntityKind) *Registry {
	switch kind {
	case KindDevice:
		return DefaultDeviceRegistry()
	case KindInterface:
		return DefaultInterfaceRegistry()
	case KindMACEntry:
		return DefaultMACEntryRegistry()
	case KindNeighbor:
		return DefaultNeighborRegistry()
	case KindInventory:
		return DefaultInventoryRegistry()
	case KindIPAddress:
		return DefaultIPAddressRegistry()
	default:
		return nil
	}
}
