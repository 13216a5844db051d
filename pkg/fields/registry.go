// Package fields implements the declarative field-enable/rename/order table
// described for each reconciled entity kind: which internal fields are
// exported, under what display name, in what order, and whether they may be
// synced or cleared when empty.
package fields

import "strings"

// EntityKind names one of the reconciled record kinds this registry covers.
type EntityKind string

const (
	KindDevice    EntityKind = "device"
	KindInterface EntityKind = "interface"
	KindMACEntry  EntityKind = "mac_entry"
	KindNeighbor  EntityKind = "neighbor"
	KindInventory EntityKind = "inventory"
	KindIPAddress EntityKind = "ip_address"
)

// SyncOptions carries the per-field flags consumed by the diff engine.
type SyncOptions struct {
	Syncable     bool `yaml:"syncable"`
	Comparable   bool `yaml:"comparable"`
	ClearOnEmpty bool `yaml:"clear_on_empty"`
}

// Field describes one internal struct field's export/import/sync behavior.
// The yaml tags let a Field be declared directly in a field-overrides
// config file (pkg/fields's LoadOverrideConfig), the same literal shape
// used by the Go defaults tables in defaults.go.
type Field struct {
	Internal    string      `yaml:"internal"`
	DisplayName string      `yaml:"display_name"`
	Enabled     bool        `yaml:"enabled"`
	Order       int         `yaml:"order"`
	Sync        SyncOptions `yaml:"sync"`
}

// Registry is the bidirectional internal-field <-> display-name table for
// one entity kind.
type Registry struct {
	kind   EntityKind
	fields []Field
}

// NewRegistry builds a Registry from field definitions. Definitions are
// copied and sorted by Order.
func NewRegistry(kind EntityKind, defs []Field) *Registry {
	fs := make([]Field, len(defs))
	copy(fs, defs)
	sortByOrder(fs)
	return &Registry{kind: kind, fields: fs}
}

func sortByOrder(fs []Field) {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && fs[j].Order < fs[j-1].Order; j-- {
			fs[j], fs[j-1] = fs[j-1], fs[j]
		}
	}
}

// Kind returns the entity kind this registry was built for.
func (r *Registry) Kind() EntityKind { return r.kind }

// Enabled returns the enabled fields in display order — the column set
// used for export.
func (r *Registry) Enabled() []Field {
	var out []Field
	for _, f := range r.fields {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// DisplayName returns the export column name for an internal field name,
// or the internal name unchanged if the field is unknown.
func (r *Registry) DisplayName(internal string) string {
	for _, f := range r.fields {
		if f.Internal == internal {
			return f.DisplayName
		}
	}
	return internal
}

// InternalName performs the case-insensitive reverse mapping from a
// previously-exported column name back onto its internal field name. Used
// when importing a table that was exported with DisplayName. Returns ok =
// false if no enabled field matches.
func (r *Registry) InternalName(display string) (internal string, ok bool) {
	for _, f := range r.fields {
		if f.Enabled && strings.EqualFold(f.DisplayName, display) {
			return f.Internal, true
		}
	}
	return "", false
}

// Syncable reports whether the named internal field participates in sync
// comparison at all.
func (r *Registry) Syncable(internal string) bool {
	f, ok := r.find(internal)
	return ok && f.Sync.Syncable
}

// Comparable reports whether the named internal field is compared by the
// diff engine.
func (r *Registry) Comparable(internal string) bool {
	f, ok := r.find(internal)
	return ok && f.Sync.Comparable
}

// ClearOnEmpty reports whether an empty value for this field means "clear
// it remotely" (true) as opposed to "leave remote value as is" (false).
func (r *Registry) ClearOnEmpty(internal string) bool {
	f, ok := r.find(internal)
	return ok && f.Sync.ClearOnEmpty
}

// CompareFields returns the internal names of every comparable field, in
// declared order — the default compare_fields list for the diff engine
// when a caller doesn't override it.
func (r *Registry) CompareFields() []string {
	var out []string
	for _, f := range r.fields {
		if f.Sync.Comparable {
			out = append(out, f.Internal)
		}
	}
	return out
}

func (r *Registry) find(internal string) (Field, bool) {
	for _, f := range r.fields {
		if f.Internal == internal {
			return f, true
		}
	}
	return Field{}, false
}
