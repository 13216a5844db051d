// Package diff implements the structural comparator that produces the
// four-way create/update/delete/skip partition consumed by the
// reconciliation engine.
package diff

import "regexp"

// ChangeKind classifies one DiffItem.
type ChangeKind string

const (
	Create ChangeKind = "create"
	Update ChangeKind = "update"
	Delete ChangeKind = "delete"
	Skip   ChangeKind = "skip"
)

// FieldChange is one field-level delta inside an update item.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// Value is a field lookup result. Present distinguishes "the field was not
// supplied" from "the field was supplied as an empty string" — the
// distinction the mode/description clear semantics depend on.
type Value struct {
	Raw     string
	Present bool
}

// Record is anything the comparator can index and field-compare: local
// normalized records and remote inventory objects alike implement it.
type Record interface {
	// Key returns the canonical identity used to match local and remote
	// records (e.g. a canonical interface name, a hostname).
	Key() string
	// Field returns the value of a named comparable field.
	Field(name string) Value
}

// DiffItem is one entry in the sync plan.
type DiffItem struct {
	Name         string
	ChangeKind   ChangeKind
	Local        Record
	Remote       Record
	FieldChanges []FieldChange
}

// Options parametrizes one Compute call.
type Options struct {
	ExcludePatterns []*regexp.Regexp
	CreateMissing   bool
	UpdateExisting  bool
	Cleanup         bool
	CompareFields   []string
	// ClearOnEmpty reports, per field, whether an explicitly empty local
	// value means "clear this field remotely" (true) or is equivalent to
	// "field not supplied, leave as is" (false).
	ClearOnEmpty func(field string) bool
}

// Diff is the four-way partition. Every key appears in at most one of the
// four slices. Keys matching an exclude pattern appear in none; a
// remote-only key appears in ToDelete only when Cleanup is set, and a
// local-only key appears in ToCreate only when CreateMissing is set.
type Diff struct {
	ToCreate []DiffItem
	ToUpdate []DiffItem
	ToDelete []DiffItem
	ToSkip   []DiffItem
}

// Compute indexes local and remote by Key and produces the sync plan.
func Compute(local, remote []Record, opts Options) Diff {
	remoteByKey := make(map[string]Record, len(remote))
	for _, r := range remote {
		remoteByKey[r.Key()] = r
	}
	seenLocal := make(map[string]bool, len(local))

	var d Diff
	for _, l := range local {
		key := l.Key()
		seenLocal[key] = true
		if isExcluded(key, opts.ExcludePatterns) {
			continue
		}
		r, exists := remoteByKey[key]
		if !exists {
			if opts.CreateMissing {
				d.ToCreate = append(d.ToCreate, DiffItem{Name: key, ChangeKind: Create, Local: l})
			}
			continue
		}
		if !opts.UpdateExisting {
			d.ToSkip = append(d.ToSkip, DiffItem{Name: key, ChangeKind: Skip, Local: l, Remote: r})
			continue
		}
		changes := compareFields(l, r, opts)
		if len(changes) > 0 {
			d.ToUpdate = append(d.ToUpdate, DiffItem{Name: key, ChangeKind: Update, Local: l, Remote: r, FieldChanges: changes})
		} else {
			d.ToSkip = append(d.ToSkip, DiffItem{Name: key, ChangeKind: Skip, Local: l, Remote: r})
		}
	}

	if opts.Cleanup {
		for _, r := range remote {
			key := r.Key()
			if seenLocal[key] {
				continue
			}
			if isExcluded(key, opts.ExcludePatterns) {
				continue
			}
			d.ToDelete = append(d.ToDelete, DiffItem{Name: key, ChangeKind: Delete, Remote: r})
		}
	}
	return d
}

// compareFields compares only the fields the local record actually supplied:
// a field absent from the local record is always left as-is; an explicitly
// empty field is compared only when ClearOnEmpty says empty is meaningful
// for that field.
func compareFields(local, remote Record, opts Options) []FieldChange {
	var changes []FieldChange
	for _, field := range opts.CompareFields {
		lv := local.Field(field)
		if !lv.Present {
			continue
		}
		clears := opts.ClearOnEmpty != nil && opts.ClearOnEmpty(field)
		if lv.Raw == "" && !clears {
			continue
		}
		rv := remote.Field(field)
		if lv.Raw == rv.Raw {
			continue
		}
		changes = append(changes, FieldChange{Field: field, OldValue: rv.Raw, NewValue: lv.Raw})
	}
	return changes
}

func isExcluded(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
