package diff

import (
	"regexp"
	"testing"
)

type fakeRecord struct {
	key    string
	fields map[string]Value
}

func (f fakeRecord) Key() string { return f.key }
func (f fakeRecord) Field(name string) Value {
	if v, ok := f.fields[name]; ok {
		return v
	}
	return Value{}
}

func present(v string) Value { return Value{Raw: v, Present: true} }

func defaultOpts(compareFields ...string) Options {
	return Options{
		CreateMissing:  true,
		UpdateExisting: true,
		CompareFields:  compareFields,
		ClearOnEmpty: func(field string) bool {
			return field == "mode" || field == "description"
		},
	}
}

func TestComputePartitionIsTotalAndDisjoint(t *testing.T) {
	local := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"description": present("uplink")}},
		fakeRecord{key: "Gi0/2", fields: map[string]Value{"description": present("idle")}},
	}
	remote := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"description": present("uplink")}},
		fakeRecord{key: "Gi0/3", fields: map[string]Value{"description": present("stale")}},
	}
	d := Compute(local, remote, defaultOpts("description", "mode"))
	total := len(d.ToCreate) + len(d.ToUpdate) + len(d.ToDelete) + len(d.ToSkip)
	if total != 2 {
		t.Fatalf("expected 2 total items (local keys only; cleanup off leaves remote-only Gi0/3 out), got %d", total)
	}
	if len(d.ToCreate) != 1 || d.ToCreate[0].Name != "Gi0/2" {
		t.Fatalf("expected Gi0/2 to be created, got %+v", d.ToCreate)
	}
	if len(d.ToSkip) != 1 || d.ToSkip[0].Name != "Gi0/1" {
		t.Fatalf("expected Gi0/1 to be skipped (identical), got %+v", d.ToSkip)
	}
}

func TestComputeClearModeSemantics(t *testing.T) {
	local := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"mode": present("")}},
	}
	remote := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"mode": present("tagged-all")}},
	}
	d := Compute(local, remote, defaultOpts("mode"))
	if len(d.ToUpdate) != 1 {
		t.Fatalf("expected 1 update (empty mode clears), got %+v", d)
	}
	fc := d.ToUpdate[0].FieldChanges
	if len(fc) != 1 || fc[0].Field != "mode" || fc[0].OldValue != "tagged-all" || fc[0].NewValue != "" {
		t.Fatalf("unexpected field changes: %+v", fc)
	}
}

func TestComputeAbsentFieldLeavesAsIs(t *testing.T) {
	local := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{}}, // mode never supplied
	}
	remote := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"mode": present("tagged-all")}},
	}
	d := Compute(local, remote, defaultOpts("mode"))
	if len(d.ToSkip) != 1 || len(d.ToUpdate) != 0 {
		t.Fatalf("expected skip when field absent, got %+v", d)
	}
}

func TestComputeNonClearingFieldTreatsEmptyAsAbsent(t *testing.T) {
	local := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"speed": present("")}},
	}
	remote := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"speed": present("1000")}},
	}
	d := Compute(local, remote, defaultOpts("speed"))
	if len(d.ToSkip) != 1 || len(d.ToUpdate) != 0 {
		t.Fatalf("expected skip for empty non-clearing field, got %+v", d)
	}
}

func TestComputeCleanupDeletesUnmatchedRemote(t *testing.T) {
	local := []Record{fakeRecord{key: "Gi0/1"}}
	remote := []Record{fakeRecord{key: "Gi0/1"}, fakeRecord{key: "Gi0/99"}}
	opts := defaultOpts()
	opts.Cleanup = true
	d := Compute(local, remote, opts)
	if len(d.ToDelete) != 1 || d.ToDelete[0].Name != "Gi0/99" {
		t.Fatalf("expected Gi0/99 deleted, got %+v", d.ToDelete)
	}
}

func TestComputeExcludePatternSkipsKey(t *testing.T) {
	local := []Record{fakeRecord{key: "Vlan100"}}
	opts := defaultOpts()
	opts.ExcludePatterns = []*regexp.Regexp{regexp.MustCompile(`^Vlan`)}
	d := Compute(local, nil, opts)
	total := len(d.ToCreate) + len(d.ToUpdate) + len(d.ToDelete) + len(d.ToSkip)
	if total != 0 {
		t.Fatalf("expected excluded key to produce no diff item, got %+v", d)
	}
}

func TestComputeDryRunProducesIdenticalDiff(t *testing.T) {
	local := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"description": present("uplink")}},
	}
	remote := []Record{
		fakeRecord{key: "Gi0/1", fields: map[string]Value{"description": present("old")}},
	}
	opts := defaultOpts("description")
	d1 := Compute(local, remote, opts)
	d2 := Compute(local, remote, opts)
	if len(d1.ToUpdate) != len(d2.ToUpdate) || d1.ToUpdate[0].FieldChanges[0] != d2.ToUpdate[0].FieldChanges[0] {
		t.Fatalf("expected identical diffs across repeated computation")
	}
}
