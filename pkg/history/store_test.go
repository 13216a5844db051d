package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetsync/fleetsync/internal/errs"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing.json"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, total := s.List(Filter{}, 0, 0)
	if len(entries) != 0 || total != 0 {
		t.Fatalf("expected empty store, got %d entries", len(entries))
	}
}

func TestAppendPersistsAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := Open(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Append(Entry{ID: "1", OperationTag: "sync-netbox", Status: StatusSuccess, Timestamp: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := Open(path, 0)
	if err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}
	entries, total := reopened.List(Filter{}, 0, 0)
	if total != 1 || entries[0].ID != "1" {
		t.Fatalf("expected persisted entry to survive reopen, got %+v", entries)
	}
}

func TestRingBufferEvictsOldestPastCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 3)

	for i := 0; i < 4; i++ {
		_ = s.Append(Entry{ID: string(rune('a' + i)), Status: StatusSuccess})
	}

	entries, total := s.List(Filter{}, 0, 0)
	if total != 3 {
		t.Fatalf("expected cap of 3 entries, got %d", total)
	}
	// Oldest ("a") must be gone; newest ("d") must be present.
	for _, e := range entries {
		if e.ID == "a" {
			t.Fatal("expected the oldest entry to have been evicted")
		}
	}
	if entries[0].ID != "d" {
		t.Fatalf("expected newest-first ordering, got %+v", entries)
	}
}

func TestListFiltersByOperationAndStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 0)
	_ = s.Append(Entry{ID: "1", OperationTag: "devices", Status: StatusSuccess})
	_ = s.Append(Entry{ID: "2", OperationTag: "devices", Status: StatusError})
	_ = s.Append(Entry{ID: "3", OperationTag: "lldp", Status: StatusSuccess})

	entries, total := s.List(Filter{Operation: "devices"}, 0, 0)
	if total != 2 {
		t.Fatalf("expected 2 device entries, got %d", total)
	}

	entries, total = s.List(Filter{Status: StatusError}, 0, 0)
	if total != 1 || entries[0].ID != "2" {
		t.Fatalf("expected exactly entry 2, got %+v", entries)
	}
}

func TestListPagesWithLimitAndOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 0)
	for i := 0; i < 5; i++ {
		_ = s.Append(Entry{ID: string(rune('a' + i))})
	}

	page, total := s.List(Filter{}, 2, 1)
	if total != 5 || len(page) != 2 {
		t.Fatalf("expected total=5 page-len=2, got total=%d page=%+v", total, page)
	}
	// newest-first: e,d,c,b,a -> offset 1, limit 2 -> d,c
	if page[0].ID != "d" || page[1].ID != "c" {
		t.Fatalf("unexpected page contents: %+v", page)
	}
}

func TestAppendTruncatesDiffPerKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 0)

	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "detail"
	}
	_ = s.Append(Entry{ID: "1", Diff: map[string][]string{"devices": lines}})

	entries, _ := s.List(Filter{}, 0, 0)
	got := entries[0].Diff["devices"]
	if len(got) != MaxDetailsPerKind+1 {
		t.Fatalf("expected %d lines (5 kept + 1 summary), got %d: %v", MaxDetailsPerKind+1, len(got), got)
	}
	if got[len(got)-1] != "+3 more" {
		t.Fatalf("expected truncation summary '+3 more', got %q", got[len(got)-1])
	}
}

func TestStatsCountsByStatusAndOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 0)
	_ = s.Append(Entry{OperationTag: "devices", Status: StatusSuccess})
	_ = s.Append(Entry{OperationTag: "devices", Status: StatusPartial})
	_ = s.Append(Entry{OperationTag: "lldp", Status: StatusSuccess})

	stats := s.Stats()
	if stats.Total != 3 || stats.ByStatus[StatusSuccess] != 2 || stats.ByOperation["devices"] != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestClearEmptiesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, _ := Open(path, 0)
	_ = s.Append(Entry{ID: "1"})

	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, total := s.List(Filter{}, 0, 0)
	if total != 0 {
		t.Fatalf("expected empty after clear, got %d", total)
	}

	reopened, _ := Open(path, 0)
	_, total = reopened.List(Filter{}, 0, 0)
	if total != 0 {
		t.Fatalf("expected clear to persist, got %d entries after reopen", total)
	}
}

func TestAppendWrapsErrHistoryWriteFailOnUnwritablePath(t *testing.T) {
	// A path under a file (not a directory) can never be created by MkdirAll,
	// forcing saveLocked's write path to fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	s, err := Open(filepath.Join(blocker, "history.json"), 0)
	if err != nil {
		t.Fatalf("unexpected error opening a nonexistent path: %v", err)
	}
	err = s.Append(Entry{ID: "1"})
	if !errors.Is(err, errs.ErrHistoryWriteFail) {
		t.Fatalf("expected ErrHistoryWriteFail, got %v", err)
	}
}
