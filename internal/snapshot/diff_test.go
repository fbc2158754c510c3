package snapshot

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lotas/tabsave/internal/storage"
	"github.com/lotas/tabsave/internal/types"
)

func TestDiffProjections(t *testing.T) {
	old := projection(
		group("Work", "https://kept.com", "https://moved.com", "https://gone.com"),
		group(types.UngroupedLabel, "https://loose.com"),
	)
	current := projection(
		group("Work", "https://kept.com", "https://new.com", "https://new.com"),
		group(types.UngroupedLabel, "https://loose.com", "https://moved.com"),
	)

	got := DiffProjections(old, current)
	want := &DiffResult{
		Added: []DiffEntry{
			{URL: "https://new.com", Title: "https://new.com", Group: "Work"},
			{URL: "https://moved.com", Title: "https://moved.com", Group: types.UngroupedLabel},
		},
		Removed: []DiffEntry{
			{URL: "https://moved.com", Title: "https://moved.com", Group: "Work"},
			{URL: "https://gone.com", Title: "https://gone.com", Group: "Work"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiffProjections mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffAgainstCurrent(t *testing.T) {
	db := testDB(t)

	storage.CreateSnapshot(db, "default", projection(group("Work", "https://kept.com", "https://removed.com")), "")

	current := projection(group("Work", "https://kept.com", "https://added.com"))

	// rev=0 means latest.
	result, err := DiffAgainstCurrent(db, "default", 0, current)
	if err != nil {
		t.Fatalf("DiffAgainstCurrent: %v", err)
	}
	if result.RevFrom != 1 {
		t.Errorf("expected RevFrom=1, got %d", result.RevFrom)
	}
	if len(result.Added) != 1 || result.Added[0].URL != "https://added.com" {
		t.Errorf("expected 1 added (added.com), got %v", result.Added)
	}
	if len(result.Removed) != 1 || result.Removed[0].URL != "https://removed.com" {
		t.Errorf("expected 1 removed (removed.com), got %v", result.Removed)
	}
}

func TestDiffAgainstCurrentByRev(t *testing.T) {
	db := testDB(t)

	storage.CreateSnapshot(db, "default", projection(group("A", "https://one.com")), "")
	storage.CreateSnapshot(db, "default", projection(group("A", "https://one.com", "https://two.com")), "")

	result, err := DiffAgainstCurrent(db, "default", 1, projection(group("A", "https://one.com", "https://two.com")))
	if err != nil {
		t.Fatalf("DiffAgainstCurrent: %v", err)
	}
	if result.RevFrom != 1 {
		t.Errorf("expected RevFrom=1, got %d", result.RevFrom)
	}
	if len(result.Added) != 1 || result.Added[0].URL != "https://two.com" {
		t.Errorf("expected two.com added, got %v", result.Added)
	}
}

func TestDiffAgainstCurrentNoSnapshots(t *testing.T) {
	db := testDB(t)

	_, err := DiffAgainstCurrent(db, "default", 0, projection())
	if !errors.Is(err, storage.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestFormatDiff(t *testing.T) {
	out := FormatDiff(&DiffResult{
		RevFrom: 3,
		Added:   []DiffEntry{{URL: "https://a.com", Group: "Work"}},
		Removed: []DiffEntry{{URL: "https://b.com", Group: types.UngroupedLabel}},
	})
	for _, want := range []string{
		"Diff against snapshot #3",
		"Added: 1  Removed: 1",
		"  + https://a.com [Work]",
		"  - https://b.com [no group tabs]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	empty := FormatDiff(&DiffResult{RevFrom: 1})
	if !strings.Contains(empty, "No changes.") {
		t.Errorf("expected 'No changes.' in:\n%s", empty)
	}
}
