package snapshot

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lotas/tabsave/internal/storage"
	"github.com/lotas/tabsave/internal/types"
)

// DiffEntry represents a single tab in a diff result.
type DiffEntry struct {
	URL   string
	Title string
	Group string // group label
}

// DiffResult holds the result of comparing a snapshot against another projection.
type DiffResult struct {
	RevFrom int
	Added   []DiffEntry // in current but not in snapshot
	Removed []DiffEntry // in snapshot but not in current
}

type tabKey struct {
	group string
	url   string
}

// DiffProjections compares two projections by (group label, URL). A tab that
// moved to another group shows up as removed from the old group and added to
// the new one. Entries follow the order of the projection they come from and
// repeated tabs are reported once.
func DiffProjections(old, current *types.Projection) *DiffResult {
	return &DiffResult{
		Added:   missingFrom(current, old),
		Removed: missingFrom(old, current),
	}
}

// missingFrom lists the tabs of src whose (group, URL) pair is absent in other.
func missingFrom(src, other *types.Projection) []DiffEntry {
	present := make(map[tabKey]bool)
	if other != nil {
		for _, g := range other.Groups {
			for _, t := range g.Tabs {
				present[tabKey{g.Label, t.URL}] = true
			}
		}
	}

	var result []DiffEntry
	if src == nil {
		return result
	}
	seen := make(map[tabKey]bool)
	for _, g := range src.Groups {
		for _, t := range g.Tabs {
			k := tabKey{g.Label, t.URL}
			if present[k] || seen[k] {
				continue
			}
			seen[k] = true
			result = append(result, DiffEntry{URL: t.URL, Title: t.Title, Group: g.Label})
		}
	}
	return result
}

// DiffAgainstCurrent compares a stored snapshot against the current
// projection. A rev of 0 selects the latest snapshot of the profile.
func DiffAgainstCurrent(db *sql.DB, profile string, rev int, current *types.Projection) (*DiffResult, error) {
	var snap *storage.SnapshotFull
	var err error
	if rev == 0 {
		snap, err = storage.GetLatestSnapshot(db, profile)
		if err == nil && snap == nil {
			err = fmt.Errorf("%w: profile %q has no snapshots", storage.ErrSnapshotNotFound, profile)
		}
	} else {
		snap, err = storage.GetSnapshot(db, profile, rev)
	}
	if err != nil {
		return nil, err
	}

	result := DiffProjections(snap.Projection, current)
	result.RevFrom = snap.Rev
	return result, nil
}

// FormatDiff returns a human-readable string representation of a DiffResult.
func FormatDiff(d *DiffResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Diff against snapshot #%d\n", d.RevFrom)
	fmt.Fprintf(&sb, "Added: %d  Removed: %d\n", len(d.Added), len(d.Removed))

	if len(d.Added) > 0 {
		sb.WriteString("\n+ Added:\n")
		for _, e := range d.Added {
			fmt.Fprintf(&sb, "  + %s [%s]\n", e.URL, e.Group)
		}
	}

	if len(d.Removed) > 0 {
		sb.WriteString("\n- Removed:\n")
		for _, e := range d.Removed {
			fmt.Fprintf(&sb, "  - %s [%s]\n", e.URL, e.Group)
		}
	}

	if len(d.Added) == 0 && len(d.Removed) == 0 {
		sb.WriteString("\nNo changes.\n")
	}

	return sb.String()
}
