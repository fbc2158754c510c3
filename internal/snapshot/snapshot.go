package snapshot

import (
	"database/sql"
	"fmt"

	"github.com/lotas/tabsave/internal/applog"
	"github.com/lotas/tabsave/internal/storage"
	"github.com/lotas/tabsave/internal/types"
)

// Create persists p as a new snapshot for profile. It first checks the
// latest snapshot for the profile and skips saving if the projection is
// identical. Returns the rev number, whether a new snapshot was created, the
// diff against the previous snapshot (nil if first), and error.
func Create(db *sql.DB, profile string, p *types.Projection, label string) (rev int, created bool, diff *DiffResult, err error) {
	latest, err := storage.GetLatestSnapshot(db, profile)
	if err != nil {
		return 0, false, nil, fmt.Errorf("get latest snapshot: %w", err)
	}

	if latest != nil && latest.Projection.Equal(p) {
		applog.Info("snapshot.skipped", "profile", profile, "rev", latest.Rev)
		return latest.Rev, false, nil, nil
	}

	newRev, err := storage.CreateSnapshot(db, profile, p, label)
	if err != nil {
		return 0, false, nil, err
	}
	applog.Info("snapshot.created", "rev", newRev, "tabs", p.TabCount(), "profile", profile)

	if latest != nil {
		diff = DiffProjections(latest.Projection, p)
		diff.RevFrom = latest.Rev
	}
	return newRev, true, diff, nil
}

// List returns the snapshots of profile, newest first. An empty profile
// lists every profile.
func List(db *sql.DB, profile string) ([]storage.SnapshotSummary, error) {
	all, err := storage.ListSnapshots(db)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		return all, nil
	}
	var result []storage.SnapshotSummary
	for _, s := range all {
		if s.Profile == profile {
			result = append(result, s)
		}
	}
	return result, nil
}
