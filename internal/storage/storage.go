package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lotas/tabsave/internal/types"
	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound is returned when a profile has no snapshot with the
// requested rev.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotSummary holds the metadata for a snapshot.
type SnapshotSummary struct {
	ID        int64
	Rev       int
	Name      string // optional label
	Profile   string
	CreatedAt time.Time
	TabCount  int
}

// SnapshotFull is a snapshot with the projection it stored.
type SnapshotFull struct {
	SnapshotSummary
	Projection *types.Projection
}

// migration is a numbered schema change. Migrations are applied in order
// and tracked in the schema_migrations table so each runs exactly once.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		SQL: `
CREATE TABLE snapshots (
    id          INTEGER PRIMARY KEY,
    rev         INTEGER NOT NULL,
    name        TEXT,
    profile     TEXT NOT NULL,
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
    tab_count   INTEGER NOT NULL,
    UNIQUE(profile, rev)
);
CREATE TABLE snapshot_groups (
    id          INTEGER PRIMARY KEY,
    snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    label       TEXT NOT NULL
);
CREATE TABLE snapshot_tabs (
    id          INTEGER PRIMARY KEY,
    snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    group_id    INTEGER NOT NULL REFERENCES snapshot_groups(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    url         TEXT NOT NULL,
    title       TEXT NOT NULL
);
CREATE INDEX snapshot_tabs_group ON snapshot_tabs(group_id, position);`,
	},
}

// OpenDB opens (or creates) a SQLite database at the given path.
// It creates parent directories if needed, enables foreign keys and WAL mode,
// and runs any pending migrations.
func OpenDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// runMigrations ensures the schema_migrations table exists and applies
// every migration not recorded there yet.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// CreateSnapshot stores a projection in a single transaction. The rev number
// is auto-assigned per profile. Label is optional (empty string = no label).
// Returns the assigned rev number.
func CreateSnapshot(db *sql.DB, profile string, p *types.Projection, label string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rev int
	err = tx.QueryRow("SELECT COALESCE(MAX(rev), 0) + 1 FROM snapshots WHERE profile = ?", profile).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("compute next rev: %w", err)
	}

	var nameVal interface{}
	if label != "" {
		nameVal = label
	}

	res, err := tx.Exec(
		"INSERT INTO snapshots (rev, name, profile, tab_count) VALUES (?, ?, ?, ?)",
		rev, nameVal, profile, p.TabCount(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get snapshot id: %w", err)
	}

	for gi, g := range p.Groups {
		res, err := tx.Exec(
			"INSERT INTO snapshot_groups (snapshot_id, position, label) VALUES (?, ?, ?)",
			snapID, gi, g.Label,
		)
		if err != nil {
			return 0, fmt.Errorf("insert group %q: %w", g.Label, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("get group id: %w", err)
		}

		for ti, tab := range g.Tabs {
			_, err := tx.Exec(
				"INSERT INTO snapshot_tabs (snapshot_id, group_id, position, url, title) VALUES (?, ?, ?, ?, ?)",
				snapID, groupID, ti, tab.URL, tab.Title,
			)
			if err != nil {
				return 0, fmt.Errorf("insert tab %q: %w", tab.URL, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return rev, nil
}

// ListSnapshots returns all snapshots ordered by creation time descending.
func ListSnapshots(db *sql.DB) ([]SnapshotSummary, error) {
	rows, err := db.Query(
		"SELECT id, rev, name, profile, created_at, tab_count FROM snapshots ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var result []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		var name sql.NullString
		if err := rows.Scan(&s.ID, &s.Rev, &name, &s.Profile, &s.CreatedAt, &s.TabCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if name.Valid {
			s.Name = name.String
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return result, nil
}

// GetSnapshot loads a full snapshot by profile and rev number, rebuilding
// the projection with groups and tabs in their stored order.
func GetSnapshot(db *sql.DB, profile string, rev int) (*SnapshotFull, error) {
	snap := &SnapshotFull{Projection: &types.Projection{}}

	var name sql.NullString
	err := db.QueryRow(
		"SELECT id, rev, name, profile, created_at, tab_count FROM snapshots WHERE profile = ? AND rev = ?",
		profile, rev,
	).Scan(&snap.ID, &snap.Rev, &name, &snap.Profile, &snap.CreatedAt, &snap.TabCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: rev %d for profile %q", ErrSnapshotNotFound, rev, profile)
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	if name.Valid {
		snap.Name = name.String
	}

	groupRows, err := db.Query(
		"SELECT id, label FROM snapshot_groups WHERE snapshot_id = ? ORDER BY position",
		snap.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer groupRows.Close()

	groupIndex := make(map[int64]int)
	for groupRows.Next() {
		var id int64
		var label string
		if err := groupRows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groupIndex[id] = len(snap.Projection.Groups)
		snap.Projection.Groups = append(snap.Projection.Groups, types.Group{Label: label, Tabs: []types.TabEntry{}})
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	tabRows, err := db.Query(
		"SELECT group_id, url, title FROM snapshot_tabs WHERE snapshot_id = ? ORDER BY group_id, position",
		snap.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tabs: %w", err)
	}
	defer tabRows.Close()

	for tabRows.Next() {
		var groupID int64
		var tab types.TabEntry
		if err := tabRows.Scan(&groupID, &tab.URL, &tab.Title); err != nil {
			return nil, fmt.Errorf("scan tab: %w", err)
		}
		i, ok := groupIndex[groupID]
		if !ok {
			return nil, fmt.Errorf("tab %q references unknown group %d", tab.URL, groupID)
		}
		snap.Projection.Groups[i].Tabs = append(snap.Projection.Groups[i].Tabs, tab)
	}
	if err := tabRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tabs: %w", err)
	}

	return snap, nil
}

// GetLatestSnapshot returns the most recent snapshot for a profile.
// Returns nil, nil if no snapshots exist for the profile.
func GetLatestSnapshot(db *sql.DB, profile string) (*SnapshotFull, error) {
	var rev int
	err := db.QueryRow(
		"SELECT rev FROM snapshots WHERE profile = ? ORDER BY rev DESC LIMIT 1",
		profile,
	).Scan(&rev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest rev: %w", err)
	}
	return GetSnapshot(db, profile, rev)
}

// DeleteSnapshot removes a snapshot by profile and rev. Groups and tabs are cascade-deleted.
func DeleteSnapshot(db *sql.DB, profile string, rev int) error {
	res, err := db.Exec("DELETE FROM snapshots WHERE profile = ? AND rev = ?", profile, rev)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rev %d for profile %q", ErrSnapshotNotFound, rev, profile)
	}
	return nil
}
