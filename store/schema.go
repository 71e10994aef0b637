// Package store persists simulation runs, snapshots and summaries in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL,
    applied_at TEXT NOT NULL
);

-- One row per simulation invocation
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,      -- 'trial' or 'aggregate'
    label TEXT NOT NULL,
    mode TEXT NOT NULL,      -- 'constant' or 'seasonal'
    graph TEXT NOT NULL,     -- topology description
    nodes INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    params TEXT NOT NULL,    -- JSON engine configuration
    created_at TEXT NOT NULL
);

-- Periodic trial observations
CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    label TEXT NOT NULL,
    t REAL NOT NULL,
    fraction REAL NOT NULL,
    PRIMARY KEY (run_id, seq)
);

-- Monte-Carlo reductions
CREATE TABLE IF NOT EXISTS summaries (
    run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
    trials INTEGER NOT NULL,
    mean REAL NOT NULL,
    stddev REAL NOT NULL,
    extinct INTEGER NOT NULL,
    mean_extinction_time REAL NOT NULL
);
`

// InitSchema creates the schema on a fresh database and is a no-op on a
// database already at SchemaVersion.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if version, err := getSchemaVersion(ctx, db); err == nil {
		if version > SchemaVersion {
			return fmt.Errorf("database schema v%d is newer than supported v%d", version, SchemaVersion)
		}
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// getSchemaVersion returns the current schema version from the database.
// Returns an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, fmt.Errorf("schema_version is empty")
	}
	return int(version.Int64), nil
}
