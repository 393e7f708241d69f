package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS similarity_cache (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cache_key TEXT UNIQUE NOT NULL,
    folder TEXT NOT NULL,
    kw_weight REAL NOT NULL,
    desc_weight REAL NOT NULL,
    head_weight REAL NOT NULL,
    payload TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_similarity_cache_folder ON similarity_cache(folder);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version.
func latestVersion() int {
	return migrations[len(migrations)-1].Version
}
