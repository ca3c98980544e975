package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// seq keeps insertion order stable across updates.
	`CREATE TABLE IF NOT EXISTS projects (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		budget      INTEGER NOT NULL CHECK(budget >= 0),
		spent       INTEGER NOT NULL CHECK(spent >= 0),
		location    TEXT NOT NULL DEFAULT '',
		ministry    TEXT NOT NULL DEFAULT '',
		contractor  TEXT NOT NULL DEFAULT '',
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_ministry ON projects(ministry)`,

	`CREATE TABLE IF NOT EXISTS conversation_turns (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		seq             INTEGER NOT NULL,
		role            TEXT NOT NULL CHECK(role IN ('user','bot','system')),
		content         TEXT NOT NULL,
		created_at      TEXT NOT NULL,
		UNIQUE(conversation_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON conversation_turns(conversation_id, seq)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}
