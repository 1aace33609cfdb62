package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema. Every statement is IF NOT EXISTS, so it is safe
// to run on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sequences (
		id                  TEXT PRIMARY KEY,
		family_id           TEXT NOT NULL,
		created_by          TEXT NOT NULL DEFAULT '',
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		category            TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL DEFAULT 'active'
		                    CHECK(status IN ('active','completed','archived')),
		completion_pct      REAL NOT NULL DEFAULT 0,
		due_date            TEXT,
		priority            TEXT NOT NULL DEFAULT 'medium'
		                    CHECK(priority IN ('low','medium','high','critical')),
		reminder_strategy   TEXT NOT NULL DEFAULT 'standard',
		delegation_strategy TEXT NOT NULL DEFAULT 'manual'
		                    CHECK(delegation_strategy IN ('manual','auto')),
		tags                TEXT NOT NULL DEFAULT '[]',
		last_updated_by     TEXT NOT NULL DEFAULT '',
		completed_at        TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sequences_family ON sequences(family_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                 TEXT PRIMARY KEY,
		sequence_id        TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		family_id          TEXT NOT NULL,
		created_by         TEXT NOT NULL DEFAULT '',
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category           TEXT NOT NULL DEFAULT '',
		priority           TEXT NOT NULL DEFAULT 'medium'
		                   CHECK(priority IN ('low','medium','high','critical')),
		due_date           TEXT,
		assigned_to        TEXT NOT NULL DEFAULT '',
		position           INTEGER NOT NULL DEFAULT 0,
		completed          INTEGER NOT NULL DEFAULT 0,
		completed_at       TEXT,
		completed_by       TEXT NOT NULL DEFAULT '',
		estimated_min      INTEGER NOT NULL DEFAULT 30,
		subtasks           TEXT NOT NULL DEFAULT '[]',
		reminder_strategy  TEXT NOT NULL DEFAULT '',
		reminder_last_sent TEXT,
		reminder_count     INTEGER NOT NULL DEFAULT 0,
		snooze_count       INTEGER NOT NULL DEFAULT 0,
		notes              TEXT NOT NULL DEFAULT '',
		tags               TEXT NOT NULL DEFAULT '[]',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_sequence ON tasks(sequence_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_family ON tasks(family_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assigned_to)`,

	// Dependencies may point forward within a batch insert, so the target
	// check is deferred to commit.
	`CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id       TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE
		              DEFERRABLE INITIALLY DEFERRED,
		PRIMARY KEY (task_id, depends_on_id),
		CHECK (task_id <> depends_on_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_deps_depends_on ON task_dependencies(depends_on_id)`,

	`CREATE TABLE IF NOT EXISTS sequence_progress (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence_id TEXT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		recorded_at TEXT NOT NULL,
		pct         REAL NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_progress_sequence ON sequence_progress(sequence_id, id)`,

	`CREATE TABLE IF NOT EXISTS members (
		id         TEXT PRIMARY KEY,
		family_id  TEXT NOT NULL,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL CHECK(role IN ('parent','child')),
		skills     TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_members_family ON members(family_id)`,
}
