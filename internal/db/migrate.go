package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and are
// re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		normal_working_hours  REAL NOT NULL DEFAULT 8 CHECK(normal_working_hours > 0),
		bank_details          TEXT NOT NULL DEFAULT '',
		notifications_enabled INTEGER NOT NULL DEFAULT 1,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS branches (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS work_sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		branch_id  TEXT NOT NULL REFERENCES branches(id),
		start_time TEXT NOT NULL,
		end_time   TEXT,
		timezone   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_sessions_user_start ON work_sessions(user_id, start_time)`,

	// At most one running session per user.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_work_sessions_active ON work_sessions(user_id) WHERE end_time IS NULL`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		message           TEXT NOT NULL,
		type              TEXT NOT NULL,
		kind              TEXT NOT NULL CHECK(kind IN ('start','stop','auto_stop')),
		related_entity_id TEXT NOT NULL DEFAULT '',
		read              INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,

	// Tenant scoping.
	`ALTER TABLE users ADD COLUMN organization_id TEXT`,
	`ALTER TABLE work_sessions ADD COLUMN organization_id TEXT`,
}
