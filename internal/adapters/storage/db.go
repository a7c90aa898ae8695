package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: all tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// The journal is append-only diagnostics, not a retry queue; order
	// state itself is never persisted.
	schema := `
	CREATE TABLE IF NOT EXISTS sync_log (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		order_date TEXT NOT NULL,
		menu_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		status TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		attempted_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sync_log_attempted_at ON sync_log(attempted_at);
	CREATE INDEX IF NOT EXISTS idx_sync_log_status ON sync_log(status);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
