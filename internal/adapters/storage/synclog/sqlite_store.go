package synclog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "ordercal/internal/domain/synclog"
)

const timeFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new sync journal store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append persists one push attempt.
// PRE: entry has been validated
// POST: entry is stored; existing entries are never updated
func (s *SQLiteStore) Append(ctx context.Context, entry domain.Entry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid sync log entry: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sync_log (id, user_id, order_date, menu_id, quantity, status, detail, attempted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Date, entry.MenuID, entry.Quantity, entry.Status, entry.Detail,
		entry.AttemptedAt.UTC().Format(timeFormat),
	)
	return err
}

// ListRecent retrieves the newest entries, most recent first.
// PRE: limit > 0
// POST: returns at most limit entries
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, order_date, menu_id, quantity, status, detail, attempted_at FROM sync_log ORDER BY attempted_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		var attempted string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.MenuID,
			&entry.Quantity, &entry.Status, &entry.Detail, &attempted); err != nil {
			return nil, err
		}
		entry.AttemptedAt, _ = time.Parse(timeFormat, attempted)
		results = append(results, entry)
	}
	return results, rows.Err()
}

// CountByStatus counts journal entries with the given outcome.
// PRE: status is StatusSent or StatusFailed
func (s *SQLiteStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sync_log WHERE status = ?", status).Scan(&n)
	return n, err
}
