package synclog

import (
	"context"

	domain "ordercal/internal/domain/synclog"
)

// Store persists the push journal.
type Store interface {
	Append(ctx context.Context, entry domain.Entry) error
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
