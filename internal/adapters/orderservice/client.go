package orderservice

import (
	"context"
	"errors"

	"ordercal/internal/domain/holiday"
)

// ErrAuthRejected means the order service recognized the request but
// refused the credentials. Every other error from Login is a transport
// problem (network, non-2xx, parse) and is reported distinctly.
var ErrAuthRejected = errors.New("order service rejected the credentials")

// LoginResult carries the identity returned by a successful login.
type LoginResult struct {
	DisplayName string
}

// Client is the stateless transport to the external order service. It
// holds no order state; callers own all merging and bookkeeping.
type Client interface {
	// Login authenticates the user. Returns ErrAuthRejected on a
	// credential mismatch, a wrapped transport error otherwise.
	Login(ctx context.Context, userID, password string) (LoginResult, error)

	// FetchHolidays returns the non-orderable dates, normalized to
	// canonical form. Best-effort: callers proceed with an empty set on
	// failure.
	FetchHolidays(ctx context.Context) (holiday.Set, error)

	// FetchExistingOrders returns previously saved quantities keyed by
	// canonical date. Best-effort: callers proceed with zeros on failure.
	FetchExistingOrders(ctx context.Context, userID string) (map[string]map[string]int, error)

	// PushUpdate sends a single changed cell. At-most-once: the caller
	// never retries, and no ordering is guaranteed between overlapping
	// pushes.
	PushUpdate(ctx context.Context, userID, date, menuID string, quantity int) error
}
