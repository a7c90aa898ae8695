package synclog

import (
	"errors"
	"time"
)

// Outcome constants.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Domain errors
var (
	ErrEmptyID     = errors.New("sync log entry id cannot be empty")
	ErrEmptyUser   = errors.New("sync log entry user cannot be empty")
	ErrEmptyDate   = errors.New("sync log entry date cannot be empty")
	ErrEmptyMenu   = errors.New("sync log entry menu cannot be empty")
	ErrBadStatus   = errors.New("sync log entry status must be 'sent' or 'failed'")
	ErrZeroAttempt = errors.New("sync log entry attempt time cannot be zero")
)

// Entry records one push attempt against the order service. The journal is
// diagnostic only: it is never replayed, so a failed entry does not imply a
// pending retry.
type Entry struct {
	ID          string
	UserID      string
	Date        string // canonical YYYY-MM-DD
	MenuID      string
	Quantity    int
	Status      string // StatusSent or StatusFailed
	Detail      string // error text for failed attempts
	AttemptedAt time.Time
}

// Validate checks the entry's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.UserID == "" {
		return ErrEmptyUser
	}
	if e.Date == "" {
		return ErrEmptyDate
	}
	if e.MenuID == "" {
		return ErrEmptyMenu
	}
	if e.Status != StatusSent && e.Status != StatusFailed {
		return ErrBadStatus
	}
	if e.AttemptedAt.IsZero() {
		return ErrZeroAttempt
	}
	return nil
}
