package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs emails instead of sending them. Used when no Resend key
// is configured, so development and tests never hit the real provider.
type NoopSender struct{}

// NewNoopSender creates a no-op sender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email and returns a fabricated message ID.
// POST: no external call is made
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email", "to", req.To, "subject", req.Subject, "bytes", len(req.HTML))
	return SendResult{MessageID: "noop-" + uuid.New().String(), SentAt: time.Now()}, nil
}
