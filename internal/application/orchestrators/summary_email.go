package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"ordercal/internal/adapters/email"
	"ordercal/internal/application/orderstate"
	"ordercal/internal/domain/menu"
)

// SummaryEmailInput carries the recipient and identity for the summary.
type SummaryEmailInput struct {
	UserID      string
	DisplayName string
	To          string
}

// SummaryEmailDeps holds dependencies for the summary email.
type SummaryEmailDeps struct {
	Sender  email.Sender
	Store   *orderstate.Store
	Catalog menu.Catalog
	From    string
	ReplyTo string
}

var ErrNoRecipient = errors.New("summary email needs a recipient address")

// ExecuteSummaryEmail mails the user their current horizon snapshot: one
// row per day that has at least one non-zero quantity. Days with only
// zeros are omitted to keep the mail readable.
// PRE: store belongs to an authenticated session
// POST: exactly one email sent on nil return
func ExecuteSummaryEmail(ctx context.Context, input SummaryEmailInput, deps SummaryEmailDeps) error {
	if strings.TrimSpace(input.To) == "" {
		return ErrNoRecipient
	}

	body := buildSummaryHTML(input.DisplayName, deps.Store, deps.Catalog)
	_, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{input.To},
		From:    deps.From,
		ReplyTo: deps.ReplyTo,
		Subject: "Your upcoming meal orders",
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	slog.Info("order_event", "event", "summary_emailed", "user", input.UserID, "to", input.To)
	return nil
}

func buildSummaryHTML(displayName string, store *orderstate.Store, catalog menu.Catalog) string {
	var b strings.Builder
	b.WriteString("<h2>Meal order summary</h2>")
	fmt.Fprintf(&b, "<p>Orders for %s:</p>", html.EscapeString(displayName))
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Date</th>")
	for _, item := range catalog {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(item.ID))
	}
	b.WriteString("</tr>")

	rows := 0
	for _, day := range store.Snapshot() {
		total := 0
		for _, q := range day.Quantities {
			total += q
		}
		if total == 0 {
			continue
		}
		rows++
		fmt.Fprintf(&b, "<tr><td>%s</td>", day.Date)
		for _, item := range catalog {
			fmt.Fprintf(&b, "<td>%d</td>", day.Quantities[item.ID])
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	if rows == 0 {
		b.WriteString("<p>No meals ordered yet.</p>")
	}
	return b.String()
}
