package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/application/orderstate"
	synclogStore "ordercal/internal/adapters/storage/synclog"
	synclogDomain "ordercal/internal/domain/synclog"
)

// EditCellInput identifies one (date, menu) cell and its new quantity.
type EditCellInput struct {
	UserID   string
	Date     string
	MenuID   string
	Quantity int
}

// EditCellDeps holds dependencies for the optimistic edit.
type EditCellDeps struct {
	Store *orderstate.Store
}

// ExecuteEditCell applies the optimistic local edit. It never talks to the
// network: the caller launches ExecutePushCell separately so the visible
// snapshot updates regardless of transport latency or outcome.
// POST: on nil return the snapshot already reflects the new quantity
func ExecuteEditCell(ctx context.Context, input EditCellInput, deps EditCellDeps) error {
	if err := deps.Store.ApplyLocalEdit(input.Date, input.MenuID, input.Quantity); err != nil {
		return err
	}
	slog.Info("order_event", "event", "cell_edited", "user", input.UserID,
		"date", input.Date, "menu", input.MenuID, "quantity", input.Quantity)
	return nil
}

// PushCellDeps holds dependencies for the server push.
type PushCellDeps struct {
	Service orderservice.Client
	Journal synclogStore.Store
}

// ExecutePushCell sends one changed cell to the order service and journals
// the outcome. At-most-once: a failure is logged, never retried — the value
// is only re-sent if the user edits the cell again. Callers invoke this
// after ExecuteEditCell, usually on its own goroutine; overlapping pushes
// carry no ordering guarantee, which is a known limitation of the protocol.
// POST: exactly one journal entry appended per call
func ExecutePushCell(ctx context.Context, input EditCellInput, deps PushCellDeps) {
	entry := synclogDomain.Entry{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		Date:        input.Date,
		MenuID:      input.MenuID,
		Quantity:    input.Quantity,
		Status:      synclogDomain.StatusSent,
		AttemptedAt: time.Now(),
	}

	if err := deps.Service.PushUpdate(ctx, input.UserID, input.Date, input.MenuID, input.Quantity); err != nil {
		entry.Status = synclogDomain.StatusFailed
		entry.Detail = err.Error()
		slog.Error("sync_event", "event", "push_failed", "user", input.UserID,
			"date", input.Date, "menu", input.MenuID, "error", err.Error())
	} else {
		slog.Info("sync_event", "event", "push_sent", "user", input.UserID,
			"date", input.Date, "menu", input.MenuID, "quantity", input.Quantity)
	}

	if deps.Journal != nil {
		if err := deps.Journal.Append(ctx, entry); err != nil {
			slog.Error("sync_event", "event", "journal_append_failed", "error", err.Error())
		}
	}
}
