package orchestrators

import (
	"context"
	"log/slog"
	"sync"

	"ordercal/internal/adapters/orderservice"
	"ordercal/internal/application/orderstate"
)

// RefreshDeps holds dependencies for Refresh.
type RefreshDeps struct {
	Service orderservice.Client
	Store   *orderstate.Store
}

// ExecuteRefresh issues the holiday fetch and the existing-orders fetch
// concurrently and merges each result into the store as it lands. Neither
// fetch is conditioned on the other and neither failure is fatal: a failed
// holiday fetch leaves an empty set, a failed orders fetch leaves the
// zero-initialized quantities.
// PRE: store is authenticated session state
// POST: both fetches have completed (successfully or not)
func ExecuteRefresh(ctx context.Context, deps RefreshDeps, userID string) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		set, err := deps.Service.FetchHolidays(ctx)
		if err != nil {
			slog.Warn("sync_event", "event", "holiday_fetch_failed", "error", err.Error())
			return
		}
		deps.Store.SetHolidays(set)
		slog.Info("sync_event", "event", "holidays_merged", "count", len(set))
	}()

	go func() {
		defer wg.Done()
		existing, err := deps.Service.FetchExistingOrders(ctx, userID)
		if err != nil {
			slog.Warn("sync_event", "event", "order_fetch_failed", "user", userID, "error", err.Error())
			return
		}
		deps.Store.MergeServerOrders(existing)
		slog.Info("sync_event", "event", "orders_merged", "user", userID, "days", len(existing))
	}()

	wg.Wait()
}
