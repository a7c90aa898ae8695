package orderstate

import (
	"errors"
	"sync"

	"ordercal/internal/domain/calendar"
	"ordercal/internal/domain/holiday"
	"ordercal/internal/domain/menu"
	"ordercal/internal/domain/order"
)

// Store-level errors
var (
	ErrUnknownDate     = errors.New("date is not in the current horizon")
	ErrDayNotOrderable = errors.New("day is not orderable")
)

// Store is the single writer of the session's order state. It owns the
// horizon exclusively: edits are applied optimistically (before any server
// acknowledgment) and server state merges in wholesale per date. The mutex
// serializes access from concurrent HTTP handlers.
type Store struct {
	mu       sync.RWMutex
	catalog  menu.Catalog
	holidays holiday.Set
	days     order.Horizon
	index    map[string]int // date -> position in days
}

// New creates a store owning the given horizon.
// PRE: horizon was generated from catalog (one quantity entry per item)
func New(horizon order.Horizon, catalog menu.Catalog) *Store {
	s := &Store{
		catalog:  catalog,
		holidays: holiday.Set{},
		days:     horizon.Clone(),
		index:    make(map[string]int, len(horizon)),
	}
	for i, d := range s.days {
		s.index[d.Date] = i
	}
	return s
}

// SetHolidays installs the holiday set fetched after login.
// POST: subsequent edits on those dates are rejected
func (s *Store) SetHolidays(set holiday.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = set
}

// Holidays returns the current holiday set.
func (s *Store) Holidays() holiday.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holidays
}

// ApplyLocalEdit replaces exactly one (date, menu) quantity, leaving every
// other entry untouched. The change is visible in the snapshot immediately,
// independent of whether the corresponding push ever succeeds.
// PRE: none — all inputs are validated here
// POST: on nil return, snapshot()[date][menuID] == quantity
func (s *Store) ApplyLocalEdit(date, menuID string, quantity int) error {
	if err := order.CheckQuantity(quantity); err != nil {
		return err
	}
	if !s.catalog.Has(menuID) {
		return order.ErrUnknownMenu
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[date]
	if !ok {
		return ErrUnknownDate
	}
	if !calendar.IsOrderable(date, s.holidays) {
		return ErrDayNotOrderable
	}
	s.days[i].Quantities[menuID] = quantity
	return nil
}

// MergeServerOrders replaces each matching day's quantities wholesale with
// the server-provided mapping, normalized onto the catalog: items missing
// from the server entry reset to zero, ids outside the catalog are dropped.
// Days without a server entry keep their current quantities. The merge is a
// per-date snapshot replace, so edits applied after it returns are never
// clobbered by it.
// PRE: existing keys are canonical dates
func (s *Store) MergeServerOrders(existing map[string]map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for date, serverQ := range existing {
		i, ok := s.index[date]
		if !ok {
			continue
		}
		q := make(map[string]int, len(s.catalog))
		for _, item := range s.catalog {
			q[item.ID] = serverQ[item.ID]
		}
		s.days[i].Quantities = q
	}
}

// Snapshot returns a deep-copied view of the horizon for rendering.
// INVARIANT: callers cannot mutate store state through the result
func (s *Store) Snapshot() order.Horizon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.days.Clone()
}

// Grid lays the current snapshot out against the current holiday set.
func (s *Store) Grid() calendar.Grid {
	s.mu.RLock()
	days := s.days.Clone()
	holidays := s.holidays
	s.mu.RUnlock()
	return calendar.Layout(days, holidays)
}
