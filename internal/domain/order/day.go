package order

import (
	"errors"
	"fmt"
	"time"

	"ordercal/internal/domain/menu"
)

// DateFormat is the canonical date key format used everywhere in the app.
const DateFormat = "2006-01-02"

// Quantity bounds. The selectable range is the fixed closed set 0..10;
// anything outside it is a caller bug, never silently clamped.
const (
	MinQuantity = 0
	MaxQuantity = 10
)

// Domain errors
var (
	ErrQuantityRange = errors.New("quantity must be between 0 and 10")
	ErrUnknownMenu   = errors.New("menu item is not in the catalog")
)

// Day holds the ordered quantities for one calendar date.
// INVARIANT: Quantities has exactly one entry per catalog item, no extras.
type Day struct {
	Date       string // canonical YYYY-MM-DD
	Quantities map[string]int
}

// Clone returns a deep copy of the day.
// INVARIANT: the receiver is not mutated
func (d Day) Clone() Day {
	q := make(map[string]int, len(d.Quantities))
	for k, v := range d.Quantities {
		q[k] = v
	}
	return Day{Date: d.Date, Quantities: q}
}

// Weekday returns the day's weekday (Sunday = 0).
// PRE: Date is in canonical format
func (d Day) Weekday() (time.Weekday, error) {
	t, err := time.Parse(DateFormat, d.Date)
	if err != nil {
		return 0, fmt.Errorf("parse day date %q: %w", d.Date, err)
	}
	return t.Weekday(), nil
}

// CheckQuantity validates a proposed quantity value.
// POST: returns nil iff q is within [MinQuantity, MaxQuantity]
func CheckQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return ErrQuantityRange
	}
	return nil
}

// Horizon is the ordered sequence of days available for ordering in the
// current session. It is created once per session and regenerated only on
// the next login; there is no persistence across sessions.
type Horizon []Day

// Generate produces count consecutive days starting startOffsetDays after
// from, each with a zero quantity per catalog item in catalog order.
// Pure function of its arguments; calendar arithmetic handles month and
// year rollover.
// PRE: count >= 0, catalog has been validated
// POST: len(result) == count, strictly increasing consecutive dates
func Generate(from time.Time, startOffsetDays, count int, catalog menu.Catalog) Horizon {
	h := make(Horizon, 0, count)
	for i := 0; i < count; i++ {
		date := from.AddDate(0, 0, startOffsetDays+i)
		q := make(map[string]int, len(catalog))
		for _, item := range catalog {
			q[item.ID] = 0
		}
		h = append(h, Day{Date: date.Format(DateFormat), Quantities: q})
	}
	return h
}

// Clone returns a deep copy of the horizon.
func (h Horizon) Clone() Horizon {
	out := make(Horizon, len(h))
	for i, d := range h {
		out[i] = d.Clone()
	}
	return out
}
