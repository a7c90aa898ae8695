package calendar

import (
	"time"

	"ordercal/internal/domain/holiday"
	"ordercal/internal/domain/order"
)

// WeekLength is the number of real columns in a week page: Monday through
// Saturday. Sundays never appear in the grid.
const WeekLength = 6

// Cell is one grid position: either a real day or a leading blank used to
// align the first day to its weekday column.
type Cell struct {
	Day     order.Day
	Blank   bool
	Holiday bool // visible but inputs disabled
}

// Grid is a derived, non-owned view over a horizon: Sundays filtered out,
// leading blanks prepended so the first real day lands in its Monday-start
// column. Recomputed whenever the horizon or holiday set changes; never
// mutated in place.
type Grid struct {
	Cells []Cell
}

// IsOrderable reports whether quantity edits are accepted for the date.
// A day is non-orderable when it falls on a Sunday or is in the holiday
// set. The two cases differ in presentation only: Sundays are removed from
// the grid, holidays stay visible with disabled inputs.
// PRE: date is in canonical YYYY-MM-DD form
func IsOrderable(date string, holidays holiday.Set) bool {
	t, err := time.Parse(order.DateFormat, date)
	if err != nil {
		return false
	}
	if t.Weekday() == time.Sunday {
		return false
	}
	return !holidays.Contains(date)
}

// Layout arranges the horizon into a week-aligned grid.
// PRE: horizon dates are canonical and in ascending order
// POST: no Sunday appears in Cells; leading blanks place the first real
// day in the column 0=Monday .. 5=Saturday
func Layout(horizon order.Horizon, holidays holiday.Set) Grid {
	var cells []Cell
	for _, d := range horizon {
		wd, err := d.Weekday()
		if err != nil || wd == time.Sunday {
			continue
		}
		cells = append(cells, Cell{
			Day:     d.Clone(),
			Holiday: holidays.Contains(d.Date),
		})
	}
	if len(cells) == 0 {
		return Grid{}
	}

	// Monday lands in column 0, so a first day on weekday w needs
	// (w+6) mod 7 blanks before it.
	firstWd, _ := cells[0].Day.Weekday()
	blanks := (int(firstWd) + 6) % 7
	padded := make([]Cell, 0, blanks+len(cells))
	for i := 0; i < blanks; i++ {
		padded = append(padded, Cell{Blank: true})
	}
	padded = append(padded, cells...)
	return Grid{Cells: padded}
}

// Weeks splits the cells into fixed-size pages of WeekLength for the
// week-by-week presentation. Chunking preserves cell order and identity;
// the final page may be short.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += WeekLength {
		end := i + WeekLength
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		weeks = append(weeks, g.Cells[i:end])
	}
	return weeks
}
