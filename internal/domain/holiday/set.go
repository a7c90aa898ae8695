package holiday

import (
	"fmt"
	"strings"
	"time"
)

// The order service is inconsistent about date separators ("/" vs "-"),
// so every date string is canonicalized to ISO YYYY-MM-DD once, at the
// boundary, before it can be compared against internally generated dates.
var acceptedFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
}

// NormalizeDate canonicalizes a server-supplied date string to YYYY-MM-DD.
// PRE: none
// POST: returns the canonical form, or an error if no accepted format matches
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date string %q", s)
}

// Set is the set of non-orderable holiday dates for the session, keyed by
// canonical date string. It is read-only input to the calendar layout.
type Set map[string]struct{}

// NewSet builds a set from raw server date strings, normalizing each.
// Unparseable entries are skipped rather than failing the whole set: a
// malformed holiday must not block login.
// POST: every key in the result is canonical
func NewSet(dates []string) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		canonical, err := NormalizeDate(d)
		if err != nil {
			continue
		}
		s[canonical] = struct{}{}
	}
	return s
}

// Contains reports whether the canonical date is a holiday.
// PRE: date is in canonical YYYY-MM-DD form
// INVARIANT: Set is not mutated
func (s Set) Contains(date string) bool {
	_, ok := s[date]
	return ok
}
