package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Domain errors
var (
	ErrEmptyCatalog = errors.New("menu catalog cannot be empty")
	ErrEmptyID      = errors.New("menu item id cannot be empty")
	ErrDuplicateID  = errors.New("menu item ids must be unique")
)

// Item is a single orderable menu item. ID doubles as the display label,
// matching the order service's contract. Description is optional markdown
// shown on the calendar page.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Catalog is the ordered, fixed-at-configuration-time list of menu items.
// The order is significant: every day's quantity row is rendered in
// catalog order.
type Catalog []Item

// Validate checks the catalog's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c))
	for _, item := range c {
		if strings.TrimSpace(item.ID) == "" {
			return ErrEmptyID
		}
		if seen[item.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// Has returns true if the catalog contains an item with the given id.
// INVARIANT: Catalog is not mutated
func (c Catalog) Has(id string) bool {
	for _, item := range c {
		if item.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the item ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, item := range c {
		ids[i] = item.ID
	}
	return ids
}

// FromIDs builds a catalog of description-less items from a list of ids.
// PRE: none
// POST: returns a validated catalog or an error
func FromIDs(ids []string) (Catalog, error) {
	c := make(Catalog, 0, len(ids))
	for _, id := range ids {
		c = append(c, Item{ID: strings.TrimSpace(id)})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a JSON catalog file (an array of items).
// PRE: path points to a readable JSON file
// POST: returns a validated catalog or an error
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
