package domain

import (
	"fmt"
	"sort"
)

// SchemaVersion tags the persisted layout record. A mismatch invalidates
// the whole save; there is no field-by-field migration.
const SchemaVersion = 2

// Layout is the complete, versioned arrangement of all cards. The order
// of the Cards slice is irrelevant; only Column and Order place a card.
type Layout struct {
	Cards   []Card `json:"cards"`
	Version int    `json:"version"`
}

// Clone deep-copies the layout.
func (l Layout) Clone() Layout {
	out := Layout{Version: l.Version}
	out.Cards = append([]Card(nil), l.Cards...)
	return out
}

// Validate checks the layout invariants: unique ids, every card in a
// valid column, and per-column orders forming a dense 0-based sequence
// (hidden cards keep their slot).
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l.Cards))
	orders := map[Column][]int{}
	for _, card := range l.Cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("card %q: %w", card.ID, err)
		}
		if _, ok := seen[card.ID]; ok {
			return fmt.Errorf("card %q: %w", card.ID, ErrDuplicateCard)
		}
		seen[card.ID] = struct{}{}
		orders[card.Column] = append(orders[card.Column], card.Order)
	}
	for col, ords := range orders {
		sort.Ints(ords)
		for i, ord := range ords {
			if ord != i {
				return fmt.Errorf("column %s is not densely ordered: %w", col, ErrInvalidOrder)
			}
		}
	}
	return nil
}

// CardByID returns the card with the given id.
func (l Layout) CardByID(id string) (Card, bool) {
	for _, card := range l.Cards {
		if card.ID == id {
			return card, true
		}
	}
	return Card{}, false
}

// ColumnCards returns the visible cards of one column sorted by order.
// Hidden cards are excluded from this projection but keep their slot in
// the column's order sequence.
func (l Layout) ColumnCards(col Column) []Card {
	return l.columnCards(col, false)
}

// AllColumnCards returns every card of one column sorted by order,
// hidden ones included. Used by the edit-mode board.
func (l Layout) AllColumnCards(col Column) []Card {
	return l.columnCards(col, true)
}

func (l Layout) columnCards(col Column, includeHidden bool) []Card {
	out := make([]Card, 0, len(l.Cards))
	for _, card := range l.Cards {
		if card.Column != col {
			continue
		}
		if !includeHidden && !card.Visible {
			continue
		}
		out = append(out, card)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// MoveCard relocates one card to toColumn at toIndex and returns the new
// layout. The card is removed from the full collection first, then the
// source column is renumbered, then the card is inserted into the
// destination ordering and that column renumbered; untouched columns are
// carried over as-is. toIndex is clamped into [0, n] where n is the
// destination size after removal.
func (l Layout) MoveCard(id string, toColumn Column, toIndex int) (Layout, error) {
	if !toColumn.Valid() {
		return Layout{}, ErrInvalidColumn
	}
	if _, ok := l.CardByID(id); !ok {
		return Layout{}, fmt.Errorf("move %q: %w", id, ErrUnknownCard)
	}

	next := l.Clone()
	var moved *Card
	ordering := map[Column][]*Card{}
	for i := range next.Cards {
		card := &next.Cards[i]
		if card.ID == id {
			moved = card
			continue
		}
		ordering[card.Column] = append(ordering[card.Column], card)
	}
	for _, cards := range ordering {
		sort.SliceStable(cards, func(i, j int) bool { return cards[i].Order < cards[j].Order })
	}

	dest := ordering[toColumn]
	idx := clamp(toIndex, 0, len(dest))
	dest = append(dest, nil)
	copy(dest[idx+1:], dest[idx:])
	dest[idx] = moved
	ordering[toColumn] = dest
	moved.Column = toColumn

	// Renumbering every column is the identity on untouched ones.
	for _, cards := range ordering {
		for i, card := range cards {
			card.Order = i
		}
	}
	return next, nil
}

// ToggleVisibility flips one card's visibility without touching placement.
func (l Layout) ToggleVisibility(id string) (Layout, error) {
	return l.updateCard(id, func(c *Card) { c.Visible = !c.Visible })
}

// ToggleCollapsed flips one card's collapsed hint without touching placement.
func (l Layout) ToggleCollapsed(id string) (Layout, error) {
	return l.updateCard(id, func(c *Card) { c.Collapsed = !c.Collapsed })
}

// SetSize sets one card's size hint without touching placement.
func (l Layout) SetSize(id string, size Size) (Layout, error) {
	if !size.Valid() {
		return Layout{}, ErrInvalidSize
	}
	return l.updateCard(id, func(c *Card) { c.Size = size })
}

func (l Layout) updateCard(id string, fn func(*Card)) (Layout, error) {
	next := l.Clone()
	for i := range next.Cards {
		if next.Cards[i].ID == id {
			fn(&next.Cards[i])
			return next, nil
		}
	}
	return Layout{}, fmt.Errorf("update %q: %w", id, ErrUnknownCard)
}

// Equal reports whether two layouts are observably the same: same
// version and the same card records regardless of slice order.
func (l Layout) Equal(other Layout) bool {
	if l.Version != other.Version || len(l.Cards) != len(other.Cards) {
		return false
	}
	byID := make(map[string]Card, len(other.Cards))
	for _, card := range other.Cards {
		byID[card.ID] = card
	}
	for _, card := range l.Cards {
		if byID[card.ID] != card {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
