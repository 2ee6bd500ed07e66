package domain

import "strings"

// Column identifies one of the three fixed board regions.
type Column string

// Board columns in display order.
const (
	ColumnLeft   Column = "left"
	ColumnCenter Column = "center"
	ColumnRight  Column = "right"
)

// Columns returns all columns in display order.
func Columns() []Column {
	return []Column{ColumnLeft, ColumnCenter, ColumnRight}
}

// Valid reports whether the column is one of the three known regions.
func (c Column) Valid() bool {
	switch c {
	case ColumnLeft, ColumnCenter, ColumnRight:
		return true
	}
	return false
}

// ParseColumn parses a column name.
func ParseColumn(s string) (Column, error) {
	col := Column(strings.ToLower(strings.TrimSpace(s)))
	if !col.Valid() {
		return "", ErrInvalidColumn
	}
	return col, nil
}

// Size is a rendering hint with no placement effect.
type Size string

// Card sizes.
const (
	SizeNormal  Size = "normal"
	SizeLarge   Size = "large"
	SizeCompact Size = "compact"
)

// Valid reports whether the size is a known rendering hint.
func (s Size) Valid() bool {
	switch s {
	case SizeNormal, SizeLarge, SizeCompact:
		return true
	}
	return false
}

// ParseSize parses a size name.
func ParseSize(s string) (Size, error) {
	size := Size(strings.ToLower(strings.TrimSpace(s)))
	if !size.Valid() {
		return "", ErrInvalidSize
	}
	return size, nil
}

// NextSize cycles normal -> large -> compact -> normal.
func NextSize(s Size) Size {
	switch s {
	case SizeNormal:
		return SizeLarge
	case SizeLarge:
		return SizeCompact
	default:
		return SizeNormal
	}
}

// Card is one placeable dashboard panel descriptor. Column and Order
// define visual placement; Size and Collapsed are rendering hints only.
type Card struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Column    Column `json:"column"`
	Order     int    `json:"order"`
	Visible   bool   `json:"visible"`
	Size      Size   `json:"size"`
	Collapsed bool   `json:"collapsed"`
}

// Validate checks the card's own fields (cross-card invariants live on Layout).
func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidID
	}
	if !c.Column.Valid() {
		return ErrInvalidColumn
	}
	if !c.Size.Valid() {
		return ErrInvalidSize
	}
	if c.Order < 0 {
		return ErrInvalidOrder
	}
	return nil
}
