package app

import "github.com/hylla/tavla/internal/domain"

// Session is the ephemeral drag-interaction state: which card is grabbed
// and which column is hovered. It is reset on drag end and never
// serialized.
type Session struct {
	ActiveCardID   string
	DragOverColumn domain.Column // empty when no column is hovered
}

// Dragging reports whether a card is currently grabbed.
func (s Session) Dragging() bool { return s.ActiveCardID != "" }
