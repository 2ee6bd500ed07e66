package app

import "github.com/hylla/tavla/internal/domain"

// MaxHistory bounds both the undo and redo stacks; the oldest snapshot is
// discarded first.
const MaxHistory = 50

// history holds bounded past/future whole-layout snapshots. The active
// layout lives on the engine; past holds only prior states, so undo is
// available whenever past is non-empty.
type history struct {
	past   []domain.Layout
	future []domain.Layout
}

func (h *history) reset() {
	h.past = nil
	h.future = nil
}

// track records prev as the newest undo target and invalidates redo.
func (h *history) track(prev domain.Layout) {
	h.past = appendBounded(h.past, prev)
	h.future = nil
}

func (h *history) canUndo() bool { return len(h.past) > 0 }
func (h *history) canRedo() bool { return len(h.future) > 0 }

// undo exchanges current for the newest past snapshot.
func (h *history) undo(current domain.Layout) (domain.Layout, bool) {
	if len(h.past) == 0 {
		return domain.Layout{}, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = appendBounded(h.future, current)
	return prev, true
}

// redo exchanges current for the newest undone snapshot.
func (h *history) redo(current domain.Layout) (domain.Layout, bool) {
	if len(h.future) == 0 {
		return domain.Layout{}, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = appendBounded(h.past, current)
	return next, true
}

func appendBounded(stack []domain.Layout, layout domain.Layout) []domain.Layout {
	stack = append(stack, layout)
	if len(stack) > MaxHistory {
		stack = stack[len(stack)-MaxHistory:]
	}
	return stack
}
