package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/tavla/internal/domain"
)

// IDGenerator returns unique identifiers for journal entries.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Engine owns the active layout and exposes the full command/query
// surface consumed by the rendering layer: arrangement mutations, the
// bounded undo/redo history, the edit-mode session, and the explicit
// load/save/reset persistence protocol. All operations are synchronous
// and serialized by an internal mutex: the rendering layer runs
// persistence through command callbacks on their own goroutines while
// key handling keeps mutating state on the event loop.
type Engine struct {
	store  LayoutStore
	logger Logger
	idGen  IDGenerator
	clock  Clock

	mu      sync.Mutex
	layout  domain.Layout
	editing bool
	hist    history
	session Session

	// pending journal entries; flushed to the store only on Save.
	pending []domain.ChangeEvent
}

// NewEngine constructs an engine holding the default layout. Call Load to
// replace it with the persisted arrangement.
func NewEngine(store LayoutStore, idGen IDGenerator, clock Clock, logger Logger) *Engine {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{
		store:  store,
		logger: logger,
		idGen:  idGen,
		clock:  clock,
		layout: domain.DefaultLayout(),
	}
}

// Load replaces the active layout with the persisted arrangement. Any
// failure — no record, stale schema, corrupt payload, storage error —
// falls back to the default layout; the user never sees a broken board.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	layout, err := e.store.LoadLayout(ctx)
	switch {
	case err == nil:
		if verr := layout.Validate(); verr != nil {
			e.logger.Warn("saved layout violates invariants; using defaults", "err", verr)
			layout = domain.DefaultLayout()
		}
	case errors.Is(err, ErrNoSavedLayout):
		e.logger.Debug("no saved layout; using defaults")
		layout = domain.DefaultLayout()
	case errors.Is(err, ErrStaleLayout), errors.Is(err, ErrCorruptLayout):
		// Deliberate forward-compatibility guard: old saves are fully
		// invalidated, never half-applied.
		e.logger.Info("saved layout discarded", "reason", err)
		layout = domain.DefaultLayout()
	default:
		e.logger.Warn("layout load failed; using defaults", "err", err)
		layout = domain.DefaultLayout()
	}
	e.layout = layout
}

// CurrentLayout returns a copy of the active layout.
func (e *Engine) CurrentLayout() domain.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout.Clone()
}

// ColumnCards returns the visible cards of one column sorted by order.
func (e *Engine) ColumnCards(col domain.Column) []domain.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout.ColumnCards(col)
}

// AllColumnCards returns every card of one column, hidden ones included.
func (e *Engine) AllColumnCards(col domain.Column) []domain.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout.AllColumnCards(col)
}

// EditModeActive reports whether an editing session is open.
func (e *Engine) EditModeActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing
}

// CanUndo reports whether undo would change the layout.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing && e.hist.canUndo()
}

// CanRedo reports whether redo would change the layout.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing && e.hist.canRedo()
}

// EnterEditMode opens an editing session and clears any prior undo/redo
// history; a fresh session has nothing to undo until a mutation occurs.
func (e *Engine) EnterEditMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = true
	e.hist.reset()
}

// ExitEditMode closes the editing session without persisting. Unsaved
// arrangement changes stay active in memory.
func (e *Engine) ExitEditMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = false
	e.session = Session{}
}

// MoveCard relocates a card to toColumn at toIndex. Unknown ids are a
// caller error; the layout is never silently corrupted.
func (e *Engine) MoveCard(id string, toColumn domain.Column, toIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.layout.MoveCard(id, toColumn, toIndex)
	if err != nil {
		return err
	}
	card, _ := next.CardByID(id)
	e.apply(next, domain.ChangeOperationMove, id,
		fmt.Sprintf("moved %s to %s[%d]", card.Title, toColumn, card.Order))
	return nil
}

// ToggleVisibility flips a card's visibility; its order slot is kept.
func (e *Engine) ToggleVisibility(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.layout.ToggleVisibility(id)
	if err != nil {
		return err
	}
	card, _ := next.CardByID(id)
	op := domain.ChangeOperationHide
	verb := "hid"
	if card.Visible {
		op = domain.ChangeOperationShow
		verb = "showed"
	}
	e.apply(next, op, id, fmt.Sprintf("%s %s", verb, card.Title))
	return nil
}

// ToggleCollapsed flips a card's collapsed rendering hint.
func (e *Engine) ToggleCollapsed(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.layout.ToggleCollapsed(id)
	if err != nil {
		return err
	}
	card, _ := next.CardByID(id)
	op := domain.ChangeOperationExpand
	verb := "expanded"
	if card.Collapsed {
		op = domain.ChangeOperationCollapse
		verb = "collapsed"
	}
	e.apply(next, op, id, fmt.Sprintf("%s %s", verb, card.Title))
	return nil
}

// SetSize sets a card's size rendering hint.
func (e *Engine) SetSize(id string, size domain.Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.layout.SetSize(id, size)
	if err != nil {
		return err
	}
	card, _ := next.CardByID(id)
	e.apply(next, domain.ChangeOperationResize, id,
		fmt.Sprintf("resized %s to %s", card.Title, size))
	return nil
}

// apply commits one mutation as a single atomic transition. Observably
// identical results are dropped so a no-op never burns a history slot.
func (e *Engine) apply(next domain.Layout, op domain.ChangeOperation, cardID, summary string) {
	if next.Equal(e.layout) {
		return
	}
	if e.editing {
		e.hist.track(e.layout)
	}
	e.layout = next
	e.journal(op, cardID, summary)
}

// Undo restores the previous layout snapshot. No-op outside an editing
// session or when nothing has been tracked yet.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return false
	}
	prev, ok := e.hist.undo(e.layout)
	if !ok {
		return false
	}
	e.layout = prev
	return true
}

// Redo re-applies the most recently undone snapshot.
func (e *Engine) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return false
	}
	next, ok := e.hist.redo(e.layout)
	if !ok {
		return false
	}
	e.layout = next
	return true
}

// Save persists the active layout verbatim and closes the editing
// session. This is the only write path for the arrangement record;
// storage failures are non-fatal and leave the in-memory layout
// authoritative.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = false
	e.session = Session{}
	if err := e.store.SaveLayout(ctx, e.layout); err != nil {
		e.logger.Warn("layout save failed; keeping in-memory arrangement", "err", err)
		return fmt.Errorf("save layout: %w", err)
	}
	e.journal(domain.ChangeOperationSave, "", "saved arrangement")
	e.flushJournal(ctx)
	return nil
}

// Reset replaces the active layout with the factory default and deletes
// the durable record. Callable in or out of edit mode, independent of
// history.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = domain.DefaultLayout()
	e.hist.reset()
	e.session = Session{}
	e.pending = nil
	e.journal(domain.ChangeOperationReset, "", "reset to default arrangement")
	if err := e.store.DeleteLayout(ctx); err != nil {
		e.logger.Warn("layout reset could not delete saved record", "err", err)
		return fmt.Errorf("reset layout: %w", err)
	}
	e.flushJournal(ctx)
	return nil
}

// BeginDrag marks a card as grabbed. The card must exist.
func (e *Engine) BeginDrag(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.layout.CardByID(id); !ok {
		return fmt.Errorf("drag %q: %w", id, domain.ErrUnknownCard)
	}
	e.session = Session{ActiveCardID: id}
	return nil
}

// SetDragOverColumn records the hovered column; empty clears it.
func (e *Engine) SetDragOverColumn(col domain.Column) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if col != "" && !col.Valid() {
		return domain.ErrInvalidColumn
	}
	e.session.DragOverColumn = col
	return nil
}

// EndDrag discards the ephemeral drag state. An abandoned drag has no
// effect on the layout.
func (e *Engine) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = Session{}
}

// Session returns the current ephemeral drag state.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// ListChangeEvents returns persisted journal entries, newest first.
func (e *Engine) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.ListChangeEvents(ctx, limit)
}

// journal stages one entry; entries reach storage only on Save/Reset.
func (e *Engine) journal(op domain.ChangeOperation, cardID, summary string) {
	e.pending = append(e.pending, domain.ChangeEvent{
		ID:         e.idGen(),
		Operation:  op,
		CardID:     cardID,
		Summary:    summary,
		OccurredAt: e.clock().UTC(),
	})
}

// flushJournal writes staged entries best-effort; journal loss is never
// allowed to interrupt the editing flow.
func (e *Engine) flushJournal(ctx context.Context) {
	if len(e.pending) == 0 {
		return
	}
	if err := e.store.AppendChangeEvents(ctx, e.pending); err != nil {
		e.logger.Warn("change journal flush failed", "entries", len(e.pending), "err", err)
	}
	e.pending = nil
}
