package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// fakeStore is an in-memory LayoutStore with scriptable load failures.
type fakeStore struct {
	layout    *domain.Layout
	loadErr   error
	saveErr   error
	deleteErr error

	saved     int
	deleted   int
	events    []domain.ChangeEvent
	appendErr error
}

func (s *fakeStore) LoadLayout(context.Context) (domain.Layout, error) {
	if s.loadErr != nil {
		return domain.Layout{}, s.loadErr
	}
	if s.layout == nil {
		return domain.Layout{}, ErrNoSavedLayout
	}
	return s.layout.Clone(), nil
}

func (s *fakeStore) SaveLayout(_ context.Context, layout domain.Layout) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := layout.Clone()
	s.layout = &clone
	s.saved++
	return nil
}

func (s *fakeStore) DeleteLayout(context.Context) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.layout = nil
	s.deleted++
	return nil
}

func (s *fakeStore) AppendChangeEvents(_ context.Context, events []domain.ChangeEvent) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *fakeStore) ListChangeEvents(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]domain.ChangeEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func newTestEngine(store *fakeStore) *Engine {
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
	clock := func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	}
	return NewEngine(store, idGen, clock, nil)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		err  error
	}{
		{"no saved layout", ErrNoSavedLayout},
		{"stale schema", ErrStaleLayout},
		{"corrupt payload", fmt.Errorf("%w: bad json", ErrCorruptLayout)},
		{"storage failure", errors.New("disk on fire")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(&fakeStore{loadErr: tc.err})
			e.Load(ctx)
			if !e.CurrentLayout().Equal(domain.DefaultLayout()) {
				t.Fatal("expected default layout fallback")
			}
		})
	}
}

func TestLoadUsesSavedLayout(t *testing.T) {
	saved, err := domain.DefaultLayout().MoveCard("alerts", domain.ColumnLeft, 0)
	if err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	e := newTestEngine(&fakeStore{layout: &saved})
	e.Load(context.Background())
	if !e.CurrentLayout().Equal(saved) {
		t.Fatal("expected persisted layout to be loaded")
	}
}

func TestLoadRejectsInvalidSavedLayout(t *testing.T) {
	broken := domain.DefaultLayout()
	broken.Cards[0].Order = 7
	e := newTestEngine(&fakeStore{layout: &broken})
	e.Load(context.Background())
	if !e.CurrentLayout().Equal(domain.DefaultLayout()) {
		t.Fatal("expected invalid saved layout to fall back to defaults")
	}
}

func TestMutationsOutsideEditModeAreUntracked(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	if err := e.MoveCard("alerts", domain.ColumnLeft, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if e.CanUndo() {
		t.Fatal("expected no undo outside edit mode")
	}
	e.EnterEditMode()
	if e.Undo() {
		t.Fatal("expected nothing to undo after entering edit mode")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	original := e.CurrentLayout()

	e.EnterEditMode()
	if err := e.MoveCard("pattern-engine", domain.ColumnRight, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	moved := e.CurrentLayout()
	if moved.Equal(original) {
		t.Fatal("expected move to change the layout")
	}
	if !e.CanUndo() || e.CanRedo() {
		t.Fatalf("unexpected history state: undo=%t redo=%t", e.CanUndo(), e.CanRedo())
	}

	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	if !e.CurrentLayout().Equal(original) {
		t.Fatal("undo did not restore the prior layout")
	}
	if !e.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	if !e.Redo() {
		t.Fatal("Redo() = false")
	}
	if !e.CurrentLayout().Equal(moved) {
		t.Fatal("redo did not restore the undone layout")
	}
}

func TestNewMutationInvalidatesRedo(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	e.EnterEditMode()
	if err := e.ToggleVisibility("alerts"); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	if err := e.ToggleCollapsed("news-feed"); err != nil {
		t.Fatalf("ToggleCollapsed() error = %v", err)
	}
	if e.CanRedo() {
		t.Fatal("expected redo stack to be cleared by a new mutation")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	e.EnterEditMode()

	// Alternate a card between two slots well past the bound.
	for i := 0; i < MaxHistory+25; i++ {
		idx := i % 2
		if err := e.MoveCard("signal-nasdaq", domain.ColumnLeft, idx); err != nil {
			t.Fatalf("MoveCard() error = %v", err)
		}
	}

	undone := 0
	for e.Undo() {
		undone++
	}
	if undone != MaxHistory {
		t.Fatalf("expected exactly %d undo steps, got %d", MaxHistory, undone)
	}
}

func TestEnterEditModeClearsHistory(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	e.EnterEditMode()
	if err := e.MoveCard("alerts", domain.ColumnCenter, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	e.ExitEditMode()
	e.EnterEditMode()
	if e.CanUndo() || e.CanRedo() {
		t.Fatal("expected a fresh editing session to have no history")
	}
}

func TestNoOpMutationBurnsNoHistorySlot(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	e.EnterEditMode()
	if err := e.MoveCard("signal-nasdaq", domain.ColumnLeft, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if e.CanUndo() {
		t.Fatal("expected an identity move to track nothing")
	}
}

func TestExitEditModeKeepsUnsavedChanges(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.ToggleVisibility("watchlist"); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	changed := e.CurrentLayout()
	e.ExitEditMode()

	if !e.CurrentLayout().Equal(changed) {
		t.Fatal("expected unsaved changes to stay active in memory")
	}
	if store.saved != 0 {
		t.Fatalf("expected no save on exit, got %d", store.saved)
	}
}

func TestSaveExitsEditModeAndPersists(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.MoveCard("alerts", domain.ColumnLeft, 1); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if e.EditModeActive() {
		t.Fatal("expected save to close the editing session")
	}
	if store.saved != 1 || store.layout == nil {
		t.Fatalf("expected one persisted layout, saved=%d", store.saved)
	}
	if !store.layout.Equal(e.CurrentLayout()) {
		t.Fatal("persisted layout differs from the active one")
	}
}

func TestSaveFailureKeepsInMemoryLayout(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.ToggleCollapsed("alerts"); err != nil {
		t.Fatalf("ToggleCollapsed() error = %v", err)
	}
	changed := e.CurrentLayout()

	if err := e.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if e.EditModeActive() {
		t.Fatal("expected edit mode to close even on save failure")
	}
	if !e.CurrentLayout().Equal(changed) {
		t.Fatal("expected the in-memory layout to stay authoritative")
	}
}

func TestResetRestoresDefaultsAndDeletesRecord(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.MoveCard("news-feed", domain.ColumnLeft, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	e.EnterEditMode()
	if err := e.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !e.CurrentLayout().Equal(domain.DefaultLayout()) {
		t.Fatal("expected the default layout after reset")
	}
	if store.layout != nil || store.deleted != 1 {
		t.Fatalf("expected the saved record to be deleted, deleted=%d", store.deleted)
	}
	if e.CanUndo() || e.CanRedo() {
		t.Fatal("expected reset to clear history")
	}
}

func TestSaveFlushesChangeJournal(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.MoveCard("alerts", domain.ColumnLeft, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if len(store.events) != 0 {
		t.Fatalf("expected no journal writes before save, got %d", len(store.events))
	}

	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// One move entry plus the save entry itself.
	if len(store.events) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(store.events))
	}
	if store.events[0].Operation != domain.ChangeOperationMove {
		t.Fatalf("unexpected first operation %q", store.events[0].Operation)
	}
	if store.events[1].Operation != domain.ChangeOperationSave {
		t.Fatalf("unexpected second operation %q", store.events[1].Operation)
	}
	if store.events[0].ID == "" || store.events[0].OccurredAt.IsZero() {
		t.Fatalf("journal entry missing id or timestamp: %#v", store.events[0])
	}

	// A second save with nothing pending stages only the save entry.
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(store.events) != 3 {
		t.Fatalf("expected 3 journal entries, got %d", len(store.events))
	}
}

func TestJournalFlushFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("journal table locked")}
	e := newTestEngine(store)
	e.EnterEditMode()
	if err := e.ToggleVisibility("alerts"); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if store.saved != 1 {
		t.Fatalf("expected the layout save to succeed, saved=%d", store.saved)
	}
}

func TestDragSessionLifecycle(t *testing.T) {
	e := newTestEngine(&fakeStore{})

	if err := e.BeginDrag("no-such-card"); !errors.Is(err, domain.ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
	if e.Session().Dragging() {
		t.Fatal("expected no drag after a rejected begin")
	}

	if err := e.BeginDrag("watchlist"); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	if !e.Session().Dragging() {
		t.Fatal("expected an active drag")
	}
	if err := e.SetDragOverColumn(domain.ColumnRight); err != nil {
		t.Fatalf("SetDragOverColumn() error = %v", err)
	}
	if err := e.SetDragOverColumn(domain.Column("middle")); err == nil {
		t.Fatal("expected invalid column error")
	}
	if got := e.Session().DragOverColumn; got != domain.ColumnRight {
		t.Fatalf("unexpected hovered column %q", got)
	}

	before := e.CurrentLayout()
	e.EndDrag()
	if e.Session().Dragging() || e.Session().DragOverColumn != "" {
		t.Fatalf("expected a cleared session, got %#v", e.Session())
	}
	if !e.CurrentLayout().Equal(before) {
		t.Fatal("abandoning a drag must not change the layout")
	}
}

func TestExitEditModeClearsDragSession(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	e.EnterEditMode()
	if err := e.BeginDrag("alerts"); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	e.ExitEditMode()
	if e.Session().Dragging() {
		t.Fatal("expected exit to discard the drag session")
	}
}

func TestConcurrentSaveAndMutations(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	e.EnterEditMode()

	// Save runs on a bubbletea command goroutine while key handling keeps
	// mutating the engine on the event loop.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = e.Save(context.Background())
			e.EnterEditMode()
		}
	}()
	for i := 0; i < 50; i++ {
		_ = e.MoveCard("alerts", domain.ColumnLeft, i%3)
		_ = e.ToggleVisibility("watchlist")
		e.Undo()
		_ = e.CurrentLayout()
	}
	wg.Wait()

	if err := e.CurrentLayout().Validate(); err != nil {
		t.Fatalf("invariants broken after concurrent use: %v", err)
	}
	if store.layout != nil {
		if err := store.layout.Validate(); err != nil {
			t.Fatalf("persisted layout broken after concurrent use: %v", err)
		}
	}
	for _, ev := range store.events {
		if ev.ID == "" {
			t.Fatal("expected every flushed journal entry to carry an id")
		}
	}
}

func TestNilIDGeneratorAssignsUniqueJournalIDs(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store, nil, nil, nil)

	e.EnterEditMode()
	if err := e.MoveCard("alerts", domain.ColumnLeft, 0); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(store.events) != 2 {
		t.Fatalf("expected 2 flushed entries, got %d", len(store.events))
	}
	seen := map[string]bool{}
	for _, ev := range store.events {
		if ev.ID == "" {
			t.Fatal("expected a generated id for every entry")
		}
		if seen[ev.ID] {
			t.Fatalf("duplicate journal id %q", ev.ID)
		}
		seen[ev.ID] = true
	}
}
