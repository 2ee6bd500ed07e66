package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

// TestBoardSessionSmoke walks a plain viewing session through Update and
// checks the rendered frame end to end.
func TestBoardSessionSmoke(t *testing.T) {
	m, _, _ := newBoardModel(t)

	frame := m.viewContent()
	for _, want := range []string{"tavla", "[view]", "Pattern Engine", "NASDAQ Signal", "Alerts"} {
		if !strings.Contains(frame, want) {
			t.Fatalf("expected %q in the rendered frame", want)
		}
	}

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

// TestEditGrabSessionSmoke walks enter-edit, grab, and cancel, checking
// the frame after each step.
func TestEditGrabSessionSmoke(t *testing.T) {
	m, engine, _ := newBoardModel(t)

	m = applyMsg(t, m, keyRune('e'))
	if !strings.Contains(m.viewContent(), "[editing]") {
		t.Fatal("expected the editing badge after entering edit mode")
	}

	m = applyMsg(t, m, keySpace())
	if !strings.Contains(m.viewContent(), "moving: NASDAQ Signal") {
		t.Fatal("expected the moving badge while a card is grabbed")
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if strings.Contains(m.viewContent(), "moving:") {
		t.Fatal("expected the moving badge to clear on cancel")
	}
	if engine.Session().Dragging() {
		t.Fatal("expected the drag session to be discarded")
	}

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}
