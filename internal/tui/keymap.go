package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	toggleHelp     key.Binding
	about          key.Binding
	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	editMode       key.Binding
	grab           key.Binding
	cancel         key.Binding
	toggleVisible  key.Binding
	toggleCollapse key.Binding
	cycleSize      key.Binding
	showHidden     key.Binding
	undo           key.Binding
	redo           key.Binding
	save           key.Binding
	reset          key.Binding
	activityLog    key.Binding
	copyLayout     key.Binding
}

// KeyOverrides carries configurable bindings from the TOML config.
type KeyOverrides struct {
	EditMode string
	Save     string
	Reset    string
	Undo     string
	Redo     string
}

// newKeyMap constructs key map.
func newKeyMap(overrides KeyOverrides) keyMap {
	editKey := firstNonEmpty(overrides.EditMode, "e")
	saveKey := firstNonEmpty(overrides.Save, "s")
	resetKey := firstNonEmpty(overrides.Reset, "R")
	undoKey := firstNonEmpty(overrides.Undo, "z")
	redoKey := firstNonEmpty(overrides.Redo, "Z")

	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		about:          key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "about panels")),
		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		editMode:       key.NewBinding(key.WithKeys(editKey), key.WithHelp(editKey, "toggle edit mode")),
		grab:           key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "grab/drop card")),
		cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		toggleVisible:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "show/hide card")),
		toggleCollapse: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse/expand")),
		cycleSize:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cycle size")),
		showHidden:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle hidden cards")),
		undo:           key.NewBinding(key.WithKeys(undoKey), key.WithHelp(undoKey, "undo")),
		redo:           key.NewBinding(key.WithKeys(redoKey), key.WithHelp(redoKey, "redo")),
		save:           key.NewBinding(key.WithKeys(saveKey), key.WithHelp(saveKey, "save arrangement")),
		reset:          key.NewBinding(key.WithKeys(resetKey), key.WithHelp(resetKey, "reset to defaults")),
		activityLog:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "activity log")),
		copyLayout:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy layout json")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.editMode, k.grab, k.undo, k.redo, k.save, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.grab, k.cancel},
		{k.editMode, k.toggleVisible, k.toggleCollapse, k.cycleSize, k.showHidden},
		{k.undo, k.redo, k.save, k.reset, k.activityLog, k.copyLayout, k.about, k.quit},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
