package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service is the engine surface consumed by the board model.
type Service interface {
	CurrentLayout() domain.Layout
	ColumnCards(domain.Column) []domain.Card
	AllColumnCards(domain.Column) []domain.Card
	EditModeActive() bool
	CanUndo() bool
	CanRedo() bool

	EnterEditMode()
	ExitEditMode()
	MoveCard(string, domain.Column, int) error
	ToggleVisibility(string) error
	ToggleCollapsed(string) error
	SetSize(string, domain.Size) error
	Undo() bool
	Redo() bool
	Save(context.Context) error
	Reset(context.Context) error

	BeginDrag(string) error
	SetDragOverColumn(domain.Column) error
	EndDrag()
	Session() app.Session

	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
}

// overlayMode represents a selectable overlay.
type overlayMode int

// modeNone and related constants define package defaults.
const (
	modeNone overlayMode = iota
	modeActivity
	modeAbout
	modeConfirmReset
)

// Model represents the board model consumed by bubbletea.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	board      BoardConfig
	showHidden bool

	selectedColumn int
	selectedCard   int

	// dragIndex is the insertion slot inside the hovered column while a
	// card is grabbed; the grabbed card and hovered column live in the
	// engine session.
	dragIndex int

	mode     overlayMode
	activity []domain.ChangeEvent
	md       markdownRenderer

	writeClipboard func(string) error
}

// savedMsg carries the result of a persistence save.
type savedMsg struct {
	err error
}

// resetMsg carries the result of a layout reset.
type resetMsg struct {
	err error
}

// activityLoadedMsg carries persisted journal entries for the overlay.
type activityLoadedMsg struct {
	entries []domain.ChangeEvent
	err     error
}

// NewModel constructs a board model over the layout engine.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:            svc,
		status:         "ready",
		help:           h,
		keys:           newKeyMap(KeyOverrides{}),
		board:          DefaultBoardConfig(),
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error() + " (arrangement kept in memory)"
			return m, nil
		}
		m.status = "arrangement saved"
		return m, nil

	case resetMsg:
		if msg.err != nil {
			m.status = "reset incomplete: " + msg.err.Error()
		} else {
			m.status = "reset to default arrangement"
		}
		m.clampSelection()
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.status = "activity log unavailable: " + msg.err.Error()
			return m, nil
		}
		m.activity = msg.entries
		m.mode = modeActivity
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

// handleKey dispatches one key press by interaction state.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone {
		return m.handleOverlayKey(msg)
	}
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.svc.Session().Dragging() {
		return m.handleDragKey(msg)
	}
	return m.handleBoardKey(msg)
}

// handleOverlayKey drives the activity, about, and confirm overlays.
func (m Model) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmReset {
		switch {
		case msg.String() == "y" || key.Matches(msg, m.keys.grab):
			m.mode = modeNone
			return m, m.resetCmd
		default:
			m.mode = modeNone
			m.status = "reset canceled"
			return m, nil
		}
	}
	switch {
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.quit),
		key.Matches(msg, m.keys.activityLog) && m.mode == modeActivity,
		key.Matches(msg, m.keys.about) && m.mode == modeAbout:
		m.mode = modeNone
		return m, nil
	}
	return m, nil
}

// handleDragKey moves the grabbed card's target slot and commits or
// abandons the drag.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	session := m.svc.Session()
	cols := domain.Columns()
	colIdx := columnIndex(session.DragOverColumn)

	switch {
	case key.Matches(msg, m.keys.moveLeft), key.Matches(msg, m.keys.moveRight):
		step := 1
		if key.Matches(msg, m.keys.moveLeft) {
			step = -1
		}
		colIdx = clamp(colIdx+step, 0, len(cols)-1)
		if err := m.svc.SetDragOverColumn(cols[colIdx]); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dragIndex = clamp(m.dragIndex, 0, len(m.dragSlots(cols[colIdx], session.ActiveCardID)))
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		m.dragIndex = clamp(m.dragIndex-1, 0, len(m.dragSlots(cols[colIdx], session.ActiveCardID)))
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		m.dragIndex = clamp(m.dragIndex+1, 0, len(m.dragSlots(cols[colIdx], session.ActiveCardID)))
		return m, nil

	case key.Matches(msg, m.keys.grab):
		target := cols[colIdx]
		if err := m.svc.MoveCard(session.ActiveCardID, target, m.dragIndex); err != nil {
			m.status = "move failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("moved to %s", target)
			m.selectedColumn = colIdx
			m.selectedCard = m.dragIndex
		}
		m.svc.EndDrag()
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.cancel):
		m.svc.EndDrag()
		m.status = "move canceled"
		return m, nil
	}
	return m, nil
}

// handleBoardKey drives navigation and arrangement commands.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cols := domain.Columns()

	switch {
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.about):
		m.mode = modeAbout
		return m, nil

	case key.Matches(msg, m.keys.activityLog):
		return m, m.loadActivity

	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(cols)-1)
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(cols)-1)
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		m.selectedCard--
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		m.selectedCard++
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.editMode):
		if m.svc.EditModeActive() {
			m.svc.ExitEditMode()
			m.status = "left edit mode (unsaved changes stay active)"
		} else {
			m.svc.EnterEditMode()
			m.status = "edit mode: grab with space, undo with " + m.keys.undo.Help().Key
		}
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.grab):
		return m.beginGrab()

	case key.Matches(msg, m.keys.toggleVisible):
		return m.mutateSelected("visibility", m.svc.ToggleVisibility)

	case key.Matches(msg, m.keys.toggleCollapse):
		return m.mutateSelected("collapse", m.svc.ToggleCollapsed)

	case key.Matches(msg, m.keys.cycleSize):
		return m.cycleSelectedSize()

	case key.Matches(msg, m.keys.showHidden):
		m.showHidden = !m.showHidden
		if m.showHidden {
			m.status = "showing hidden cards"
		} else {
			m.status = "hiding hidden cards"
		}
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.undo):
		if !m.svc.EditModeActive() {
			m.status = "nothing to undo outside edit mode"
			return m, nil
		}
		if m.svc.Undo() {
			m.status = "undid last change"
		} else {
			m.status = "nothing to undo"
		}
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.redo):
		if !m.svc.EditModeActive() {
			m.status = "nothing to redo outside edit mode"
			return m, nil
		}
		if m.svc.Redo() {
			m.status = "redid last change"
		} else {
			m.status = "nothing to redo"
		}
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.save):
		return m, m.saveCmd

	case key.Matches(msg, m.keys.reset):
		m.mode = modeConfirmReset
		return m, nil

	case key.Matches(msg, m.keys.copyLayout):
		return m.copyLayoutJSON()
	}
	return m, nil
}

// beginGrab starts a drag on the card under the cursor.
func (m Model) beginGrab() (tea.Model, tea.Cmd) {
	if !m.svc.EditModeActive() {
		m.status = "press " + m.keys.editMode.Help().Key + " to enter edit mode first"
		return m, nil
	}
	col := domain.Columns()[m.selectedColumn]
	cards := m.boardCards(col)
	if len(cards) == 0 {
		m.status = "column is empty"
		return m, nil
	}
	card := cards[clamp(m.selectedCard, 0, len(cards)-1)]
	if err := m.svc.BeginDrag(card.ID); err != nil {
		m.status = err.Error()
		return m, nil
	}
	if err := m.svc.SetDragOverColumn(col); err != nil {
		m.svc.EndDrag()
		m.status = err.Error()
		return m, nil
	}
	m.dragIndex = clamp(m.selectedCard, 0, len(m.dragSlots(col, card.ID)))
	m.status = "moving " + card.Title + ": arrows to place, space to drop, esc to cancel"
	return m, nil
}

// mutateSelected applies one field mutation to the card under the cursor.
func (m Model) mutateSelected(what string, fn func(string) error) (tea.Model, tea.Cmd) {
	if !m.svc.EditModeActive() {
		m.status = "press " + m.keys.editMode.Help().Key + " to enter edit mode first"
		return m, nil
	}
	id, ok := m.selectedCardID()
	if !ok {
		m.status = "column is empty"
		return m, nil
	}
	if err := fn(id); err != nil {
		m.status = what + " failed: " + err.Error()
		return m, nil
	}
	m.status = "toggled " + what
	m.clampSelection()
	return m, nil
}

// cycleSelectedSize steps the selected card through the size hints.
func (m Model) cycleSelectedSize() (tea.Model, tea.Cmd) {
	if !m.svc.EditModeActive() {
		m.status = "press " + m.keys.editMode.Help().Key + " to enter edit mode first"
		return m, nil
	}
	id, ok := m.selectedCardID()
	if !ok {
		m.status = "column is empty"
		return m, nil
	}
	card, _ := m.svc.CurrentLayout().CardByID(id)
	next := domain.NextSize(card.Size)
	if err := m.svc.SetSize(id, next); err != nil {
		m.status = "resize failed: " + err.Error()
		return m, nil
	}
	m.status = fmt.Sprintf("%s sized %s", card.Title, next)
	return m, nil
}

// copyLayoutJSON puts the current arrangement JSON on the clipboard.
func (m Model) copyLayoutJSON() (tea.Model, tea.Cmd) {
	payload, err := json.MarshalIndent(m.svc.CurrentLayout(), "", "  ")
	if err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	if err := m.writeClipboard(string(payload)); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "layout json copied to clipboard"
	return m, nil
}

// saveCmd persists the arrangement through the engine.
func (m Model) saveCmd() tea.Msg {
	return savedMsg{err: m.svc.Save(context.Background())}
}

// resetCmd restores the factory arrangement through the engine.
func (m Model) resetCmd() tea.Msg {
	return resetMsg{err: m.svc.Reset(context.Background())}
}

// loadActivity fetches persisted journal entries for the overlay.
func (m Model) loadActivity() tea.Msg {
	entries, err := m.svc.ListChangeEvents(context.Background(), m.board.ActivityWindow)
	return activityLoadedMsg{entries: entries, err: err}
}

// boardCards returns the cards rendered for one column. Edit mode always
// shows hidden cards so the insertion index matches the order slot.
func (m Model) boardCards(col domain.Column) []domain.Card {
	if m.svc.EditModeActive() || m.showHidden {
		return m.svc.AllColumnCards(col)
	}
	return m.svc.ColumnCards(col)
}

// dragSlots returns the insertion candidates of one column with the
// grabbed card removed.
func (m Model) dragSlots(col domain.Column, grabbedID string) []domain.Card {
	cards := m.svc.AllColumnCards(col)
	out := cards[:0:0]
	for _, card := range cards {
		if card.ID != grabbedID {
			out = append(out, card)
		}
	}
	return out
}

// selectedCardID resolves the card under the cursor.
func (m Model) selectedCardID() (string, bool) {
	cards := m.boardCards(domain.Columns()[m.selectedColumn])
	if len(cards) == 0 {
		return "", false
	}
	return cards[clamp(m.selectedCard, 0, len(cards)-1)].ID, true
}

// clampSelection keeps the cursor inside the rendered board.
func (m *Model) clampSelection() {
	cols := domain.Columns()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(cols)-1)
	cards := m.boardCards(cols[m.selectedColumn])
	if len(cards) == 0 {
		m.selectedCard = 0
		return
	}
	m.selectedCard = clamp(m.selectedCard, 0, len(cards)-1)
}

func columnIndex(col domain.Column) int {
	for i, c := range domain.Columns() {
		if c == col {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// fitLines pads or trims content to exactly height lines.
func fitLines(content string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// columnTitle returns the display name of one column.
func columnTitle(col domain.Column) string {
	switch col {
	case domain.ColumnLeft:
		return "Left"
	case domain.ColumnCenter:
		return "Center"
	default:
		return "Right"
	}
}

// sizeMarker returns the one-cell glyph for a card size hint.
func sizeMarker(size domain.Size) string {
	switch size {
	case domain.SizeLarge:
		return "▣"
	case domain.SizeCompact:
		return "▫"
	default:
		return "■"
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.viewContent())
	v.AltScreen = true
	return v
}

// viewContent renders the full frame as a string.
func (m Model) viewContent() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress q to quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	hover := lipgloss.Color("212")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	badgeStyle := lipgloss.NewStyle().Foreground(muted)

	header := titleStyle.Render("tavla")
	if m.svc.EditModeActive() {
		header += badgeStyle.Render("  [editing]")
	} else {
		header += badgeStyle.Render("  [view]")
	}
	undoKey := m.keys.undo.Help().Key
	redoKey := m.keys.redo.Help().Key
	if m.svc.CanUndo() {
		header += badgeStyle.Render("  " + undoKey + " undo")
	}
	if m.svc.CanRedo() {
		header += badgeStyle.Render("  " + redoKey + " redo")
	}
	session := m.svc.Session()
	if session.Dragging() {
		if card, ok := m.svc.CurrentLayout().CardByID(session.ActiveCardID); ok {
			header += badgeStyle.Render("  moving: " + card.Title)
		}
	}

	var body string
	switch m.mode {
	case modeActivity:
		body = m.renderActivity(accent, muted)
	case modeAbout:
		body = m.md.render(aboutMarkdown, max(24, m.width-8))
	case modeConfirmReset:
		body = m.renderConfirmReset(accent)
	default:
		body = m.renderBoard(accent, muted, dim, hover)
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")
	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	return content + "\n" + helpLine
}

// renderBoard draws the three columns side by side.
func (m Model) renderBoard(accent, muted, dim, hover color.Color) string {
	cols := domain.Columns()
	session := m.svc.Session()

	colWidth := max(20, m.width/len(cols)-3)
	colHeight := max(6, m.height-8)

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	colTitleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hiddenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(hover).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	ghostStyle := lipgloss.NewStyle().Foreground(hover)

	views := make([]string, 0, len(cols))
	for colIdx, col := range cols {
		cards := m.boardCards(col)
		lines := []string{colTitleStyle.Render(fmt.Sprintf("%s (%d)", columnTitle(col), len(cards)))}

		ghostAt := -1
		if session.Dragging() && session.DragOverColumn == col {
			ghostAt = m.dragIndex
		}

		renderIdx := 0
		appendGhost := func() {
			if card, ok := m.svc.CurrentLayout().CardByID(session.ActiveCardID); ok {
				lines = append(lines, ghostStyle.Render("▸ "+truncate(card.Title, max(1, colWidth-6))))
			}
		}
		if len(cards) == 0 && ghostAt != 0 {
			lines = append(lines, hiddenStyle.Render("(empty)"))
		}
		for cardIdx, card := range cards {
			if session.Dragging() && card.ID == session.ActiveCardID {
				continue
			}
			if ghostAt == renderIdx {
				appendGhost()
			}
			line := m.renderCardLine(card, colWidth, colIdx, cardIdx, hiddenStyle, selectedStyle, subStyle)
			lines = append(lines, line)
			renderIdx++
		}
		if ghostAt >= renderIdx && ghostAt >= 0 {
			appendGhost()
		}

		style := baseColStyle
		switch {
		case session.Dragging() && session.DragOverColumn == col:
			style = baseColStyle.BorderForeground(hover)
		case colIdx == m.selectedColumn:
			style = baseColStyle.BorderForeground(accent)
		}
		views = append(views, style.Render(fitLines(strings.Join(lines, "\n"), max(1, colHeight-2))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderCardLine draws one card row with its size/state markers.
func (m Model) renderCardLine(card domain.Card, colWidth, colIdx, cardIdx int, hiddenStyle, selectedStyle, subStyle lipgloss.Style) string {
	marker := sizeMarker(card.Size)
	collapse := " "
	if card.Collapsed {
		collapse = "▸"
	}
	label := fmt.Sprintf("%s%s %s", collapse, marker, truncate(card.Title, max(1, colWidth-10)))

	var tags []string
	if !card.Visible {
		tags = append(tags, "hidden")
	}
	if card.Size != domain.SizeNormal {
		tags = append(tags, string(card.Size))
	}
	if len(tags) > 0 {
		label += subStyle.Render(" (" + strings.Join(tags, ", ") + ")")
	}

	selected := colIdx == m.selectedColumn && cardIdx == m.selectedCard
	switch {
	case !card.Visible:
		label = hiddenStyle.Render(label)
	case selected:
		label = selectedStyle.Render(label)
	}
	if selected {
		return "│" + label
	}
	return " " + label
}

// renderActivity draws the journal overlay.
func (m Model) renderActivity(accent, muted color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	entryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	timeStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{titleStyle.Render("Activity"), ""}
	if len(m.activity) == 0 {
		lines = append(lines, "no recorded changes yet")
	}
	for _, entry := range m.activity {
		lines = append(lines,
			timeStyle.Render(entry.OccurredAt.Format("2006-01-02 15:04"))+
				"  "+entryStyle.Render(entry.Summary))
	}
	lines = append(lines, "", timeStyle.Render("esc to close"))
	return strings.Join(lines, "\n")
}

// renderConfirmReset draws the reset confirmation prompt.
func (m Model) renderConfirmReset(accent color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	return strings.Join([]string{
		titleStyle.Render("Reset layout?"),
		"",
		"This restores the factory arrangement and deletes the saved one.",
		"",
		"y/space confirm • any other key cancels",
	}, "\n")
}
