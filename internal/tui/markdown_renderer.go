package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders markdown for terminal views and recreates the
// renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the
// requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// aboutMarkdown describes the dashboard panels for the about overlay.
const aboutMarkdown = `# tavla

A three-column dashboard shell. Cards are placeholders for panels; this
shell only manages their arrangement.

## Panels

- **NASDAQ Signal** / **XAUUSD Signal** — instrument signal cards
- **Pattern Engine** — detected chart patterns
- **Market Overview** — index and futures summary
- **Watchlist** — pinned instruments
- **News Feed** — headline stream
- **Performance** — session statistics
- **Alerts** — triggered alert list
- **Session Clock** — market session times

## Editing

Press the edit key to start an editing session, grab a card with space,
move it with the arrow keys, and drop it with space again. Undo/redo
track up to 50 arrangement changes per session. Save persists the
arrangement; reset restores the factory layout.
`
