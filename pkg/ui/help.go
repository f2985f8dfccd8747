// help.go - glamour-rendered help overlay.
package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# bomview

Interactive BOM viewer for converted STEP assemblies.

## Navigation

| Key | Action |
|-----|--------|
| j / ↓ | move cursor down |
| k / ↑ | move cursor up |
| g / G | first / last row |
| h / ← | collapse node, or jump to parent |
| l / → | expand node, or enter children |
| space | toggle expand |
| E / C | expand all / collapse all |

## Selection

| Key | Action |
|-----|--------|
| enter | select part under cursor (again to deselect) |
| esc | clear selection / close search |
| / | search filter |
| y | copy selected part to clipboard |

## Model

| Key | Action |
|-----|--------|
| S | save a snapshot (SVG) of the current view |
| r | reload the model from disk |
| 1-9 | switch to a favorite library |
| tab | switch pane focus |
| ? | toggle this help |
| q | quit |
`

// renderHelp renders the help markdown for the given width. Falls back to
// the raw markdown when the terminal renderer cannot be built.
func renderHelp(width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 100)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
