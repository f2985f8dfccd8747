// tree.go - assembly tree pane: windowed render, expand/collapse, search.
package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/assembly"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/viewer"
)

// TreePane renders the BOM hierarchy. It works directly off the engine's
// tree and expansion state so that selections made in the 3D view (which
// expand ancestors through the engine) show up without extra bookkeeping.
type TreePane struct {
	theme Theme
	eng   *viewer.Engine

	rows   []*assembly.Node
	cursor int
	offset int
	width  int
	height int
	query  string
}

// NewTreePane creates a tree pane over the engine's current model.
func NewTreePane(theme Theme, eng *viewer.Engine) *TreePane {
	t := &TreePane{theme: theme, eng: eng}
	t.Rebuild()
	return t
}

// SetSize updates the pane's render area in cells.
func (t *TreePane) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.clampScroll()
}

// SetQuery applies a search filter and rebuilds the visible rows. The
// filtered tree renders fully expanded so every match is visible.
func (t *TreePane) SetQuery(query string) {
	t.query = query
	t.Rebuild()
	t.cursor = 0
	t.offset = 0
}

// Query returns the active search filter.
func (t *TreePane) Query() string { return t.query }

// Rebuild recomputes the visible rows from the engine's tree and
// expansion state. Call after model reload or expansion changes.
func (t *TreePane) Rebuild() {
	t.rows = t.rows[:0]
	tree := t.eng.Tree()
	if tree == nil || tree.Root == nil {
		t.cursor = 0
		t.offset = 0
		return
	}
	filtered := t.query != ""
	if filtered {
		tree = tree.Filter(t.query)
		if tree == nil {
			t.cursor = 0
			t.offset = 0
			return
		}
	}

	var walk func(n *assembly.Node)
	walk = func(n *assembly.Node) {
		t.rows = append(t.rows, n)
		if !filtered && !t.eng.IsExpanded(n.Record.ID) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.Root)

	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.clampScroll()
}

// Len returns the number of visible rows.
func (t *TreePane) Len() int { return len(t.rows) }

// CursorNode returns the node under the cursor, or nil for an empty pane.
func (t *TreePane) CursorNode() *assembly.Node {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return nil
	}
	return t.rows[t.cursor]
}

// MoveCursor moves the cursor by delta rows, clamped.
func (t *TreePane) MoveCursor(delta int) {
	t.cursor += delta
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	t.clampScroll()
}

// Home moves the cursor to the first row.
func (t *TreePane) Home() {
	t.cursor = 0
	t.clampScroll()
}

// End moves the cursor to the last row.
func (t *TreePane) End() {
	t.cursor = len(t.rows) - 1
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.clampScroll()
}

// ToggleExpand flips the expansion of the node under the cursor.
func (t *TreePane) ToggleExpand() {
	n := t.CursorNode()
	if n == nil || n.IsLeaf() {
		return
	}
	t.eng.SetExpanded(n.Record.ID, !t.eng.IsExpanded(n.Record.ID))
	t.Rebuild()
}

// Collapse collapses the cursor node, or moves to its parent when it is
// already collapsed or a leaf.
func (t *TreePane) Collapse() {
	n := t.CursorNode()
	if n == nil {
		return
	}
	if !n.IsLeaf() && t.eng.IsExpanded(n.Record.ID) {
		t.eng.SetExpanded(n.Record.ID, false)
		t.Rebuild()
		return
	}
	if n.Parent != nil {
		t.ScrollTo(n.Parent.Record.ID)
	}
}

// Expand expands the cursor node, or moves to its first child when it is
// already expanded.
func (t *TreePane) Expand() {
	n := t.CursorNode()
	if n == nil || n.IsLeaf() {
		return
	}
	if !t.eng.IsExpanded(n.Record.ID) {
		t.eng.SetExpanded(n.Record.ID, true)
		t.Rebuild()
		return
	}
	t.MoveCursor(1)
}

// ExpandAll expands every assembly.
func (t *TreePane) ExpandAll() {
	tree := t.eng.Tree()
	if tree == nil {
		return
	}
	tree.Walk(func(n *assembly.Node) bool {
		if !n.IsLeaf() {
			t.eng.SetExpanded(n.Record.ID, true)
		}
		return true
	})
	t.Rebuild()
}

// CollapseAll collapses everything except the root.
func (t *TreePane) CollapseAll() {
	tree := t.eng.Tree()
	if tree == nil || tree.Root == nil {
		return
	}
	tree.Walk(func(n *assembly.Node) bool {
		if !n.IsLeaf() && n != tree.Root {
			t.eng.SetExpanded(n.Record.ID, false)
		}
		return true
	})
	t.Rebuild()
}

// ScrollTo moves the cursor to the row for the given record id, if
// visible. Ancestor expansion has already happened engine-side, so a
// rebuild first makes the row exist.
func (t *TreePane) ScrollTo(id int) {
	t.Rebuild()
	for i, n := range t.rows {
		if n.Record.ID == id {
			t.cursor = i
			t.clampScroll()
			return
		}
	}
}

func (t *TreePane) clampScroll() {
	if t.height <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// View renders the visible window of rows.
func (t *TreePane) View() string {
	if len(t.rows) == 0 {
		if t.query != "" {
			return t.theme.MutedText.Render(fmt.Sprintf("no parts match %q", t.query))
		}
		return t.theme.MutedText.Render("no model loaded")
	}

	selID, haveSel := -1, false
	if part, ok := t.eng.Selection(); ok {
		selID, haveSel = part.Record.ID, true
	}

	height := t.height
	if height <= 0 || height > len(t.rows) {
		height = len(t.rows)
	}
	end := t.offset + height
	if end > len(t.rows) {
		end = len(t.rows)
	}

	var b strings.Builder
	for i := t.offset; i < end; i++ {
		n := t.rows[i]
		line := t.renderRow(n, haveSel && n.Record.ID == selID)
		if i == t.cursor {
			line = t.theme.CursorRow.Render(line)
		} else {
			line = " " + line
		}
		if t.width > 0 {
			line = runewidth.Truncate(line, t.width, "…")
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (t *TreePane) renderRow(n *assembly.Node, selected bool) string {
	indent := strings.Repeat("  ", n.Depth)

	glyph := "  "
	if !n.IsLeaf() {
		if t.query != "" || t.eng.IsExpanded(n.Record.ID) {
			glyph = "▾ "
		} else {
			glyph = "▸ "
		}
	}

	name := n.Record.DisplayName()
	id := t.theme.MutedText.Render(fmt.Sprintf(" #%d", n.Record.ID))

	var label string
	switch {
	case selected:
		label = t.theme.SelectedRow.Render(name)
	case n.Record.IsFallback:
		label = t.theme.FallbackText.Render(name)
	default:
		style := t.theme.Renderer.NewStyle().
			Foreground(t.theme.RowColor(n.Record.IsAssembly, n.Record.IsFallback))
		label = style.Render(name)
	}

	return indent + glyph + label + id
}
