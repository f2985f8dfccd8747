// detail.go - part detail pane for the current selection.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/viewer"
)

// DetailPane shows the selected part's record fields, its path from the
// assembly root, and subtree stats for assemblies.
type DetailPane struct {
	theme    Theme
	eng      *viewer.Engine
	vp       viewport.Model
	showPath bool
}

// NewDetailPane creates the detail pane. showPath controls the breadcrumb
// line under the record fields.
func NewDetailPane(theme Theme, eng *viewer.Engine, showPath bool) *DetailPane {
	return &DetailPane{theme: theme, eng: eng, vp: viewport.New(0, 0), showPath: showPath}
}

// SetSize updates the pane's render area in cells.
func (d *DetailPane) SetSize(width, height int) {
	d.vp.Width = width
	d.vp.Height = height
}

// Refresh re-renders the pane content from the engine's current selection.
func (d *DetailPane) Refresh() {
	d.vp.SetContent(d.content())
	d.vp.GotoTop()
}

// ScrollBy scrolls the pane content.
func (d *DetailPane) ScrollBy(lines int) {
	if lines < 0 {
		d.vp.LineUp(-lines)
	} else {
		d.vp.LineDown(lines)
	}
}

// View renders the pane.
func (d *DetailPane) View() string {
	return d.vp.View()
}

func (d *DetailPane) content() string {
	part, ok := d.eng.Selection()
	if !ok {
		return d.theme.MutedText.Render("nothing selected\n\nclick a part or press enter on a tree row")
	}
	rec := part.Record

	var b strings.Builder
	title := rec.DisplayName()
	if rec.IsFallback {
		title += "  " + d.theme.FallbackText.Render("(not in BOM)")
	}
	b.WriteString(d.theme.PrimaryBold.Render(title))
	b.WriteByte('\n')

	field := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(d.theme.SecondaryText.Render(fmt.Sprintf("%-12s", name)))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	if !rec.IsFallback {
		field("id", fmt.Sprintf("%d", rec.ID))
	}
	field("name", rec.Name)
	field("reference", rec.ReferenceName)
	field("shape", rec.ShapeType)
	field("type", rec.Type)
	field("source", string(part.Source))
	field("mesh", part.MeshName)
	if rec.Color != nil {
		field("color", rec.Color.Hex)
	}
	if rec.Location != nil {
		tr := rec.Location.Translation
		field("position", fmt.Sprintf("(%.2f, %.2f, %.2f)", tr.X, tr.Y, tr.Z))
		if rec.Location.ScaleFactor != 0 && rec.Location.ScaleFactor != 1 {
			field("scale", fmt.Sprintf("%.3f", rec.Location.ScaleFactor))
		}
	}

	if tree := d.eng.Tree(); tree != nil && !rec.IsFallback {
		if path := tree.PathToRoot(rec.ID); d.showPath && len(path) > 1 {
			names := make([]string, len(path))
			for i, n := range path {
				names[i] = n.Record.DisplayName()
			}
			b.WriteByte('\n')
			b.WriteString(d.theme.MutedText.Render(strings.Join(names, " › ")))
			b.WriteByte('\n')
		}
		if rec.IsAssembly {
			s := tree.SubtreeStats(rec.ID)
			b.WriteByte('\n')
			b.WriteString(d.theme.SecondaryText.Render(fmt.Sprintf(
				"%d children · %d parts · %d sub-assemblies",
				s.DirectChildren, s.Parts, s.Assemblies)))
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// YankText returns the text the yank key copies for the selection: the
// record as a short plain block.
func (d *DetailPane) YankText() (string, bool) {
	part, ok := d.eng.Selection()
	if !ok {
		return "", false
	}
	rec := part.Record
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.DisplayName())
	if !rec.IsFallback {
		fmt.Fprintf(&b, "id: %d\n", rec.ID)
	}
	if rec.ReferenceName != "" && rec.ReferenceName != rec.DisplayName() {
		fmt.Fprintf(&b, "reference: %s\n", rec.ReferenceName)
	}
	if part.MeshName != "" {
		fmt.Fprintf(&b, "mesh: %s\n", part.MeshName)
	}
	if part.Source == model.SourceScene {
		b.WriteString("selected in: 3d view\n")
	} else {
		b.WriteString("selected in: tree\n")
	}
	return b.String(), true
}
