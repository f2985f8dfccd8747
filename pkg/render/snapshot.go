// Package render exports static snapshots of a loaded scene: an isometric
// projection of every mesh's bounding box, with the selected mesh drawn in
// the highlight color. PNG and SVG outputs share one layout pass.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/highlight"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path      string       // Output path; format inferred from extension when Format empty
	Format    string       // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title     string       // Optional title rendered in the summary block
	Scene     *scene.Scene // Scene to render
	Highlight string       // Mesh name drawn in the highlight color, if any
	Width     int          // Canvas width in pixels (0 = 960)
}

// SaveSnapshot renders a static snapshot (SVG or PNG) of the scene with a
// minimal summary block.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Scene == nil || len(opts.Scene.Meshes) == 0 {
		return fmt.Errorf("no meshes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		file, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSVG(file, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// --- projection and layout -------------------------------------------------

// project maps a 3D point to 2D with a standard isometric projection, the
// same eye direction the camera controller frames along.
func project(v r3.Vec) (float64, float64) {
	const c30 = 0.8660254037844386 // cos(30 deg)
	const s30 = 0.5
	u := (v.X - v.Z) * c30
	w := (v.X+v.Z)*s30 - v.Y
	return u, w
}

type face struct {
	xs, ys [4]float64
	shade  float64
}

type layoutMesh struct {
	Name        string
	Fill        color.RGBA
	Highlighted bool
	Faces       [3]face // top, front, right, back to front
	EdgeXs      []float64
	EdgeYs      []float64
	LabelX      float64
	LabelY      float64
	depth       float64
}

type layoutResult struct {
	Width   int
	Height  int
	Header  float64
	Meshes  []layoutMesh
	Summary struct {
		Title     string
		Model     string
		MeshCount int
		Selected  string
	}
}

// Corner index pairs forming the 12 box edges, matching geom.Box.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Corner index quads for the three faces visible from the isometric eye.
var visibleFaces = [3][4]int{
	{2, 3, 7, 6}, // top (Y max)
	{4, 5, 7, 6}, // front (Z max)
	{1, 3, 7, 5}, // right (X max)
}

var faceShades = [3]float64{1.0, 0.85, 0.7}

func buildLayout(opts SnapshotOptions) layoutResult {
	var out layoutResult
	out.Width = opts.Width
	if out.Width <= 0 {
		out.Width = 960
	}
	out.Header = 120

	out.Summary.Title = opts.Title
	if out.Summary.Title == "" {
		out.Summary.Title = "Assembly snapshot"
	}
	out.Summary.Model = opts.Scene.Model
	out.Summary.MeshCount = len(opts.Scene.Meshes)
	out.Summary.Selected = opts.Highlight

	// Projected extent across every corner of every mesh.
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, m := range opts.Scene.Meshes {
		for _, c := range m.Bounds.Corners() {
			u, v := project(c)
			minU = math.Min(minU, u)
			minV = math.Min(minV, v)
			maxU = math.Max(maxU, u)
			maxV = math.Max(maxV, v)
		}
	}
	spanU := maxU - minU
	spanV := maxV - minV
	if spanU <= 0 {
		spanU = 1
	}
	if spanV <= 0 {
		spanV = 1
	}

	const margin = 48.0
	drawW := float64(out.Width) - 2*margin
	scale := drawW / spanU
	drawH := spanV * scale
	out.Height = int(out.Header + drawH + 2*margin)

	toCanvas := func(v r3.Vec) (float64, float64) {
		u, w := project(v)
		return margin + (u-minU)*scale, out.Header + margin + (w-minV)*scale
	}

	for _, m := range opts.Scene.Meshes {
		lm := layoutMesh{
			Name:        m.Name,
			Highlighted: opts.Highlight != "" && m.Name == opts.Highlight,
		}
		if lm.Highlighted {
			lm.Fill = mustParseHex(highlight.Color)
		} else {
			lm.Fill = parseHexOr(m.Material.Color, color.RGBA{0x80, 0x80, 0x80, 0xff})
		}

		corners := m.Bounds.Corners()
		var xs, ys [8]float64
		for i, c := range corners {
			xs[i], ys[i] = toCanvas(c)
			// Painter's order: nearer boxes along the eye axis draw last.
			lm.depth += c.X + c.Y + c.Z
		}
		for fi, quad := range visibleFaces {
			f := face{shade: faceShades[fi]}
			for qi, ci := range quad {
				f.xs[qi] = xs[ci]
				f.ys[qi] = ys[ci]
			}
			lm.Faces[fi] = f
		}
		for _, e := range boxEdges {
			lm.EdgeXs = append(lm.EdgeXs, xs[e[0]], xs[e[1]])
			lm.EdgeYs = append(lm.EdgeYs, ys[e[0]], ys[e[1]])
		}
		// Label above the top corner.
		topX, topY := xs[6], ys[6]
		for i := range xs {
			if ys[i] < topY {
				topX, topY = xs[i], ys[i]
			}
		}
		lm.LabelX = topX
		lm.LabelY = topY - 6
		out.Meshes = append(out.Meshes, lm)
	}

	// Back to front.
	for i := 1; i < len(out.Meshes); i++ {
		for j := i; j > 0 && out.Meshes[j].depth < out.Meshes[j-1].depth; j-- {
			out.Meshes[j], out.Meshes[j-1] = out.Meshes[j-1], out.Meshes[j]
		}
	}
	return out
}

// --- colors ----------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

func parseHexOr(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{r, g, b, 0xff}
}

func mustParseHex(s string) color.RGBA {
	return parseHexOr(s, color.RGBA{0xff, 0x66, 0x00, 0xff})
}

func shade(c color.RGBA, k float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: 0xff,
	}
}

// --- PNG -------------------------------------------------------------------

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryBlock(dc, layout)

	for _, m := range layout.Meshes {
		for _, f := range m.Faces {
			dc.SetColor(shade(m.Fill, f.shade))
			dc.NewSubPath()
			dc.MoveTo(f.xs[0], f.ys[0])
			for i := 1; i < 4; i++ {
				dc.LineTo(f.xs[i], f.ys[i])
			}
			dc.ClosePath()
			dc.Fill()
		}
		dc.SetColor(colorStroke)
		if m.Highlighted {
			dc.SetLineWidth(2)
		} else {
			dc.SetLineWidth(1)
		}
		for i := 0; i+1 < len(m.EdgeXs); i += 2 {
			dc.DrawLine(m.EdgeXs[i], m.EdgeYs[i], m.EdgeXs[i+1], m.EdgeYs[i+1])
			dc.Stroke()
		}
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(m.Name, m.LabelX, m.LabelY, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("model: %s", layout.Summary.Model), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("meshes: %d", layout.Summary.MeshCount), 32, 84, 0, 0.5)
	if layout.Summary.Selected != "" {
		dc.DrawStringAnchored(fmt.Sprintf("selected: %s", layout.Summary.Selected), 32, 104, 0, 0.5)
	}
}

// --- SVG -------------------------------------------------------------------

func renderSVG(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)

	for _, m := range layout.Meshes {
		for _, f := range m.Faces {
			xs := make([]int, 4)
			ys := make([]int, 4)
			for i := 0; i < 4; i++ {
				xs[i] = int(f.xs[i])
				ys[i] = int(f.ys[i])
			}
			canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s", css(shade(m.Fill, f.shade))))
		}
		width := 1.0
		if m.Highlighted {
			width = 2.0
		}
		for i := 0; i+1 < len(m.EdgeXs); i += 2 {
			canvas.Line(int(m.EdgeXs[i]), int(m.EdgeYs[i]), int(m.EdgeXs[i+1]), int(m.EdgeYs[i+1]),
				fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(colorStroke), width))
		}
		canvas.Text(int(m.LabelX), int(m.LabelY), m.Name,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("model: %s", layout.Summary.Model),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("meshes: %d", layout.Summary.MeshCount),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	if layout.Summary.Selected != "" {
		canvas.Text(32, 104, fmt.Sprintf("selected: %s", layout.Summary.Selected),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
