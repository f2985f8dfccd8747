package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/highlight"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

const testManifest = `{
  "model": "gearbox.step",
  "meshes": [
    {
      "name": "Frame",
      "material": {"name": "paint", "color": "#2266aa"},
      "min": [-5, -5, -5],
      "max": [5, 5, 5]
    },
    {
      "name": "Shaft-01",
      "material": {"name": "steel", "color": "#8899aa"},
      "min": [6, -1, -1],
      "max": [14, 1, 1]
    }
  ]
}`

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(testManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	return s
}

func TestSnapshotSVG(t *testing.T) {
	var buf bytes.Buffer
	layout := buildLayout(SnapshotOptions{
		Scene:     testScene(t),
		Highlight: "Shaft-01",
		Title:     "gearbox",
	})
	if err := renderSVG(&buf, layout); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<svg", "gearbox", "Frame", "Shaft-01", "meshes: 2", "selected: Shaft-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg output missing %q", want)
		}
	}
	// The highlighted mesh is drawn in the highlight color, not its material.
	if !strings.Contains(out, highlight.Color) {
		t.Errorf("svg output missing highlight color %s", highlight.Color)
	}
	if !strings.Contains(out, "#2266aa") {
		t.Error("svg output missing the unselected mesh's material color")
	}
	if strings.Contains(out, "#8899aa") {
		t.Error("highlighted mesh should not keep its material color")
	}
}

func TestSnapshotSVGNoSelection(t *testing.T) {
	var buf bytes.Buffer
	layout := buildLayout(SnapshotOptions{Scene: testScene(t)})
	if err := renderSVG(&buf, layout); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "selected:") {
		t.Error("summary should omit the selected line without a selection")
	}
	if !strings.Contains(out, "#8899aa") {
		t.Error("unselected shaft should keep its material color")
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snap.png")
	err := SaveSnapshot(SnapshotOptions{Path: path, Scene: testScene(t), Highlight: "Frame"})
	if err != nil {
		t.Fatalf("save png: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG file")
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap")
	if err := SaveSnapshot(SnapshotOptions{Path: path, Scene: testScene(t)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".svg"); err != nil {
		t.Errorf("extensionless path should default to svg: %v", err)
	}

	if err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(dir, "x"), Format: "gif", Scene: testScene(t)}); err == nil {
		t.Error("unsupported format should be rejected")
	}
}

func TestSaveSnapshotRejectsEmptyScene(t *testing.T) {
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg", Scene: &scene.Scene{}}); err == nil {
		t.Error("empty scene should be rejected")
	}
}

func TestLayoutPaintersOrder(t *testing.T) {
	layout := buildLayout(SnapshotOptions{Scene: testScene(t)})
	if len(layout.Meshes) != 2 {
		t.Fatalf("layout has %d meshes", len(layout.Meshes))
	}
	// The shaft sits at larger X and draws after the frame.
	if layout.Meshes[0].Name != "Frame" || layout.Meshes[1].Name != "Shaft-01" {
		t.Errorf("draw order = %s, %s", layout.Meshes[0].Name, layout.Meshes[1].Name)
	}
}
