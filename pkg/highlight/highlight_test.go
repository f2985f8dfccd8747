package highlight

import (
	"testing"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

const testManifest = `{
  "model": "model.glb",
  "meshes": [
    {"name": "Frame", "material": {"color": "#808080", "emissive": "#000000", "emissive_intensity": 0}, "min": [0,0,0], "max": [1,1,1]},
    {"name": "Shaft", "material": {"name": "steel", "color": "#b0b0b0", "emissive": "#101010", "emissive_intensity": 0.05}, "min": [0,0,0], "max": [1,1,1]}
  ]
}`

func loadScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(testManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestApplyHighlightsTarget(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s)

	m.Apply("Shaft")

	shaft, _ := s.MeshByName("Shaft")
	if shaft.Material.Color != Color || shaft.Material.Emissive != Emissive {
		t.Errorf("highlight material = %+v", shaft.Material)
	}
	if shaft.Material.EmissiveIntensity != Intensity {
		t.Errorf("intensity = %v, want %v", shaft.Material.EmissiveIntensity, Intensity)
	}
	// The clone keeps non-overridden fields.
	if shaft.Material.Name != "steel" {
		t.Errorf("clone lost material name: %+v", shaft.Material)
	}
	if name, ok := m.Active(); !ok || name != "Shaft" {
		t.Errorf("Active() = %q, %v", name, ok)
	}

	frame, _ := s.MeshByName("Frame")
	if frame.Material.Color != "#808080" {
		t.Errorf("unselected mesh changed: %+v", frame.Material)
	}
}

func TestResetRoundTrip(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s)
	shaft, _ := s.MeshByName("Shaft")
	before := shaft.Material

	m.Apply("Shaft")
	m.Reset()

	if shaft.Material != before {
		t.Errorf("material after reset = %+v, want %+v", shaft.Material, before)
	}
	if _, ok := m.Active(); ok {
		t.Error("Active() should be empty after reset")
	}
}

func TestApplyRetarget(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s)

	m.Apply("Shaft")
	m.Apply("Frame")

	shaft, _ := s.MeshByName("Shaft")
	if shaft.Material.Color == Color {
		t.Error("previous target should have been reset")
	}
	frame, _ := s.MeshByName("Frame")
	if frame.Material.Color != Color {
		t.Error("new target not highlighted")
	}
}

func TestApplyUnknownMeshLeavesSceneReset(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s)

	m.Apply("Shaft")
	m.Apply("does-not-exist")

	if _, ok := m.Active(); ok {
		t.Error("unknown mesh should clear the active highlight")
	}
	shaft, _ := s.MeshByName("Shaft")
	orig, _ := m.Original("Shaft")
	if shaft.Material != orig {
		t.Errorf("material = %+v, want original %+v", shaft.Material, orig)
	}
}

func TestWithStyleOverrides(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s, WithStyle(Style{Color: "#00ccff", Intensity: 0.6}))

	if m.Style().Color != "#00ccff" || m.Style().Intensity != 0.6 {
		t.Fatalf("style = %+v", m.Style())
	}
	// Fields left zero keep the defaults.
	if m.Style().Emissive != Emissive {
		t.Errorf("emissive = %q, want default %q", m.Style().Emissive, Emissive)
	}

	m.Apply("Shaft")
	shaft, _ := s.MeshByName("Shaft")
	if shaft.Material.Color != "#00ccff" || shaft.Material.EmissiveIntensity != 0.6 {
		t.Errorf("highlight material = %+v", shaft.Material)
	}

	m.Reset()
	if shaft.Material.Color != "#b0b0b0" {
		t.Errorf("reset lost the original: %+v", shaft.Material)
	}
}

func TestSnapshotsAreWriteOnce(t *testing.T) {
	s := loadScene(t)
	m := NewManager(s)

	m.Apply("Frame")
	orig, ok := m.Original("Frame")
	if !ok {
		t.Fatal("no snapshot for Frame")
	}
	if orig.Color != "#808080" {
		t.Errorf("snapshot mutated: %+v", orig)
	}
}
