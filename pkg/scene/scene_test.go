package scene

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `{
  "model": "model.glb",
  "generated_by": "step-glb-converter",
  "meshes": [
    {
      "name": "Frame",
      "material": {"color": "#808080", "emissive": "#000000", "emissive_intensity": 0},
      "min": [-5, -5, -5],
      "max": [5, 5, 5]
    },
    {
      "name": "Shaft-01",
      "material": {"name": "steel", "color": "#b0b0b0", "emissive": "#000000", "emissive_intensity": 0},
      "min": [0, -1, -1],
      "max": [12, 1, 1]
    },
    {
      "name": "Shaft-01",
      "material": {"color": "#ff0000", "emissive": "#000000", "emissive_intensity": 0},
      "min": [0, 0, 0],
      "max": [1, 1, 1]
    }
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Model != "model.glb" {
		t.Errorf("Model = %q", s.Model)
	}
	if len(s.Meshes) != 3 {
		t.Fatalf("len(Meshes) = %d, want 3", len(s.Meshes))
	}

	// Duplicate names stay in the list but the index resolves to the
	// first occurrence.
	m, ok := s.MeshByName("Shaft-01")
	if !ok {
		t.Fatal("Shaft-01 not indexed")
	}
	if m.Material.Name != "steel" {
		t.Errorf("duplicate name resolved to wrong mesh: material %+v", m.Material)
	}

	names := s.MeshNames()
	want := []string{"Frame", "Shaft-01", "Shaft-01"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("MeshNames()[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestSceneBounds(t *testing.T) {
	s, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := s.Bounds()
	if b.Min.X != -5 || b.Max.X != 12 {
		t.Errorf("bounds X = [%v, %v], want [-5, 12]", b.Min.X, b.Max.X)
	}
	if b.Min.Y != -5 || b.Max.Y != 5 {
		t.Errorf("bounds Y = [%v, %v], want [-5, 5]", b.Min.Y, b.Max.Y)
	}
}

func TestParseRejectsBadManifests(t *testing.T) {
	if _, err := Parse([]byte(`{"model": "m.glb", "meshes": []}`)); err == nil {
		t.Error("empty mesh list should fail")
	}
	if _, err := Parse([]byte(`{"model": "m.glb", "meshes": [{"material": {}}]}`)); err == nil {
		t.Error("unnamed mesh should fail")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultManifestFile)
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Meshes) != 3 {
		t.Errorf("len(Meshes) = %d, want 3", len(s.Meshes))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
