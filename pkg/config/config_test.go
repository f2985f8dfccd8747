package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.SplitRatio != 0.4 {
		t.Errorf("expected split ratio 0.4, got %f", cfg.UI.SplitRatio)
	}
	if cfg.Viewer.FOVDegrees != 60 {
		t.Errorf("expected 60 degree FOV, got %f", cfg.Viewer.FOVDegrees)
	}
	if cfg.Viewer.ClickWindowMillis != 350 {
		t.Errorf("expected 350ms click window, got %d", cfg.Viewer.ClickWindowMillis)
	}
	if cfg.Viewer.HighlightColor != "#ff6600" || cfg.Viewer.HighlightIntensity != 0.3 {
		t.Errorf("highlight defaults = %q / %v", cfg.Viewer.HighlightColor, cfg.Viewer.HighlightIntensity)
	}
	if !cfg.Discovery.Watch {
		t.Error("expected watch enabled by default")
	}
	if cfg.Favorites == nil {
		t.Error("expected favorites map to be initialized")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Viewer.AnimationMillis != 1000 {
		t.Errorf("expected default config, got animation %d", cfg.Viewer.AnimationMillis)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
libraries:
  - name: plant
    path: ~/models/plant
  - name: archive
    path: /mnt/archive/models

favorites:
  1: plant
  2: archive

ui:
  split_ratio: 0.5
  theme: dark

viewer:
  fov_degrees: 45
  click_window_millis: 250
  highlight_color: "#00ccff"

discovery:
  scan_paths:
    - ~/models
  watch: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Libraries) != 2 {
		t.Fatalf("expected 2 libraries, got %d", len(cfg.Libraries))
	}
	if cfg.Libraries[0].Name != "plant" {
		t.Errorf("expected library name 'plant', got %q", cfg.Libraries[0].Name)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "models/plant")
	if cfg.Libraries[0].Path != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.Libraries[0].Path)
	}
	if cfg.Libraries[1].Path != "/mnt/archive/models" {
		t.Errorf("absolute path should pass through, got %q", cfg.Libraries[1].Path)
	}

	if cfg.UI.SplitRatio != 0.5 || cfg.UI.Theme != "dark" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Viewer.FOVDegrees != 45 || cfg.Viewer.ClickWindowMillis != 250 {
		t.Errorf("viewer = %+v", cfg.Viewer)
	}
	if cfg.Viewer.HighlightColor != "#00ccff" || cfg.Viewer.HighlightIntensity != 0.3 {
		t.Errorf("highlight override = %q / %v", cfg.Viewer.HighlightColor, cfg.Viewer.HighlightIntensity)
	}
	if len(cfg.Discovery.ScanPaths) != 1 || cfg.Discovery.ScanPaths[0] != filepath.Join(home, "models") {
		t.Errorf("scan paths = %v", cfg.Discovery.ScanPaths)
	}

	lib := cfg.FavoriteLibrary(1)
	if lib == nil || lib.Name != "plant" {
		t.Errorf("FavoriteLibrary(1) = %+v", lib)
	}
}

func TestLoadFrom_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("libraries: {not: [valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Libraries = []Library{{Name: "plant", Path: "/models/plant"}}
	cfg.SetFavorite(3, "plant")

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if len(loaded.Libraries) != 1 || loaded.Libraries[0].Name != "plant" {
		t.Errorf("libraries = %+v", loaded.Libraries)
	}
	if loaded.Favorites[3] != "plant" {
		t.Errorf("favorites = %+v", loaded.Favorites)
	}
}

func TestSetFavorite(t *testing.T) {
	var cfg Config
	cfg.SetFavorite(1, "plant")
	if cfg.Favorites[1] != "plant" {
		t.Errorf("favorites = %+v", cfg.Favorites)
	}
	cfg.SetFavorite(1, "")
	if _, ok := cfg.Favorites[1]; ok {
		t.Error("empty name should clear the favorite")
	}
}

func TestFindLibraryCaseInsensitive(t *testing.T) {
	cfg := Config{Libraries: []Library{{Name: "Plant", Path: "/p"}}}
	if cfg.FindLibrary("plant") == nil {
		t.Error("lookup should be case-insensitive")
	}
	if cfg.FindLibrary("unknown") != nil {
		t.Error("unknown name should return nil")
	}
}
