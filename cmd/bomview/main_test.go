package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/config"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/testutil"
)

func mkdirAll(dir string) error { return os.MkdirAll(dir, 0o755) }

func writeModel(t *testing.T, dir string) {
	t.Helper()
	g := testutil.NewDefault()
	g.WriteModelDir(t, dir, g.Flat(2), true)
}

func TestResolveModelDirExplicit(t *testing.T) {
	t.Setenv(loader.ModelDirEnvVar, "")
	dir := t.TempDir()
	writeModel(t, dir)

	got, err := resolveModelDir(config.DefaultConfig(), dir, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != dir {
		t.Errorf("resolved %s, want %s", got, dir)
	}
}

func TestResolveModelDirExplicitMissingBOM(t *testing.T) {
	t.Setenv(loader.ModelDirEnvVar, "")
	if _, err := resolveModelDir(config.DefaultConfig(), t.TempDir(), ""); err == nil {
		t.Error("empty directory should be rejected")
	}
}

func TestResolveModelDirLibrary(t *testing.T) {
	t.Setenv(loader.ModelDirEnvVar, "")
	root := t.TempDir()
	modelDir := filepath.Join(root, "gearbox")
	if err := mkdirAll(modelDir); err != nil {
		t.Fatal(err)
	}
	writeModel(t, modelDir)

	cfg := config.DefaultConfig()
	cfg.Libraries = append(cfg.Libraries, config.Library{Name: "demo", Path: root})

	got, err := resolveModelDir(cfg, "", "demo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != modelDir {
		t.Errorf("resolved %s, want %s", got, modelDir)
	}

	if _, err := resolveModelDir(cfg, "", "nope"); err == nil {
		t.Error("unknown library should be rejected")
	}
}

func TestAssignFavorite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Libraries = []config.Library{{Name: "plant", Path: "/models/plant"}}

	if err := assignFavorite(&cfg, "2=plant"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if cfg.Favorites[2] != "plant" {
		t.Errorf("favorites = %+v", cfg.Favorites)
	}

	if err := assignFavorite(&cfg, "2="); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := cfg.Favorites[2]; ok {
		t.Error("empty library name should clear the key")
	}

	for _, spec := range []string{"plant", "0=plant", "10=plant", "x=plant", "3=unknown"} {
		if err := assignFavorite(&cfg, spec); err == nil {
			t.Errorf("spec %q should be rejected", spec)
		}
	}
}

func TestResolveModelDirScanPaths(t *testing.T) {
	t.Setenv(loader.ModelDirEnvVar, "")
	root := t.TempDir()
	modelDir := filepath.Join(root, "pump")
	if err := mkdirAll(modelDir); err != nil {
		t.Fatal(err)
	}
	writeModel(t, modelDir)

	cfg := config.DefaultConfig()
	cfg.Discovery.ScanPaths = []string{root}

	got, err := resolveModelDir(cfg, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != modelDir {
		t.Errorf("resolved %s, want %s", got, modelDir)
	}
}
