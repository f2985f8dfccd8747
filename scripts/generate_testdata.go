//go:build ignore

// generate_testdata.go creates standard sample model directories for
// benchmarking and manual testing.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/models/small/   bom_data.json + scene.json  (flat, 20 parts)
//	testdata/models/medium/  bom_data.json + scene.json  (tree depth 3 x 4)
//	testdata/models/large/   bom_data.json + scene.json  (tree depth 4 x 5)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/testutil"
)

func main() {
	g := testutil.NewDefault()

	datasets := []struct {
		name string
		doc  model.Document
	}{
		{"small", g.Flat(20)},
		{"medium", g.Tree(3, 4)},
		{"large", g.Tree(4, 5)},
	}

	for _, ds := range datasets {
		dir := filepath.Join("testdata", "models", ds.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}
		bom, err := json.MarshalIndent(ds.doc, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		if err := os.WriteFile(filepath.Join(dir, "bom_data.json"), bom, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write BOM: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(filepath.Join(dir, "scene.json"), g.ManifestFor(ds.doc), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write scene: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d records)\n", dir, len(ds.doc.AssemblyTree))
	}
}
