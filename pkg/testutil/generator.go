// Package testutil provides synthetic BOM documents, scene manifests, and
// assertions for tests. All generators produce deterministic output for
// reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

// GeneratorConfig controls synthetic document generation.
type GeneratorConfig struct {
	Seed        int64   // Random seed for determinism (0 = fixed default)
	Filename    string  // Document filename (default: "synthetic.step")
	NamePrefix  string  // Part name prefix (default: "Part")
	MeshSpacing float64 // Distance between generated mesh bounds (default: 10)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Filename:    "synthetic.step",
		NamePrefix:  "Part",
		MeshSpacing: 10,
	}
}

// Generator creates synthetic documents with various tree topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Filename == "" {
		cfg.Filename = "synthetic.step"
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "Part"
	}
	if cfg.MeshSpacing == 0 {
		cfg.MeshSpacing = 10
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func intp(v int) *int { return &v }

// Chain creates a linear assembly: root -> a1 -> a2 -> ... -> leaf.
// Every non-leaf record is an assembly.
func (g *Generator) Chain(size int) model.Document {
	records := make([]model.PartRecord, 0, size)
	for i := 0; i < size; i++ {
		rec := model.PartRecord{
			ID:         i + 1,
			Name:       fmt.Sprintf("%s-%03d", g.cfg.NamePrefix, i+1),
			IsAssembly: i < size-1,
		}
		if i == 0 {
			rec.IsRoot = true
		} else {
			rec.ParentID = intp(i)
		}
		records = append(records, rec)
	}
	return g.document(records)
}

// Flat creates a root with n direct part children.
func (g *Generator) Flat(n int) model.Document {
	records := make([]model.PartRecord, 0, n+1)
	records = append(records, model.PartRecord{
		ID: 1, Name: g.cfg.NamePrefix + "-ASSY", IsRoot: true, IsAssembly: true,
	})
	for i := 0; i < n; i++ {
		records = append(records, model.PartRecord{
			ID:       i + 2,
			ParentID: intp(1),
			Name:     fmt.Sprintf("%s-%03d", g.cfg.NamePrefix, i+1),
		})
	}
	return g.document(records)
}

// Tree creates a balanced assembly tree of the given depth and branching
// factor. Interior records are assemblies, leaves are parts.
func (g *Generator) Tree(depth, breadth int) model.Document {
	var records []model.PartRecord
	nextID := 1

	var grow func(parent *int, level int)
	grow = func(parent *int, level int) {
		id := nextID
		nextID++
		records = append(records, model.PartRecord{
			ID:         id,
			ParentID:   parent,
			Name:       fmt.Sprintf("%s-%03d", g.cfg.NamePrefix, id),
			IsAssembly: level < depth,
			IsRoot:     parent == nil,
		})
		if level < depth {
			for i := 0; i < breadth; i++ {
				grow(intp(id), level+1)
			}
		}
	}
	grow(nil, 0)
	return g.document(records)
}

// Malformed creates a document with a dangling parent reference and a
// second parentless record, for recovery-path tests.
func (g *Generator) Malformed() model.Document {
	return g.document([]model.PartRecord{
		{ID: 1, Name: g.cfg.NamePrefix + "-ASSY", IsRoot: true, IsAssembly: true},
		{ID: 2, ParentID: intp(1), Name: g.cfg.NamePrefix + "-001"},
		{ID: 3, ParentID: intp(99), Name: g.cfg.NamePrefix + "-dangling"},
		{ID: 4, Name: g.cfg.NamePrefix + "-stray"},
	})
}

// Shuffled returns a copy of the document with its records in random
// order. The tree builder must not depend on parents preceding children.
func (g *Generator) Shuffled(doc model.Document) model.Document {
	out := doc
	out.AssemblyTree = append([]model.PartRecord(nil), doc.AssemblyTree...)
	g.rng.Shuffle(len(out.AssemblyTree), func(i, j int) {
		out.AssemblyTree[i], out.AssemblyTree[j] = out.AssemblyTree[j], out.AssemblyTree[i]
	})
	return out
}

func (g *Generator) document(records []model.PartRecord) model.Document {
	doc := model.Document{
		Filename:     g.cfg.Filename,
		Timestamp:    "2025-01-01T12:00:00Z",
		AssemblyTree: records,
	}
	doc.TotalParts, doc.TotalAssemblies = doc.CountParts()
	return doc
}

type manifestMesh struct {
	Name     string         `json:"name"`
	Material scene.Material `json:"material"`
	Min      [3]float64     `json:"min"`
	Max      [3]float64     `json:"max"`
}

type manifestDoc struct {
	Model       string         `json:"model"`
	GeneratedBy string         `json:"generated_by,omitempty"`
	Meshes      []manifestMesh `json:"meshes"`
}

// ManifestFor builds a scene manifest with one mesh per leaf part in the
// document, named after the record and laid out along the X axis so that
// every mesh has distinct, non-empty bounds.
func (g *Generator) ManifestFor(doc model.Document) []byte {
	m := manifestDoc{Model: doc.Filename, GeneratedBy: "testutil"}
	x := 0.0
	half := g.cfg.MeshSpacing / 4
	for i := range doc.AssemblyTree {
		rec := &doc.AssemblyTree[i]
		if rec.IsAssembly {
			continue
		}
		m.Meshes = append(m.Meshes, manifestMesh{
			Name:     rec.Name,
			Material: scene.Material{Name: "default", Color: "#808080"},
			Min:      [3]float64{x - half, -half, -half},
			Max:      [3]float64{x + half, half, half},
		})
		x += g.cfg.MeshSpacing
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

// SceneFor parses ManifestFor's output into a Scene.
func (g *Generator) SceneFor(t *testing.T, doc model.Document) *scene.Scene {
	t.Helper()
	s, err := scene.Parse(g.ManifestFor(doc))
	if err != nil {
		t.Fatalf("parsing generated manifest: %v", err)
	}
	return s
}

// WriteModelDir writes the document, and optionally a matching scene
// manifest, into dir as a loadable model directory.
func (g *Generator) WriteModelDir(t *testing.T, dir string, doc model.Document, withScene bool) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bom_data.json"), data, 0o644); err != nil {
		t.Fatalf("write bom: %v", err)
	}
	if !withScene {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, scene.DefaultManifestFile), g.ManifestFor(doc), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
}

// QuickChain returns a chain document with default config.
func QuickChain(size int) model.Document { return NewDefault().Chain(size) }

// QuickFlat returns a flat document with default config.
func QuickFlat(n int) model.Document { return NewDefault().Flat(n) }

// QuickTree returns a balanced tree document with default config.
func QuickTree(depth, breadth int) model.Document { return NewDefault().Tree(depth, breadth) }
