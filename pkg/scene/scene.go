// Package scene holds the 3D side of the viewer: the named meshes of the
// loaded model, their materials, and their bounds.
//
// The converter that produces model.glb also emits a scene.json manifest
// next to it with one entry per drawable mesh. The viewer works entirely
// off that manifest; the GLB itself is only ever handed to the renderer.
package scene

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/geom"
)

// DefaultManifestFile is the fixed manifest filename the converter writes
// next to the GLB.
const DefaultManifestFile = "scene.json"

// Material is a mesh surface description. Colors are #rrggbb hex strings
// as the converter writes them.
type Material struct {
	Name              string  `json:"name,omitempty"`
	Color             string  `json:"color"`
	Emissive          string  `json:"emissive"`
	EmissiveIntensity float64 `json:"emissive_intensity"`
}

// Mesh is one named drawable. Material is the active material and is the
// only mutable field; the highlight manager swaps it during selection.
type Mesh struct {
	Name     string
	Material Material
	Bounds   geom.Box
}

// Scene is a loaded model: meshes in manifest order plus a name index.
type Scene struct {
	Model  string
	Meshes []*Mesh

	byName map[string]*Mesh
}

type manifestMesh struct {
	Name     string     `json:"name"`
	Material Material   `json:"material"`
	Min      [3]float64 `json:"min"`
	Max      [3]float64 `json:"max"`
}

type manifest struct {
	Model       string         `json:"model"`
	GeneratedBy string         `json:"generated_by,omitempty"`
	Meshes      []manifestMesh `json:"meshes"`
}

// Load reads and parses a scene manifest from disk.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene manifest: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a Scene from manifest JSON. Duplicate mesh names are kept
// in the mesh list but the name index points at the first occurrence,
// matching the resolver's first-match behavior.
func Parse(data []byte) (*Scene, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling manifest: %w", err)
	}
	if len(m.Meshes) == 0 {
		return nil, fmt.Errorf("manifest lists no meshes")
	}

	s := &Scene{
		Model:  m.Model,
		Meshes: make([]*Mesh, 0, len(m.Meshes)),
		byName: make(map[string]*Mesh, len(m.Meshes)),
	}
	for i, mm := range m.Meshes {
		if mm.Name == "" {
			return nil, fmt.Errorf("mesh %d has no name", i)
		}
		mesh := &Mesh{
			Name:     mm.Name,
			Material: mm.Material,
			Bounds: geom.NewBox(
				r3.Vec{X: mm.Min[0], Y: mm.Min[1], Z: mm.Min[2]},
				r3.Vec{X: mm.Max[0], Y: mm.Max[1], Z: mm.Max[2]},
			),
		}
		s.Meshes = append(s.Meshes, mesh)
		if _, dup := s.byName[mesh.Name]; !dup {
			s.byName[mesh.Name] = mesh
		}
	}
	return s, nil
}

// MeshByName looks up a mesh by its manifest name.
func (s *Scene) MeshByName(name string) (*Mesh, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// MeshNames returns mesh names in manifest order, the traversal order the
// resolver uses.
func (s *Scene) MeshNames() []string {
	names := make([]string, len(s.Meshes))
	for i, m := range s.Meshes {
		names[i] = m.Name
	}
	return names
}

// Bounds returns the union of all mesh bounds.
func (s *Scene) Bounds() geom.Box {
	b := geom.EmptyBox()
	for _, m := range s.Meshes {
		b = b.Union(m.Bounds)
	}
	return b
}
