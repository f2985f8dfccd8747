// Package highlight manages selection emphasis on scene meshes.
//
// Every mesh's material is snapshotted once at scene load. A selection
// change always resets every mesh back to its snapshot and then, when a
// mesh is selected, installs a highlighted clone of that mesh's snapshot.
// The snapshots themselves are never touched after capture, so deselect
// restores the load-time appearance exactly.
package highlight

import (
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
)

// Default appearance. Intensity is kept low enough that surface detail
// stays readable under the emissive tint.
const (
	Color     = "#ff6600"
	Emissive  = "#ff6600"
	Intensity = 0.3
)

// Style is the appearance applied to the selected mesh. Colors are #rrggbb
// hex strings, matching the manifest's material format.
type Style struct {
	Color     string
	Emissive  string
	Intensity float64
}

// DefaultStyle returns the built-in orange emissive highlight.
func DefaultStyle() Style {
	return Style{Color: Color, Emissive: Emissive, Intensity: Intensity}
}

// Option configures a Manager.
type Option func(*Manager)

// WithStyle overrides the highlight appearance. Empty colors and a zero
// intensity keep the defaults field by field.
func WithStyle(st Style) Option {
	return func(m *Manager) {
		if st.Color != "" {
			m.style.Color = st.Color
		}
		if st.Emissive != "" {
			m.style.Emissive = st.Emissive
		}
		if st.Intensity > 0 {
			m.style.Intensity = st.Intensity
		}
	}
}

// Manager owns the original-material snapshots for one loaded scene.
// Like the rest of the viewer state it runs on the UI loop and is not
// safe for concurrent use.
type Manager struct {
	scene *scene.Scene
	style Style
	// originals is parallel to scene.Meshes so duplicate names each keep
	// their own snapshot.
	originals []scene.Material
	byName    map[string]scene.Material
	active    string
}

// NewManager captures the original material of every mesh in s.
func NewManager(s *scene.Scene, opts ...Option) *Manager {
	m := &Manager{
		scene:     s,
		style:     DefaultStyle(),
		originals: make([]scene.Material, len(s.Meshes)),
		byName:    make(map[string]scene.Material, len(s.Meshes)),
	}
	for _, opt := range opts {
		opt(m)
	}
	for i, mesh := range s.Meshes {
		m.originals[i] = mesh.Material
		if _, dup := m.byName[mesh.Name]; !dup {
			m.byName[mesh.Name] = mesh.Material
		}
	}
	return m
}

// Apply resets every mesh to its snapshot, then highlights the named
// mesh with a clone of its original material. An unknown name leaves the
// scene fully reset, which is the right behavior for fallback records
// that resolved to nothing.
func (m *Manager) Apply(meshName string) {
	m.restoreAll()
	mesh, ok := m.scene.MeshByName(meshName)
	if !ok {
		debug.Log("highlight: no mesh named %q, scene left reset", meshName)
		m.active = ""
		return
	}
	clone := m.byName[mesh.Name]
	clone.Color = m.style.Color
	clone.Emissive = m.style.Emissive
	clone.EmissiveIntensity = m.style.Intensity
	mesh.Material = clone
	m.active = mesh.Name
}

// Style returns the highlight appearance in use.
func (m *Manager) Style() Style {
	return m.style
}

// Reset restores every mesh to its snapshot and clears the active
// highlight.
func (m *Manager) Reset() {
	m.restoreAll()
	m.active = ""
}

// Active returns the currently highlighted mesh name, if any.
func (m *Manager) Active() (string, bool) {
	return m.active, m.active != ""
}

// Original returns the load-time snapshot for a mesh name. Duplicate
// names report the first occurrence.
func (m *Manager) Original(name string) (scene.Material, bool) {
	mat, ok := m.byName[name]
	return mat, ok
}

func (m *Manager) restoreAll() {
	for i, mesh := range m.scene.Meshes {
		mesh.Material = m.originals[i]
	}
}
