package model

// SelectionSource identifies which view originated a selection.
type SelectionSource string

const (
	// SourceTree means the user clicked a row in the assembly tree.
	SourceTree SelectionSource = "tree"
	// SourceScene means the user clicked a mesh in the 3D view.
	SourceScene SelectionSource = "scene"
)

// SelectedPart is the resolved part held by the selection state machine:
// the canonical BOM record plus the scene-side mesh name that matched and
// which view the click came from. At most one exists at any time.
type SelectedPart struct {
	Record   PartRecord
	MeshName string
	Source   SelectionSource
}

// SelectionEvent is the observable change emitted to collaborators when the
// selection changes. A nil event (no selection) is published as deselection.
type SelectionEvent struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	ReferenceName string          `json:"reference_name,omitempty"`
	MeshName      string          `json:"mesh_name,omitempty"`
	Source        SelectionSource `json:"selection_source"`
	IsFallback    bool            `json:"is_fallback,omitempty"`
}

// Event converts the selected part to its observable form.
func (s SelectedPart) Event() SelectionEvent {
	return SelectionEvent{
		ID:            s.Record.ID,
		Name:          s.Record.Name,
		ReferenceName: s.Record.ReferenceName,
		MeshName:      s.MeshName,
		Source:        s.Source,
		IsFallback:    s.Record.IsFallback,
	}
}
