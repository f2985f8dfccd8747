// Package selection owns the viewer's single-selection state.
//
// Both the tree pane and the scene read selection from one Machine and
// mutate it only through its transition methods, so there is exactly one
// place where toggle and retarget semantics live. Side effects of a
// transition (expansion, highlight, camera) hang off hooks; the machine
// itself knows nothing about rendering.
package selection

import (
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// State is the machine's current mode.
type State int

const (
	// StateIdle means nothing is selected.
	StateIdle State = iota
	// StateSelected means exactly one part is selected.
	StateSelected
)

// Hooks are invoked synchronously during a transition, after the new state
// is in place. Either hook may be nil.
type Hooks struct {
	// Selected fires on every entry into StateSelected, including a
	// retarget from an existing selection.
	Selected func(model.SelectedPart)
	// Deselected fires on every entry into StateIdle from StateSelected.
	Deselected func()
}

// Machine is the single owner of selection state. It is not safe for
// concurrent use; all transitions happen on the UI loop.
type Machine struct {
	current *model.SelectedPart
	hooks   Hooks
}

// NewMachine returns an idle machine with the given hooks.
func NewMachine(hooks Hooks) *Machine {
	return &Machine{hooks: hooks}
}

// State reports the current mode.
func (m *Machine) State() State {
	if m.current != nil {
		return StateSelected
	}
	return StateIdle
}

// Current returns the selected part, if any.
func (m *Machine) Current() (model.SelectedPart, bool) {
	if m.current == nil {
		return model.SelectedPart{}, false
	}
	return *m.current, true
}

// sameTarget reports whether two selections refer to the same part. All
// fallback records share the sentinel id, so clicks that resolved to
// nothing compare by mesh name instead; a fallback never matches a real
// record.
func sameTarget(a, b model.SelectedPart) bool {
	if a.Record.IsFallback || b.Record.IsFallback {
		return a.Record.IsFallback == b.Record.IsFallback && a.MeshName == b.MeshName
	}
	return a.Record.ID == b.Record.ID
}

// Select applies a selection request. Selecting the already-selected part
// toggles back to idle; selecting a different part retargets directly with
// no intermediate idle transition.
func (m *Machine) Select(part model.SelectedPart) {
	if m.current != nil && sameTarget(*m.current, part) {
		debug.Log("selection: toggle off id=%d", part.Record.ID)
		m.toIdle()
		return
	}
	m.current = &part
	debug.Log("selection: select id=%d source=%s", part.Record.ID, part.Source)
	if m.hooks.Selected != nil {
		m.hooks.Selected(part)
	}
}

// Deselect transitions to idle from any state. Calling it while already
// idle is a no-op and fires no hooks.
func (m *Machine) Deselect() {
	if m.current == nil {
		return
	}
	debug.Log("selection: deselect id=%d", m.current.Record.ID)
	m.toIdle()
}

// Reset drops any selection without firing hooks. Used when the loaded
// model changes and the old selection no longer refers to anything.
func (m *Machine) Reset() {
	m.current = nil
}

func (m *Machine) toIdle() {
	m.current = nil
	if m.hooks.Deselected != nil {
		m.hooks.Deselected()
	}
}
