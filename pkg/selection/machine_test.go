package selection

import (
	"testing"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

func part(id int, name string) model.SelectedPart {
	return model.SelectedPart{
		Record: model.PartRecord{ID: id, Name: name},
		Source: model.SourceTree,
	}
}

func TestMachineSelectFromIdle(t *testing.T) {
	var selected []int
	m := NewMachine(Hooks{
		Selected: func(p model.SelectedPart) { selected = append(selected, p.Record.ID) },
	})

	m.Select(part(3, "Shaft"))

	if m.State() != StateSelected {
		t.Fatal("expected StateSelected")
	}
	cur, ok := m.Current()
	if !ok || cur.Record.ID != 3 {
		t.Errorf("Current() = %+v, ok=%v", cur, ok)
	}
	if len(selected) != 1 || selected[0] != 3 {
		t.Errorf("Selected hook calls = %v, want [3]", selected)
	}
}

func TestMachineToggleOff(t *testing.T) {
	deselects := 0
	m := NewMachine(Hooks{Deselected: func() { deselects++ }})

	m.Select(part(3, "Shaft"))
	m.Select(part(3, "Shaft"))

	if m.State() != StateIdle {
		t.Fatal("selecting the same id twice should toggle back to idle")
	}
	if deselects != 1 {
		t.Errorf("Deselected hook calls = %d, want 1", deselects)
	}

	// Toggling is idempotent from idle: a repeat select is a fresh
	// selection, not a repeat toggle.
	m.Select(part(3, "Shaft"))
	if m.State() != StateSelected {
		t.Error("third select should land back in StateSelected")
	}
}

func TestMachineDirectRetarget(t *testing.T) {
	var selected []int
	deselects := 0
	m := NewMachine(Hooks{
		Selected:   func(p model.SelectedPart) { selected = append(selected, p.Record.ID) },
		Deselected: func() { deselects++ },
	})

	m.Select(part(3, "Shaft"))
	m.Select(part(7, "Bracket"))

	cur, _ := m.Current()
	if cur.Record.ID != 7 {
		t.Errorf("current id = %d, want 7", cur.Record.ID)
	}
	if deselects != 0 {
		t.Error("retarget must not pass through idle")
	}
	if len(selected) != 2 {
		t.Errorf("Selected hook calls = %v, want two", selected)
	}
}

func TestMachineFallbackRetargetByMesh(t *testing.T) {
	deselects := 0
	m := NewMachine(Hooks{Deselected: func() { deselects++ }})

	// Fallback records all carry the sentinel id; a different unmatched
	// mesh is a different part and must retarget, not toggle.
	m.Select(fallbackPart("Shaft-01"))
	m.Select(fallbackPart("Shaft-02"))

	cur, ok := m.Current()
	if !ok || cur.MeshName != "Shaft-02" {
		t.Fatalf("current = %+v, %v, want fallback for Shaft-02", cur, ok)
	}
	if deselects != 0 {
		t.Error("fallback retarget must not pass through idle")
	}

	// The same unmatched mesh again is the same part: toggle off.
	m.Select(fallbackPart("Shaft-02"))
	if m.State() != StateIdle || deselects != 1 {
		t.Errorf("state = %v, deselects = %d, want idle after toggle", m.State(), deselects)
	}

	// A fallback and a real record never compare equal, whatever the ids.
	m.Select(fallbackPart("Shaft-03"))
	m.Select(part(0, "Shaft-03"))
	if m.State() != StateSelected || deselects != 1 {
		t.Errorf("state = %v, deselects = %d, want retarget onto the real record", m.State(), deselects)
	}
}

func TestMachineDeselect(t *testing.T) {
	deselects := 0
	m := NewMachine(Hooks{Deselected: func() { deselects++ }})

	m.Deselect() // idle, no-op
	if deselects != 0 {
		t.Error("deselect from idle should fire no hooks")
	}

	m.Select(part(1, "Frame"))
	m.Deselect()
	if m.State() != StateIdle || deselects != 1 {
		t.Errorf("state = %v, deselects = %d", m.State(), deselects)
	}
}

func TestMachineResetFiresNoHooks(t *testing.T) {
	deselects := 0
	m := NewMachine(Hooks{Deselected: func() { deselects++ }})

	m.Select(part(1, "Frame"))
	m.Reset()

	if m.State() != StateIdle {
		t.Error("Reset should land in idle")
	}
	if deselects != 0 {
		t.Error("Reset must not fire hooks")
	}
}
