package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/config"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/testutil"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/viewer"
)

func testModel(t *testing.T) Model {
	return testModelCfg(t, nil)
}

func testModelCfg(t *testing.T, tweak func(*config.Config)) Model {
	t.Helper()
	g := testutil.NewDefault()
	doc := g.Tree(2, 2)
	dir := t.TempDir()
	g.WriteModelDir(t, dir, doc, true)

	eng := viewer.New()
	if err := eng.LoadModel(context.Background(), dir); err != nil {
		t.Fatalf("load model: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Discovery.Watch = false
	if tweak != nil {
		tweak(&cfg)
	}
	m := NewModel(cfg, eng, dir)
	t.Cleanup(m.Close)

	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return sized.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	panic("unknown key " + s)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestViewShowsModelAndRoot(t *testing.T) {
	m := testModel(t)
	view := m.View()
	if !strings.Contains(view, "synthetic.step") {
		t.Error("header should name the loaded model")
	}
	if !strings.Contains(view, "Part-001") {
		t.Error("tree should show the root record")
	}
}

func TestEnterSelectsCursorRow(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "down", "enter")

	part, ok := m.eng.Selection()
	if !ok {
		t.Fatal("enter should select the cursor row")
	}
	if part.Record.ID != 2 {
		t.Errorf("selected id = %d, want 2", part.Record.ID)
	}
	if !strings.Contains(m.View(), "selected: Part-002") {
		t.Error("footer should report the selection")
	}

	// Enter again on the same row toggles the selection off.
	m = press(t, m, "enter")
	if _, ok := m.eng.Selection(); ok {
		t.Error("second enter should deselect")
	}
}

func TestEscClearsSelection(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "down", "enter", "esc")
	if _, ok := m.eng.Selection(); ok {
		t.Error("esc should clear the selection")
	}
}

func TestSearchFiltersTree(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "E")
	rows := m.tree.Len()

	m = press(t, m, "/", "0", "0", "4")
	if m.tree.Query() != "004" {
		t.Fatalf("query = %q", m.tree.Query())
	}
	if m.tree.Len() >= rows {
		t.Errorf("filter should shrink the row count (%d -> %d)", rows, m.tree.Len())
	}
	// Matches keep their ancestor chain.
	if m.tree.rows[0].Record.ID != 1 {
		t.Error("filtered tree should still start at the root")
	}

	m = press(t, m, "esc", "esc")
	if m.tree.Query() != "" {
		t.Error("esc should clear the filter")
	}
	if m.tree.Len() == 0 {
		t.Error("clearing the filter should restore rows")
	}
}

func TestCollapseHidesChildren(t *testing.T) {
	m := testModel(t)
	expanded := m.tree.Len()
	m = press(t, m, " ")
	if m.tree.Len() >= expanded {
		t.Errorf("collapsing the root should hide rows (%d -> %d)", expanded, m.tree.Len())
	}
	m = press(t, m, " ")
	if m.tree.Len() != expanded {
		t.Errorf("re-expanding should restore rows, got %d want %d", m.tree.Len(), expanded)
	}
}

func TestExpandAllCollapseAll(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "E")
	all := m.tree.Len()
	// 1 root + 2 assemblies + 4 leaves
	if all != 7 {
		t.Errorf("expand all shows %d rows, want 7", all)
	}
	m = press(t, m, "C")
	if m.tree.Len() != 3 {
		t.Errorf("collapse all shows %d rows, want root plus direct children", m.tree.Len())
	}
}

func TestSelectionScrollsTreeToRow(t *testing.T) {
	m := testModel(t)
	// Select a leaf through the engine, as a 3D click would.
	m.eng.SelectRecord(4)
	m.afterSelection()
	n := m.tree.CursorNode()
	if n == nil || n.Record.ID != 4 {
		t.Errorf("cursor should land on the selected record, got %+v", n)
	}
}

func TestDetailPathLineFollowsConfig(t *testing.T) {
	m := testModel(t)
	m.eng.SelectRecord(4)
	m.afterSelection()
	if !strings.Contains(m.detail.View(), "›") {
		t.Error("breadcrumb should render when show_path is on")
	}

	m = testModelCfg(t, func(cfg *config.Config) { cfg.UI.ShowPath = false })
	m.eng.SelectRecord(4)
	m.afterSelection()
	if strings.Contains(m.detail.View(), "›") {
		t.Error("breadcrumb should be hidden when show_path is off")
	}
}

func TestFavoriteSwitchesModel(t *testing.T) {
	libRoot := t.TempDir()
	modelDir := filepath.Join(libRoot, "plant-line")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatal(err)
	}
	g := testutil.New(testutil.GeneratorConfig{Filename: "plant.step"})
	g.WriteModelDir(t, modelDir, g.Flat(3), true)

	m := testModelCfg(t, func(cfg *config.Config) {
		cfg.Libraries = []config.Library{{Name: "plant", Path: libRoot}}
		cfg.SetFavorite(2, "plant")
	})

	next, cmd := m.Update(key("2"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("favorite key should start a model load")
	}
	if m.modelDir != modelDir {
		t.Fatalf("modelDir = %q, want %q", m.modelDir, modelDir)
	}
	// Run the load command and feed its result back, as the runtime would.
	next, _ = m.Update(cmd())
	m = next.(Model)
	if !strings.Contains(m.View(), "plant.step") {
		t.Error("header should name the favorite's model after the switch")
	}

	// An unassigned key just reports and stays put.
	before := m.modelDir
	m = press(t, m, "7")
	if m.modelDir != before {
		t.Error("unassigned favorite must not switch models")
	}
	if !strings.Contains(m.statusMsg, "no favorite") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "?")
	if !strings.Contains(m.View(), "bomview") {
		t.Error("help overlay should render")
	}
	m = press(t, m, "esc")
	if m.showHelp {
		t.Error("esc should close help")
	}
}

func TestQuit(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
	if next.(Model).View() != "" {
		t.Error("quitting model renders nothing")
	}
}
