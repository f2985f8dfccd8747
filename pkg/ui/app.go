// app.go - root bubbletea model: panes, keys, live reload, frame ticks.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/internal/datasource"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/config"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/render"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/viewer"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/watcher"
)

// frameInterval drives camera animation. 30 FPS is plenty for a tween.
const frameInterval = time.Second / 30

type focus int

const (
	focusTree focus = iota
	focusDetail
	focusSearch
)

type frameMsg time.Time

type fileChangedMsg struct{}

type modelLoadedMsg struct{ err error }

func frameTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// WatchFileCmd waits for the next change notification and reports it.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changed(); !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func loadModelCmd(eng *viewer.Engine, dir string) tea.Cmd {
	return func() tea.Msg {
		return modelLoadedMsg{err: eng.LoadModel(context.Background(), dir)}
	}
}

// Model is the root TUI model.
type Model struct {
	theme  Theme
	cfg    config.Config
	eng    *viewer.Engine
	tree   *TreePane
	detail *DetailPane
	search textinput.Model

	watcher  *watcher.Watcher
	modelDir string

	width, height int
	focus         focus
	showHelp      bool
	helpCache     string
	loading       bool
	animating     bool
	statusMsg     string
	err           error
	quitting      bool
}

// NewModel builds the root model around an engine that has already loaded
// (or failed to load) its first model from modelDir.
func NewModel(cfg config.Config, eng *viewer.Engine, modelDir string) Model {
	r := lipgloss.DefaultRenderer()
	// "auto" keeps the renderer's background detection.
	switch cfg.UI.Theme {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	theme := DefaultTheme(r)

	search := textinput.New()
	search.Placeholder = "search parts"
	search.Prompt = "/"
	search.CharLimit = 120

	var w *watcher.Watcher
	status := ""
	if cfg.Discovery.Watch {
		if bomPath, err := loader.FindBOMPath(modelDir); err == nil {
			w, err = watcher.New(bomPath, watcher.WithDebounceDuration(200*time.Millisecond))
			if err == nil {
				err = w.Start()
			}
			if err != nil {
				status = fmt.Sprintf("live reload unavailable: %v", err)
				w = nil
			}
		}
	}

	m := Model{
		theme:     theme,
		cfg:       cfg,
		eng:       eng,
		tree:      NewTreePane(theme, eng),
		detail:    NewDetailPane(theme, eng, cfg.UI.ShowPath),
		search:    search,
		watcher:   w,
		modelDir:  modelDir,
		statusMsg: status,
	}
	m.detail.Refresh()
	return m
}

// Init starts the watcher pump.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

// Close releases resources owned by the UI.
func (m *Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.eng.Shutdown()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case frameMsg:
		if m.eng.Advance(frameInterval) {
			return m, frameTickCmd()
		}
		m.animating = false
		return m, nil

	case fileChangedMsg:
		debug.Log("bom changed on disk, reloading %s", m.modelDir)
		m.loading = true
		m.statusMsg = "reloading model..."
		cmds := []tea.Cmd{loadModelCmd(m.eng, m.modelDir)}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case modelLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = fmt.Sprintf("reload failed: %v", msg.err)
		} else {
			m.err = nil
			m.statusMsg = fmt.Sprintf("loaded %s", filepath.Base(m.modelDir))
		}
		m.tree.SetQuery("")
		m.search.SetValue("")
		m.detail.Refresh()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input owns the keyboard while active.
	if m.focus == focusSearch {
		switch msg.String() {
		case "esc":
			m.focus = focusTree
			m.search.Blur()
			m.search.SetValue("")
			m.tree.SetQuery("")
			return m, nil
		case "enter":
			m.focus = focusTree
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.tree.SetQuery(m.search.Value())
			return m, cmd
		}
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		m.helpCache = renderHelp(m.width)
		return m, nil

	case "tab":
		if m.focus == focusTree {
			m.focus = focusDetail
		} else {
			m.focus = focusTree
		}
		return m, nil

	case "/":
		m.focus = focusSearch
		m.search.Focus()
		return m, textinput.Blink

	case "esc":
		if m.tree.Query() != "" {
			m.search.SetValue("")
			m.tree.SetQuery("")
			return m, nil
		}
		m.eng.Deselect()
		m.afterSelection()
		return m, m.animateCmd()

	case "j", "down":
		if m.focus == focusDetail {
			m.detail.ScrollBy(1)
		} else {
			m.tree.MoveCursor(1)
		}
		return m, nil
	case "k", "up":
		if m.focus == focusDetail {
			m.detail.ScrollBy(-1)
		} else {
			m.tree.MoveCursor(-1)
		}
		return m, nil
	case "ctrl+d", "pgdown":
		if m.focus == focusDetail {
			m.detail.ScrollBy(m.bodyHeight() / 2)
		} else {
			m.tree.MoveCursor(m.bodyHeight() / 2)
		}
		return m, nil
	case "ctrl+u", "pgup":
		if m.focus == focusDetail {
			m.detail.ScrollBy(-m.bodyHeight() / 2)
		} else {
			m.tree.MoveCursor(-m.bodyHeight() / 2)
		}
		return m, nil
	case "g", "home":
		m.tree.Home()
		return m, nil
	case "G", "end":
		m.tree.End()
		return m, nil

	case "h", "left":
		m.tree.Collapse()
		return m, nil
	case "l", "right":
		m.tree.Expand()
		return m, nil
	case " ":
		m.tree.ToggleExpand()
		return m, nil
	case "E":
		m.tree.ExpandAll()
		return m, nil
	case "C":
		m.tree.CollapseAll()
		return m, nil

	case "enter":
		if n := m.tree.CursorNode(); n != nil && !m.loading {
			m.eng.SelectRecord(n.Record.ID)
			m.afterSelection()
			return m, m.animateCmd()
		}
		return m, nil

	case "y":
		if text, ok := m.detail.YankText(); ok {
			if err := clipboard.WriteAll(text); err != nil {
				m.statusMsg = fmt.Sprintf("clipboard: %v", err)
			} else {
				m.statusMsg = "copied selection to clipboard"
			}
		}
		return m, nil

	case "S":
		return m.saveSnapshot()

	case "r":
		if !m.loading {
			m.loading = true
			m.statusMsg = "reloading model..."
			return m, loadModelCmd(m.eng, m.modelDir)
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if !m.loading {
			return m.switchToFavorite(int(msg.String()[0] - '0'))
		}
		return m, nil
	}

	return m, nil
}

// switchToFavorite loads the best model from the library bound to number
// key n, re-pointing live reload at the new BOM file.
func (m Model) switchToFavorite(n int) (tea.Model, tea.Cmd) {
	lib := m.cfg.FavoriteLibrary(n)
	if lib == nil {
		m.statusMsg = fmt.Sprintf("no favorite on %d", n)
		return m, nil
	}
	dir, err := bestModelDir(lib.ResolvedPath())
	if err != nil {
		m.statusMsg = fmt.Sprintf("favorite %s: %v", lib.Name, err)
		return m, nil
	}
	debug.Log("switching to favorite %d (%s): %s", n, lib.Name, dir)
	m.modelDir = dir
	m.loading = true
	m.statusMsg = fmt.Sprintf("loading %s...", lib.Name)
	cmds := []tea.Cmd{loadModelCmd(m.eng, dir)}
	if cmd := m.rearmWatcher(dir); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func bestModelDir(root string) (string, error) {
	sources, err := datasource.DiscoverModels(datasource.DiscoveryOptions{
		Root:                   root,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		return "", err
	}
	best, err := datasource.SelectBestModel(sources)
	if err != nil {
		return "", err
	}
	return best.Dir, nil
}

// rearmWatcher stops the current watcher and starts one for the new model
// directory. Returns the pump command for the new watcher, or nil.
func (m *Model) rearmWatcher(dir string) tea.Cmd {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	if !m.cfg.Discovery.Watch {
		return nil
	}
	bomPath, err := loader.FindBOMPath(dir)
	if err != nil {
		return nil
	}
	w, err := watcher.New(bomPath, watcher.WithDebounceDuration(200*time.Millisecond))
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("live reload unavailable: %v", err)
		return nil
	}
	m.watcher = w
	return WatchFileCmd(w)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.tree.MoveCursor(1)
		return m, nil
	case tea.MouseButtonWheelUp:
		m.tree.MoveCursor(-1)
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || m.loading {
			return m, nil
		}
		// Rows start after the header line and the pane's top border.
		row := msg.Y - 3 + m.tree.offset
		if row < 0 || row >= m.tree.Len() {
			m.eng.ClickEmpty()
			m.afterSelection()
			return m, m.animateCmd()
		}
		m.tree.cursor = row
		m.tree.clampScroll()
		if n := m.tree.CursorNode(); n != nil {
			m.eng.SelectRecord(n.Record.ID)
			m.afterSelection()
			return m, m.animateCmd()
		}
	}
	return m, nil
}

// afterSelection syncs the panes with whatever the engine did: ancestor
// expansion, highlight, scroll target.
func (m *Model) afterSelection() {
	m.tree.Rebuild()
	if id, ok := m.eng.TakeScrollTarget(); ok {
		m.tree.ScrollTo(id)
	}
	m.detail.Refresh()
}

// animateCmd starts the frame loop if the camera has a flight in progress.
func (m *Model) animateCmd() tea.Cmd {
	if m.eng.Camera().Animating() && !m.animating {
		m.animating = true
		return frameTickCmd()
	}
	return nil
}

func (m Model) saveSnapshot() (tea.Model, tea.Cmd) {
	scn := m.eng.Scene()
	if scn == nil {
		m.statusMsg = "no scene to snapshot"
		return m, nil
	}
	dir := config.StateDir()
	highlighted := ""
	if hl := m.eng.Highlight(); hl != nil {
		if name, ok := hl.Active(); ok {
			highlighted = name
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot-%s.svg", time.Now().Format("20060102-150405")))
	err := render.SaveSnapshot(render.SnapshotOptions{
		Path:      path,
		Title:     filepath.Base(m.modelDir),
		Scene:     scn,
		Highlight: highlighted,
	})
	if err != nil {
		m.statusMsg = fmt.Sprintf("snapshot: %v", err)
	} else {
		m.statusMsg = fmt.Sprintf("saved %s", path)
	}
	return m, nil
}

// --- layout and rendering --------------------------------------------------

func (m *Model) layout() {
	treeW, detailW := m.paneWidths()
	body := m.bodyHeight()
	m.tree.SetSize(treeW-2, body)
	m.detail.SetSize(detailW-2, body)
}

func (m Model) paneWidths() (int, int) {
	ratio := m.cfg.UI.SplitRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.4
	}
	treeW := int(float64(m.width) * ratio)
	if treeW < 24 {
		treeW = 24
	}
	detailW := m.width - treeW
	if detailW < 20 {
		detailW = 20
	}
	return treeW, detailW
}

// bodyHeight is the pane content height: total minus header, borders, and
// the footer line.
func (m Model) bodyHeight() int {
	h := m.height - 1 - 2 - 1
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}
	if m.showHelp {
		return m.helpCache
	}

	header := m.renderHeader()

	treeW, detailW := m.paneWidths()
	treeBorder := m.theme.PaneBorder
	detailBorder := m.theme.PaneBorder
	if m.focus == focusDetail {
		detailBorder = m.theme.FocusBorder
	} else {
		treeBorder = m.theme.FocusBorder
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		treeBorder.Width(treeW-2).Height(m.bodyHeight()).Render(m.tree.View()),
		detailBorder.Width(detailW-2).Height(m.bodyHeight()).Render(m.detail.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m Model) renderHeader() string {
	title := "bomview"
	if doc := m.eng.Document(); doc != nil && doc.Filename != "" {
		title = fmt.Sprintf("bomview · %s", doc.Filename)
	}
	left := m.theme.Header.Render(title)

	var right string
	if m.focus == focusSearch || m.tree.Query() != "" {
		right = m.search.View()
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}

func (m Model) renderFooter() string {
	switch {
	case m.err != nil:
		return m.theme.ErrorText.Render(m.err.Error())
	case m.eng.SceneError() != "":
		return m.theme.ErrorText.Render(m.eng.SceneError())
	case m.eng.BOMWarning() != "":
		return m.theme.WarningText.Render(m.eng.BOMWarning())
	case m.statusMsg != "":
		return m.theme.MutedText.Render(m.statusMsg)
	}
	if part, ok := m.eng.Selection(); ok {
		return m.theme.SecondaryText.Render(fmt.Sprintf("selected: %s", part.Record.DisplayName()))
	}
	return m.theme.MutedText.Render("? for help · / to search · q to quit")
}
