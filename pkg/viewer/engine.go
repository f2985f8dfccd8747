// Package viewer is the core engine behind both panes of the BOM viewer.
//
// The Engine owns the loaded BOM document, the assembly tree, the scene,
// and the selection machinery, and exposes the operations the UI layers
// call: load a model, click a mesh, select a tree row, advance the camera.
// All methods except LoadModel run on the UI loop; LoadModel fans out the
// BOM and scene fetches and merges their results before returning.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/assembly"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/camera"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/highlight"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/loader"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/resolve"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/scene"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/selection"
)

// Engine binds the tree and scene sides of the viewer together around one
// selection owner.
type Engine struct {
	doc  *model.Document
	tree *assembly.Tree
	scn  *scene.Scene
	hl   *highlight.Manager
	cam  *camera.Controller

	machine *selection.Machine
	clicks  *selection.ClickHandler
	hlOpts  []highlight.Option

	expanded     map[int]struct{}
	scrollTarget int
	scrollSet    bool

	loading    bool
	bomWarning string
	sceneErr   string
	warnings   []string

	onEvent func(*model.SelectionEvent)
}

// Option configures an Engine.
type Option func(*Engine, *engineConfig)

type engineConfig struct {
	cameraOpts []camera.Option
	clickOpts  []selection.ClickOption
}

// WithEventHandler registers a callback fired on every selection change.
// The event is nil when the machine returns to idle.
func WithEventHandler(fn func(*model.SelectionEvent)) Option {
	return func(e *Engine, _ *engineConfig) { e.onEvent = fn }
}

// WithCameraOptions forwards options to the camera controller.
func WithCameraOptions(opts ...camera.Option) Option {
	return func(_ *Engine, c *engineConfig) { c.cameraOpts = append(c.cameraOpts, opts...) }
}

// WithClickOptions forwards options to the click handler.
func WithClickOptions(opts ...selection.ClickOption) Option {
	return func(_ *Engine, c *engineConfig) { c.clickOpts = append(c.clickOpts, opts...) }
}

// WithHighlightOptions forwards options to the highlight manager created on
// each model load.
func WithHighlightOptions(opts ...highlight.Option) Option {
	return func(e *Engine, _ *engineConfig) { e.hlOpts = append(e.hlOpts, opts...) }
}

// New returns an engine with nothing loaded.
func New(opts ...Option) *Engine {
	e := &Engine{expanded: make(map[int]struct{})}
	var cfg engineConfig
	for _, opt := range opts {
		opt(e, &cfg)
	}
	e.cam = camera.NewController(cfg.cameraOpts...)
	e.machine = selection.NewMachine(selection.Hooks{
		Selected:   e.onSelected,
		Deselected: e.onDeselected,
	})
	// Single and double click both go through the machine's transition
	// function; the machine's own toggle rule covers the
	// deselect-if-already-selected path.
	e.clicks = selection.NewClickHandler(e.machine.Select, e.machine.Select, cfg.clickOpts...)
	return e
}

// LoadModel loads the BOM document and scene manifest for a model
// directory. The two fetches run concurrently and merge independently:
// either side failing degrades that side only. The returned error is
// non-nil only when neither side produced anything usable.
func (e *Engine) LoadModel(ctx context.Context, dir string) error {
	defer debug.LogEnterExit("viewer.LoadModel")()
	e.loading = true
	defer func() { e.loading = false }()
	e.resetForLoad()

	var (
		doc    *model.Document
		docErr error
		scn    *scene.Scene
		scnErr error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			docErr = err
			return nil
		}
		doc, docErr = loader.LoadDocumentFromFileWithOptions(
			filepath.Join(dir, loader.DefaultBOMFile),
			loader.ParseOptions{WarningHandler: func(msg string) {
				e.warnings = append(e.warnings, msg)
			}},
		)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			scnErr = err
			return nil
		}
		scn, scnErr = scene.Load(filepath.Join(dir, scene.DefaultManifestFile))
		return nil
	})
	// Goroutines report through their own error slots; Wait never fails.
	_ = g.Wait()

	if docErr != nil {
		e.bomWarning = docErr.Error()
		debug.Log("viewer: BOM load degraded: %v", docErr)
	} else {
		e.doc = doc
		e.tree = assembly.Build(doc.AssemblyTree)
		if e.tree.Root != nil {
			e.expanded[e.tree.Root.Record.ID] = struct{}{}
		}
	}

	if scnErr != nil {
		e.sceneErr = scnErr.Error()
		debug.Log("viewer: scene load failed: %v", scnErr)
	} else {
		e.scn = scn
		e.hl = highlight.NewManager(scn, e.hlOpts...)
		e.cam.JumpTo(camera.FramingPose(scn.Bounds(), camera.DefaultFOV, camera.SceneFactor))
	}

	if docErr != nil && scnErr != nil {
		return fmt.Errorf("loading model %s: bom: %v; scene: %v", dir, docErr, scnErr)
	}
	return nil
}

func (e *Engine) resetForLoad() {
	e.machine.Reset()
	e.clicks.Cancel()
	e.cam.Cancel()
	e.doc = nil
	e.tree = nil
	e.scn = nil
	e.hl = nil
	e.expanded = make(map[int]struct{})
	e.scrollSet = false
	e.bomWarning = ""
	e.sceneErr = ""
	e.warnings = nil
}

// ClickMesh feeds a scene-side click into the debounced selection path.
// With no BOM loaded the click still selects, carrying a fallback record.
// A lone click stays armed until the window passes; the selection lands on
// the next Advance or ResolvePendingClick call after that, so all mutation
// stays on the caller's loop.
func (e *Engine) ClickMesh(meshName string) {
	match := resolve.MeshToRecordOrFallback(meshName, e.records())
	e.clicks.Click(model.SelectedPart{
		Record:   *match.Record,
		MeshName: meshName,
		Source:   model.SourceScene,
	})
	debug.Log("viewer: mesh %q resolved via %s to id=%d", meshName, match.Strategy, match.Record.ID)
}

// ClickEmpty handles a click that hit no mesh: any armed click is dropped
// and the selection clears.
func (e *Engine) ClickEmpty() {
	e.clicks.Cancel()
	e.machine.Deselect()
}

// SelectRecord applies a tree-side selection by record id. Unknown ids are
// ignored.
func (e *Engine) SelectRecord(id int) {
	if e.tree == nil {
		return
	}
	node := e.tree.NodeByID(id)
	if node == nil {
		return
	}
	e.machine.Select(model.SelectedPart{
		Record: *node.Record,
		Source: model.SourceTree,
	})
}

// Deselect clears the selection from any state.
func (e *Engine) Deselect() {
	e.machine.Deselect()
}

// Selection returns the current selection, if any.
func (e *Engine) Selection() (model.SelectedPart, bool) {
	return e.machine.Current()
}

func (e *Engine) onSelected(p model.SelectedPart) {
	e.expandAncestors(p.Record.ID)
	if e.tree != nil && e.tree.NodeByID(p.Record.ID) != nil {
		e.scrollTarget = p.Record.ID
		e.scrollSet = true
	}

	if e.scn != nil && e.hl != nil {
		mesh := p.MeshName
		if mesh == "" {
			mesh, _, _ = resolve.RecordToMesh(&p.Record, e.scn.MeshNames())
		}
		if mesh != "" {
			e.hl.Apply(mesh)
			if m, ok := e.scn.MeshByName(mesh); ok {
				e.cam.FramePart(m.Bounds)
			}
		} else {
			e.hl.Reset()
		}
	}

	if e.onEvent != nil {
		ev := p.Event()
		e.onEvent(&ev)
	}
}

func (e *Engine) onDeselected() {
	if e.hl != nil {
		e.hl.Reset()
	}
	if e.onEvent != nil {
		e.onEvent(nil)
	}
}

// expandAncestors unions the selected node's ancestor chain into the
// expanded set. Expansion from selection never collapses anything.
func (e *Engine) expandAncestors(id int) {
	if e.tree == nil {
		return
	}
	for _, aid := range e.tree.AncestorIDs(id) {
		e.expanded[aid] = struct{}{}
	}
}

// IsExpanded reports whether a node id is in the expanded set.
func (e *Engine) IsExpanded(id int) bool {
	_, ok := e.expanded[id]
	return ok
}

// SetExpanded records a manual expand or collapse from the tree pane.
func (e *Engine) SetExpanded(id int, expanded bool) {
	if expanded {
		e.expanded[id] = struct{}{}
	} else {
		delete(e.expanded, id)
	}
}

// TakeScrollTarget returns the node id the tree pane should scroll into
// view, at most once per selection. The pane calls this after its next
// layout pass.
func (e *Engine) TakeScrollTarget() (int, bool) {
	if !e.scrollSet {
		return 0, false
	}
	e.scrollSet = false
	return e.scrollTarget, true
}

// ResolvePendingClick fires the single-click path for an armed click whose
// window has expired, and reports whether it fired.
func (e *Engine) ResolvePendingClick() bool {
	return e.clicks.Flush()
}

// Advance steps the camera animation by the frame's elapsed time and
// resolves any expired click. It reports whether more frames are needed,
// either for the animation or for a click still inside its window.
func (e *Engine) Advance(dt time.Duration) bool {
	e.clicks.Flush()
	return e.cam.Advance(dt) || e.clicks.Armed()
}

// Camera exposes the camera controller for the render layer.
func (e *Engine) Camera() *camera.Controller { return e.cam }

// Tree returns the current assembly tree, nil when the BOM side failed.
func (e *Engine) Tree() *assembly.Tree { return e.tree }

// Document returns the loaded BOM document, nil when the BOM side failed.
func (e *Engine) Document() *model.Document { return e.doc }

// Scene returns the loaded scene, nil when the scene side failed.
func (e *Engine) Scene() *scene.Scene { return e.scn }

// Highlight exposes the highlight manager, nil when the scene side failed.
func (e *Engine) Highlight() *highlight.Manager { return e.hl }

// IsLoading reports whether a LoadModel call is in progress.
func (e *Engine) IsLoading() bool { return e.loading }

// BOMWarning returns the warning banner text when the BOM side degraded.
func (e *Engine) BOMWarning() string { return e.bomWarning }

// SceneError returns the error state text when the scene side failed.
func (e *Engine) SceneError() string { return e.sceneErr }

// Warnings returns per-record warnings from the last BOM parse.
func (e *Engine) Warnings() []string { return e.warnings }

// Shutdown drops any armed click. Safe to call more than once.
func (e *Engine) Shutdown() {
	e.clicks.Cancel()
}

func (e *Engine) records() []*model.PartRecord {
	if e.tree == nil {
		return nil
	}
	return e.tree.Records()
}
