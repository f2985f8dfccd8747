package selection

import (
	"time"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/debug"
	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/model"
)

// DefaultClickWindow is how long a first click stays armed waiting for a
// possible second click on the same target.
const DefaultClickWindow = 350 * time.Millisecond

// ClickHandler disambiguates single from double clicks. A first click arms
// the handler with the hit target and a deadline. A second click on the
// same target inside the window fires the double-click path; a click on a
// different target fires the single-click path for the new target; Flush
// fires the single-click path once the deadline has passed.
//
// The handler never spawns a timer goroutine. The caller schedules its own
// wakeup for the deadline (the viewer uses its frame tick) and calls Flush
// from the same loop that feeds Click, so every callback runs synchronously
// inside an event handler. Like Machine, the handler is not safe for
// concurrent use.
type ClickHandler struct {
	window time.Duration
	single func(model.SelectedPart)
	double func(model.SelectedPart)
	now    func() time.Time

	target   *model.SelectedPart
	deadline time.Time
}

// ClickOption configures a ClickHandler.
type ClickOption func(*ClickHandler)

// WithClickWindow overrides the double-click window. Values at or below
// zero keep the default.
func WithClickWindow(d time.Duration) ClickOption {
	return func(h *ClickHandler) {
		if d > 0 {
			h.window = d
		}
	}
}

// NewClickHandler returns a handler that routes clicks to single or double
// after disambiguation. Either callback may be nil.
func NewClickHandler(single, double func(model.SelectedPart), opts ...ClickOption) *ClickHandler {
	h := &ClickHandler{
		window: DefaultClickWindow,
		single: single,
		double: double,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Click feeds one click on a resolvable target into the handler.
func (h *ClickHandler) Click(part model.SelectedPart) {
	now := h.now()
	if h.target != nil {
		if now.After(h.deadline) {
			// The window lapsed before the caller flushed; resolve the
			// stale click as a single, then treat this one as fresh.
			h.fireSingle()
		} else {
			armed := *h.target
			h.disarm()
			if sameTarget(armed, part) {
				debug.Log("click: double on id=%d mesh=%q", part.Record.ID, part.MeshName)
				if h.double != nil {
					h.double(part)
				}
				return
			}
			// A different target resolves the pending click as a plain
			// select of the new target.
			debug.Log("click: retarget id=%d -> id=%d", armed.Record.ID, part.Record.ID)
			if h.single != nil {
				h.single(part)
			}
			return
		}
	}

	h.target = &part
	h.deadline = now.Add(h.window)
}

// Flush fires the single-click path for an armed click whose window has
// passed, and reports whether it fired. Callers poll it from the loop that
// feeds Click; before the deadline it is a no-op.
func (h *ClickHandler) Flush() bool {
	if h.target == nil || h.now().Before(h.deadline) {
		return false
	}
	h.fireSingle()
	return true
}

// Cancel clears any armed click without firing either path. Called on
// teardown and on model switch.
func (h *ClickHandler) Cancel() {
	h.disarm()
}

// Armed reports whether a click is waiting on the window.
func (h *ClickHandler) Armed() bool {
	return h.target != nil
}

// Window returns the disambiguation window, for callers scheduling their
// Flush wakeup.
func (h *ClickHandler) Window() time.Duration {
	return h.window
}

func (h *ClickHandler) fireSingle() {
	armed := *h.target
	h.disarm()
	debug.Log("click: single on id=%d mesh=%q", armed.Record.ID, armed.MeshName)
	if h.single != nil {
		h.single(armed)
	}
}

func (h *ClickHandler) disarm() {
	h.target = nil
	h.deadline = time.Time{}
}
