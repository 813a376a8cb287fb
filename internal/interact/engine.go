// Package interact turns pointer input into board mutations: click and
// rubber-band selection, dragging with container propagation, category
// resizing, and pan/zoom.
package interact

import (
	"io"
	"log/slog"

	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/viewport"
)

// SelectionSink receives the external references of the selected object
// nodes every time the selection changes. The slice may be empty.
type SelectionSink interface {
	SelectionChanged(refs []board.ExternalRef)
}

// SinkFunc adapts a function to SelectionSink.
type SinkFunc func(refs []board.ExternalRef)

func (f SinkFunc) SelectionChanged(refs []board.ExternalRef) { f(refs) }

// NameResolver derives a node title from an external reference.
type NameResolver interface {
	DisplayName(ref board.ExternalRef) string
}

type refName struct{}

func (refName) DisplayName(ref board.ExternalRef) string { return string(ref) }

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithSink(s SelectionSink) Option {
	return func(e *Engine) { e.sink = s }
}

func WithResolver(r NameResolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.names = r
		}
	}
}

// WithGridSnap rounds dragged node positions to multiples of step. A
// non-positive step disables snapping.
func WithGridSnap(step float64) Option {
	return func(e *Engine) { e.gridStep = step }
}

// Engine owns the interaction state machines. It is driven synchronously
// from one goroutine and is not safe for concurrent use.
type Engine struct {
	board *board.Board
	view  *viewport.Viewport
	log   *slog.Logger
	sink  SelectionSink
	names NameResolver

	gridStep float64

	mode      Mode
	selection board.NodeSet
	last      geom.Vec2

	band   band
	drag   *dragSession
	resize *resizeSession
}

// New returns an idle engine over b and v.
func New(b *board.Board, v *viewport.Viewport, opts ...Option) *Engine {
	e := &Engine{
		board:     b,
		view:      v,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		names:     refName{},
		selection: make(board.NodeSet),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Board() *board.Board          { return e.board }
func (e *Engine) View() *viewport.Viewport     { return e.view }
func (e *Engine) Mode() Mode                   { return e.mode }
func (e *Engine) GridStep() float64            { return e.gridStep }
func (e *Engine) SetGridStep(step float64)     { e.gridStep = step }
func (e *Engine) Selection() board.NodeSet     { return e.selection }
func (e *Engine) Selected() []board.Node       { return e.selection.Ordered(e.board) }
func (e *Engine) IsSelected(n board.Node) bool { return e.selection.Has(n) }

// PointerWorld returns the world position of the last pointer event.
func (e *Engine) PointerWorld() geom.Vec2 {
	return e.view.ScreenToWorld(e.last)
}

// HitAt returns the topmost node under a screen point, or nil.
func (e *Engine) HitAt(screen geom.Vec2) board.Node {
	return e.board.HitTest(e.view.ScreenToWorld(screen))
}

func (e *Engine) setMode(m Mode) {
	if e.mode == m {
		return
	}
	e.log.Debug("interaction mode", slog.String("from", e.mode.String()), slog.String("to", m.String()))
	e.mode = m
}

// PointerDown starts an interaction. It is ignored while another
// interaction is in progress.
func (e *Engine) PointerDown(ev PointerEvent) {
	if e.mode != ModeIdle {
		return
	}
	e.last = ev.Pos

	switch {
	case ev.Button == ButtonMiddle, ev.Button == ButtonPrimary && ev.Mods.Has(ModAlt):
		e.setMode(ModePanning)
	case ev.Button == ButtonPrimary:
		world := e.view.ScreenToWorld(ev.Pos)
		if e.beginResize(world) {
			return
		}
		e.press(world)
	}
}

// PointerMove advances the active interaction by the motion since the
// previous pointer event.
func (e *Engine) PointerMove(ev PointerEvent) {
	delta := ev.Pos.Sub(e.last)
	e.last = ev.Pos

	switch e.mode {
	case ModePanning:
		e.view.Pan(delta)
	case ModeRubberBand:
		e.band.current = e.view.ScreenToWorld(ev.Pos)
	case ModeDragging:
		e.dragBy(delta)
	case ModeResizing:
		e.resizeTo(e.view.ScreenToWorld(ev.Pos))
	}
}

// PointerUp finishes the active interaction. Every mode returns to idle.
func (e *Engine) PointerUp(ev PointerEvent) {
	if ev.Pos != e.last {
		e.PointerMove(ev)
	}

	switch e.mode {
	case ModeRubberBand:
		e.finishBand()
	case ModeDragging:
		e.finishDrag()
	case ModeResizing:
		e.finishResize()
	}
	e.setMode(ModeIdle)
}

// Scroll zooms by delta around a screen pivot. Zooming is disabled while a
// category is being resized.
func (e *Engine) Scroll(delta float64, pivot geom.Vec2) {
	if e.mode == ModeResizing {
		return
	}
	e.view.ApplyZoomDelta(delta, pivot)
	e.log.Debug("zoom", slog.Float64("zoom", e.view.Zoom()))
}

// Pan scrolls the view by a screen delta outside of a pointer drag.
func (e *Engine) Pan(delta geom.Vec2) {
	e.view.Pan(delta)
}

// CreateCategoryAt adds a new category whose top-left corner is at the
// given screen point.
func (e *Engine) CreateCategoryAt(screen geom.Vec2) *board.CategoryNode {
	pos := geom.Snap(e.view.ScreenToWorld(screen), e.gridStep)
	c := e.board.CreateCategory(pos)
	e.board.RecomputeMembership()
	e.log.Debug("category created", slog.Int("id", c.ID()))
	return c
}

// Drop creates one object node per reference at a screen point. Later
// references are stacked below the first.
func (e *Engine) Drop(refs []board.ExternalRef, screen geom.Vec2) []*board.ObjectNode {
	if len(refs) == 0 {
		return nil
	}
	pos := e.view.ScreenToWorld(screen)
	out := make([]*board.ObjectNode, 0, len(refs))
	for i, ref := range refs {
		at := pos.Add(geom.V(0, float64(i)*board.ObjectHeight))
		out = append(out, e.board.CreateObjectNode(ref, e.names.DisplayName(ref), at))
	}
	e.board.RecomputeMembership()
	e.log.Debug("assets dropped", slog.Int("count", len(out)))
	return out
}

// DeleteSelection removes the selected nodes. It does nothing while an
// interaction is in progress.
func (e *Engine) DeleteSelection() int {
	if e.mode != ModeIdle || len(e.selection) == 0 {
		return 0
	}
	n := e.board.RemoveSelected(e.selection)
	e.board.RecomputeMembership()
	e.log.Debug("nodes deleted", slog.Int("count", n))
	e.setSelection(make(board.NodeSet))
	return n
}

// ResetInteractionState drops every in-flight interaction and the
// selection. It is safe to call at any time.
func (e *Engine) ResetInteractionState() {
	// Nodes move live during a drag, so membership must catch up before
	// the session is dropped.
	if e.drag != nil || e.resize != nil {
		e.board.RecomputeMembership()
	}
	e.drag = nil
	e.resize = nil
	e.band = band{}
	e.setMode(ModeIdle)
	if len(e.selection) > 0 {
		e.setSelection(make(board.NodeSet))
	}
}

// SetResolver changes how dropped references are named.
func (e *Engine) SetResolver(r NameResolver) {
	if r != nil {
		e.names = r
	}
}

// SetBoard replaces the board wholesale, as after a load.
func (e *Engine) SetBoard(b *board.Board) {
	e.ResetInteractionState()
	e.board = b
	e.board.RecomputeMembership()
}
