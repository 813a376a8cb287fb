package interact

import (
	"log/slog"

	"pinboard/internal/board"
	"pinboard/internal/geom"
)

// band is the rubber-band rectangle, anchored in world space.
type band struct {
	anchor, current geom.Vec2
}

func (b band) rect() geom.Rect {
	return geom.RectFromPoints(b.anchor, b.current)
}

// RubberBand returns the rectangle being dragged out, if any.
func (e *Engine) RubberBand() (geom.Rect, bool) {
	if e.mode != ModeRubberBand {
		return geom.Rect{}, false
	}
	return e.band.rect(), true
}

// press handles a primary press that did not land on a resize zone.
func (e *Engine) press(world geom.Vec2) {
	hit := e.board.HitTest(world)
	if hit == nil {
		if len(e.selection) > 0 {
			e.setSelection(make(board.NodeSet))
		}
		e.band = band{anchor: world, current: world}
		e.setMode(ModeRubberBand)
		return
	}
	if !e.selection.Has(hit) {
		e.setSelection(board.NewNodeSet(hit))
	}
	e.beginDrag()
}

func (e *Engine) finishBand() {
	r := e.band.rect()
	e.band = band{}
	e.setSelection(e.board.RectTest(r))
}

// Select replaces the selection.
func (e *Engine) Select(nodes ...board.Node) {
	e.setSelection(board.NewNodeSet(nodes...))
}

// SelectAll selects every node using the same object-first rule as the
// rubber band.
func (e *Engine) SelectAll() {
	sel := make(board.NodeSet)
	for _, o := range e.board.Objects() {
		sel.Add(o)
	}
	if len(sel) == 0 {
		for _, c := range e.board.Categories() {
			sel.Add(c)
		}
	}
	e.setSelection(sel)
}

func (e *Engine) setSelection(sel board.NodeSet) {
	e.selection = sel
	refs := sel.Refs(e.board)
	e.log.Debug("selection changed", slog.Int("nodes", len(sel)), slog.Int("refs", len(refs)))
	if e.sink != nil {
		e.sink.SelectionChanged(refs)
	}
}
