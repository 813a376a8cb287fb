package interact

import (
	"log/slog"

	"pinboard/internal/board"
	"pinboard/internal/geom"
)

// cornerMargin keeps the edge zones clear of the corners.
const cornerMargin = 20.0

type resizeSession struct {
	target *board.CategoryNode
	axis   Axis
}

// ResizeTarget returns the category being resized and the active axes.
func (e *Engine) ResizeTarget() (*board.CategoryNode, Axis, bool) {
	if e.mode != ModeResizing || e.resize == nil {
		return nil, 0, false
	}
	return e.resize.target, e.resize.axis, true
}

type zone struct {
	rect geom.Rect
	axis Axis
}

// resizeZones returns the corner, bottom and right handles of c for a
// handle thickness h, in that priority order.
func resizeZones(c *board.CategoryNode, h float64) [3]zone {
	r := c.Bounds()
	br := r.Max()
	return [3]zone{
		{geom.R(br.X-h, br.Y-h, 2*h, 2*h), AxisBoth},
		{geom.R(r.X+cornerMargin, br.Y-h, r.W-2*cornerMargin, h), AxisVertical},
		{geom.R(br.X-h, r.Y+cornerMargin, h, r.H-2*cornerMargin), AxisHorizontal},
	}
}

// ResizeZoneAt reports which handle, if any, lies under a world point.
// Later categories are checked first.
func (e *Engine) ResizeZoneAt(world geom.Vec2) (*board.CategoryNode, Axis, bool) {
	h := e.view.HandleSize()
	cats := e.board.Categories()
	for i := len(cats) - 1; i >= 0; i-- {
		for _, z := range resizeZones(cats[i], h) {
			if z.rect.Contains(world) {
				return cats[i], z.axis, true
			}
		}
	}
	return nil, 0, false
}

func (e *Engine) beginResize(world geom.Vec2) bool {
	c, axis, ok := e.ResizeZoneAt(world)
	if !ok {
		return false
	}
	e.resize = &resizeSession{target: c, axis: axis}
	e.log.Debug("resize start", slog.Int("category", c.ID()), slog.String("axis", axis.String()))
	e.setMode(ModeResizing)
	return true
}

// resizeTo sizes the target from its fixed top-left corner to the world
// pointer and rederives membership.
func (e *Engine) resizeTo(world geom.Vec2) {
	s := e.resize
	if s == nil {
		return
	}
	size := s.target.Size()
	pos := s.target.Position()
	if s.axis&AxisHorizontal != 0 {
		size.X = world.X - pos.X
	}
	if s.axis&AxisVertical != 0 {
		size.Y = world.Y - pos.Y
	}
	board.SetCategorySize(s.target, size.X, size.Y)
	e.board.RecomputeMembership()
}

func (e *Engine) finishResize() {
	e.resize = nil
}
