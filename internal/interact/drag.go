package interact

import (
	"pinboard/internal/board"
	"pinboard/internal/geom"
)

type dragTarget struct {
	node  board.Node
	start geom.Vec2
	// followers are category members captured when the drag began.
	followers []follower
}

type follower struct {
	node  board.Node
	start geom.Vec2
}

// dragSession accumulates the world-space offset of a drag so that grid
// snapping does not drift.
type dragSession struct {
	targets []dragTarget
	total   geom.Vec2
}

func (e *Engine) beginDrag() {
	e.board.RecomputeMembership()

	s := &dragSession{}
	for _, n := range e.selection.Ordered(e.board) {
		t := dragTarget{node: n, start: n.Position()}
		if c, ok := n.AsCategory(); ok {
			for _, m := range e.board.Members(c.ID()) {
				if e.selection.Has(m) {
					continue
				}
				t.followers = append(t.followers, follower{node: m, start: m.Position()})
			}
		}
		s.targets = append(s.targets, t)
	}
	e.drag = s
	e.setMode(ModeDragging)
}

// dragBy moves the selection by a screen-space delta.
func (e *Engine) dragBy(deltaScreen geom.Vec2) {
	if e.drag == nil {
		return
	}
	e.drag.total = e.drag.total.Add(deltaScreen.Div(e.view.Zoom()))
	for _, t := range e.drag.targets {
		pos := geom.Snap(t.start.Add(e.drag.total), e.gridStep)
		t.node.MoveTo(pos)
		step := pos.Sub(t.start)
		for _, f := range t.followers {
			f.node.MoveTo(f.start.Add(step))
		}
	}
}

func (e *Engine) finishDrag() {
	e.drag = nil
	e.board.RecomputeMembership()
}
