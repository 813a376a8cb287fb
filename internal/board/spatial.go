package board

import "pinboard/internal/geom"

// HitTest returns the topmost node containing p. Object nodes win over
// categories; within a tier the last-inserted match wins. It returns nil
// when nothing is hit.
func (b *Board) HitTest(p geom.Vec2) Node {
	if n := b.lastContaining(KindObject, p); n != nil {
		return n
	}
	return b.lastContaining(KindCategory, p)
}

func (b *Board) lastContaining(k Kind, p geom.Vec2) Node {
	for i := len(b.nodes) - 1; i >= 0; i-- {
		n := b.nodes[i]
		if n.Kind() == k && n.Bounds().Contains(p) {
			return n
		}
	}
	return nil
}

// RectTest returns every object node overlapping r, or, when no object
// overlaps, every category overlapping r.
func (b *Board) RectTest(r geom.Rect) NodeSet {
	if hits := b.overlapping(KindObject, r); len(hits) > 0 {
		return hits
	}
	return b.overlapping(KindCategory, r)
}

func (b *Board) overlapping(k Kind, r geom.Rect) NodeSet {
	hits := make(NodeSet)
	for _, n := range b.nodes {
		if n.Kind() == k && n.Bounds().Overlaps(r) {
			hits.Add(n)
		}
	}
	return hits
}

// TitleBandAt returns the topmost category whose title band contains p.
func (b *Board) TitleBandAt(p geom.Vec2) (*CategoryNode, bool) {
	for i := len(b.nodes) - 1; i >= 0; i-- {
		if c, ok := b.nodes[i].AsCategory(); ok && c.TitleBand().Contains(p) {
			return c, true
		}
	}
	return nil, false
}
