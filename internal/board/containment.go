package board

// RecomputeMembership derives every object's category from geometry. An
// object belongs to a category when their rects overlap; when several
// categories overlap it, the smallest id wins.
func (b *Board) RecomputeMembership() {
	cats := b.Categories()
	for _, o := range b.Objects() {
		best, found := 0, false
		for _, c := range cats {
			if !o.Bounds().Overlaps(c.Bounds()) {
				continue
			}
			if !found || c.id < best {
				best, found = c.id, true
			}
		}
		o.setCategory(best, found)
	}
}

// Members returns the objects currently assigned to category id, in board
// order. It reads the cached membership; call RecomputeMembership first if
// geometry changed.
func (b *Board) Members(id int) []*ObjectNode {
	var out []*ObjectNode
	for _, o := range b.Objects() {
		if cid, ok := o.CategoryID(); ok && cid == id {
			out = append(out, o)
		}
	}
	return out
}
