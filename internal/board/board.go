// Package board holds the node model of a pinboard: object nodes that point
// at external assets, colored category containers, and the spatial queries
// and containment pass that relate them.
package board

import (
	"fmt"
	"math"

	"pinboard/internal/geom"
)

const (
	// MinNodeSize is the smallest width or height any node may have.
	MinNodeSize = 50.0

	DefaultCategoryTitle  = "New Category"
	DefaultCategoryWidth  = 200.0
	DefaultCategoryHeight = 300.0

	// ObjectPadding is added to the measured title width of an object node.
	ObjectPadding = 20.0
	ObjectHeight  = 50.0

	// TitleBandHeight is the height of the header drawn above a category.
	TitleBandHeight = 32.0
)

// TitleMeasurer reports the rendered width of a title in world units.
type TitleMeasurer interface {
	MeasureTitle(title string) float64
}

// MeasureFunc adapts a function to TitleMeasurer.
type MeasureFunc func(title string) float64

func (f MeasureFunc) MeasureTitle(title string) float64 { return f(title) }

// RuneMeasurer measures titles as a fixed advance per rune. It is the
// fallback when no font is available.
type RuneMeasurer float64

func (m RuneMeasurer) MeasureTitle(title string) float64 {
	return float64(len([]rune(title))) * float64(m)
}

// Option configures a Board.
type Option func(*Board)

// WithMeasurer sets the measurer used to size new object nodes.
func WithMeasurer(m TitleMeasurer) Option {
	return func(b *Board) {
		if m != nil {
			b.measure = m
		}
	}
}

// WithDefaultColor sets the color given to newly created categories.
func WithDefaultColor(c RGBA) Option {
	return func(b *Board) { b.defaultColor = c }
}

// Board owns every node in insertion order. Categories are additionally
// reachable by id.
type Board struct {
	nodes        []Node
	categories   map[int]*CategoryNode
	measure      TitleMeasurer
	defaultColor RGBA
}

// New returns an empty board.
func New(opts ...Option) *Board {
	b := &Board{
		categories:   make(map[int]*CategoryNode),
		measure:      RuneMeasurer(7),
		defaultColor: White,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Nodes returns every node in insertion order. The slice must not be
// modified.
func (b *Board) Nodes() []Node { return b.nodes }

// Len returns the number of nodes on the board.
func (b *Board) Len() int { return len(b.nodes) }

// Categories returns the category nodes in insertion order.
func (b *Board) Categories() []*CategoryNode {
	out := make([]*CategoryNode, 0, len(b.categories))
	for _, n := range b.nodes {
		if c, ok := n.AsCategory(); ok {
			out = append(out, c)
		}
	}
	return out
}

// Objects returns the object nodes in insertion order.
func (b *Board) Objects() []*ObjectNode {
	out := make([]*ObjectNode, 0, len(b.nodes)-len(b.categories))
	for _, n := range b.nodes {
		if o, ok := n.AsObject(); ok {
			out = append(out, o)
		}
	}
	return out
}

// Category looks up a live category by id.
func (b *Board) Category(id int) (*CategoryNode, bool) {
	c, ok := b.categories[id]
	return c, ok
}

func (b *Board) nextCategoryID() int {
	id := 0
	for {
		if _, used := b.categories[id]; !used {
			return id
		}
		id++
	}
}

// CreateCategory adds a default-sized category at origin using the
// smallest id not held by a live category.
func (b *Board) CreateCategory(origin geom.Vec2) *CategoryNode {
	c := &CategoryNode{
		base: base{
			title: DefaultCategoryTitle,
			rect:  geom.R(origin.X, origin.Y, DefaultCategoryWidth, DefaultCategoryHeight),
		},
		id:    b.nextCategoryID(),
		color: b.defaultColor,
	}
	b.insertCategory(c)
	return c
}

// AddCategory inserts a category with an explicit id, as when loading a
// saved board.
func (b *Board) AddCategory(id int, title string, rect geom.Rect, color RGBA) (*CategoryNode, error) {
	if id < 0 {
		return nil, fmt.Errorf("board: negative category id %d", id)
	}
	if _, dup := b.categories[id]; dup {
		return nil, fmt.Errorf("board: duplicate category id %d", id)
	}
	c := &CategoryNode{
		base:  base{title: title, rect: clampSize(rect)},
		id:    id,
		color: color,
	}
	b.insertCategory(c)
	return c, nil
}

func (b *Board) insertCategory(c *CategoryNode) {
	b.nodes = append(b.nodes, c)
	b.categories[c.id] = c
}

// CreateObjectNode adds an object node for ref with its top-left corner at
// origin. The node is as wide as its measured title plus padding.
func (b *Board) CreateObjectNode(ref ExternalRef, title string, origin geom.Vec2) *ObjectNode {
	w := math.Max(MinNodeSize, b.measure.MeasureTitle(title)+ObjectPadding)
	return b.AddObject(ref, title, geom.R(origin.X, origin.Y, w, ObjectHeight))
}

// AddObject inserts an object node with explicit geometry.
func (b *Board) AddObject(ref ExternalRef, title string, rect geom.Rect) *ObjectNode {
	o := &ObjectNode{
		base: base{title: title, rect: clampSize(rect)},
		ref:  ref,
	}
	b.nodes = append(b.nodes, o)
	return o
}

// RemoveSelected deletes every node in sel. Members of a removed category
// are kept; their membership clears on the next containment pass.
func (b *Board) RemoveSelected(sel NodeSet) int {
	if len(sel) == 0 {
		return 0
	}
	kept := b.nodes[:0]
	removed := 0
	for _, n := range b.nodes {
		if !sel.Has(n) {
			kept = append(kept, n)
			continue
		}
		if c, ok := n.AsCategory(); ok {
			delete(b.categories, c.id)
		}
		removed++
	}
	for i := len(kept); i < len(b.nodes); i++ {
		b.nodes[i] = nil
	}
	b.nodes = kept
	return removed
}

// Clear removes every node.
func (b *Board) Clear() {
	b.nodes = nil
	b.categories = make(map[int]*CategoryNode)
}

// Contains reports whether n is a live node of this board.
func (b *Board) Contains(n Node) bool {
	for _, m := range b.nodes {
		if m == n {
			return true
		}
	}
	return false
}

// SetCategorySize resizes c, flooring each dimension at MinNodeSize.
func SetCategorySize(c *CategoryNode, w, h float64) {
	c.SetSize(math.Max(MinNodeSize, w), math.Max(MinNodeSize, h))
}

func clampSize(r geom.Rect) geom.Rect {
	r.W = math.Max(MinNodeSize, r.W)
	r.H = math.Max(MinNodeSize, r.H)
	return r
}
