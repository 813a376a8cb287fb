package board

import "pinboard/internal/geom"

// Kind discriminates the two node variants on a board.
type Kind int

const (
	KindObject   Kind = iota // leaf referencing an external asset
	KindCategory             // colored container
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindCategory:
		return "category"
	default:
		return "unknown"
	}
}

// ExternalRef is an opaque handle to an asset the board does not own.
type ExternalRef string

// Positioned is anything with a top-left position in world units.
type Positioned interface {
	Position() geom.Vec2
	MoveTo(p geom.Vec2)
	MoveBy(d geom.Vec2)
}

// Sized is anything with a width and height in world units.
type Sized interface {
	Size() geom.Vec2
	SetSize(w, h float64)
}

// Titled is anything carrying a display title.
type Titled interface {
	Title() string
	SetTitle(title string)
}

// Node is a board element. Variant-specific behaviour is reached through
// AsObject / AsCategory rather than type assertions.
type Node interface {
	Positioned
	Sized
	Titled
	Kind() Kind
	Bounds() geom.Rect
	AsObject() (*ObjectNode, bool)
	AsCategory() (*CategoryNode, bool)
}

type base struct {
	title string
	rect  geom.Rect
}

func (b *base) Title() string         { return b.title }
func (b *base) SetTitle(title string) { b.title = title }
func (b *base) Bounds() geom.Rect     { return b.rect }
func (b *base) Position() geom.Vec2   { return b.rect.Pos() }
func (b *base) Size() geom.Vec2       { return b.rect.Size() }

func (b *base) MoveTo(p geom.Vec2) {
	b.rect.X, b.rect.Y = p.X, p.Y
}

func (b *base) MoveBy(d geom.Vec2) {
	b.rect = b.rect.Translate(d)
}

func (b *base) SetSize(w, h float64) {
	b.rect.W, b.rect.H = w, h
}

// ObjectNode references an external asset. Its category membership is a
// cache derived from geometry by Board.RecomputeMembership.
type ObjectNode struct {
	base
	ref         ExternalRef
	categoryID  int
	hasCategory bool
}

func (o *ObjectNode) Kind() Kind                        { return KindObject }
func (o *ObjectNode) AsObject() (*ObjectNode, bool)     { return o, true }
func (o *ObjectNode) AsCategory() (*CategoryNode, bool) { return nil, false }

// Ref returns the external asset this node points at.
func (o *ObjectNode) Ref() ExternalRef { return o.ref }

// SetRef repoints the node, as when a board moves and its relative
// references are rebased.
func (o *ObjectNode) SetRef(ref ExternalRef) { o.ref = ref }

// CategoryID returns the derived owning category, if any.
func (o *ObjectNode) CategoryID() (int, bool) {
	return o.categoryID, o.hasCategory
}

func (o *ObjectNode) setCategory(id int, ok bool) {
	if !ok {
		id = 0
	}
	o.categoryID, o.hasCategory = id, ok
}

// CategoryNode is a colored container. Its title band is drawn above
// Bounds().Y and is not part of the containment area.
type CategoryNode struct {
	base
	id    int
	color RGBA
}

func (c *CategoryNode) Kind() Kind                        { return KindCategory }
func (c *CategoryNode) AsObject() (*ObjectNode, bool)     { return nil, false }
func (c *CategoryNode) AsCategory() (*CategoryNode, bool) { return c, true }

// ID returns the category id, unique among live categories.
func (c *CategoryNode) ID() int { return c.id }

func (c *CategoryNode) Color() RGBA         { return c.color }
func (c *CategoryNode) SetColor(color RGBA) { c.color = color }

// TitleBand returns the header strip rendered above the category body.
func (c *CategoryNode) TitleBand() geom.Rect {
	return geom.R(c.rect.X, c.rect.Y-TitleBandHeight, c.rect.W, TitleBandHeight)
}
