// Package geom holds the 2D vector and rectangle math shared by the board,
// the viewport and the interaction engine.
package geom

import "math"

// Vec2 is a point or an offset.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

func (v Vec2) Div(f float64) Vec2 {
	return Vec2{v.X / f, v.Y / f}
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec2) Vec2 {
	return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec2) Vec2 {
	return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

// Snap rounds each component to the nearest multiple of step.
// A non-positive step returns v unchanged.
func Snap(v Vec2, step float64) Vec2 {
	if step <= 0 {
		return v
	}
	return Vec2{math.Round(v.X/step) * step, math.Round(v.Y/step) * step}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
// Y grows downward.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromPoints returns the rectangle spanned by two opposite corners in
// any order.
func RectFromPoints(a, b Vec2) Rect {
	lo, hi := Min(a, b), Max(a, b)
	return Rect{X: lo.X, Y: lo.Y, W: hi.X - lo.X, H: hi.Y - lo.Y}
}

func (r Rect) Pos() Vec2  { return Vec2{r.X, r.Y} }
func (r Rect) Size() Vec2 { return Vec2{r.W, r.H} }
func (r Rect) Min() Vec2  { return Vec2{r.X, r.Y} }
func (r Rect) Max() Vec2  { return Vec2{r.X + r.W, r.Y + r.H} }

func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Overlaps reports whether r and o share any interior area. Rectangles that
// only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return o.X+o.W > r.X && o.X < r.X+r.W && o.Y+o.H > r.Y && o.Y < r.Y+r.H
}

// Translate returns r moved by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromPoints(Min(r.Min(), o.Min()), Max(r.Max(), o.Max()))
}

// Inset shrinks r by d on every side (grows it when d is negative).
func (r Rect) Inset(d float64) Rect {
	return Rect{r.X + d, r.Y + d, r.W - 2*d, r.H - 2*d}
}
