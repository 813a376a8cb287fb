// Package viewport maps between screen pixels and world coordinates under
// pan and zoom.
package viewport

import (
	"math"

	"pinboard/internal/geom"
)

const (
	MinZoom = 0.5
	MaxZoom = 2.0

	minHandle   = 10.0
	handleScale = 20.0
)

// Viewport is the pan/zoom transform. Origin is the world point shown at
// ScreenOrigin.
type Viewport struct {
	zoom         float64
	origin       geom.Vec2
	screenOrigin geom.Vec2
}

// New returns a viewport at zoom 1 with the world origin at the screen
// origin.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

func (v *Viewport) Zoom() float64 { return v.zoom }

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom]. The origin is left
// untouched.
func (v *Viewport) SetZoom(z float64) {
	v.zoom = clamp(z, MinZoom, MaxZoom)
}

func (v *Viewport) Origin() geom.Vec2     { return v.origin }
func (v *Viewport) SetOrigin(o geom.Vec2) { v.origin = o }

// ScreenOrigin is the screen point at which the board area starts.
func (v *Viewport) ScreenOrigin() geom.Vec2     { return v.screenOrigin }
func (v *Viewport) SetScreenOrigin(p geom.Vec2) { v.screenOrigin = p }

func (v *Viewport) ScreenToWorld(p geom.Vec2) geom.Vec2 {
	return p.Sub(v.screenOrigin).Div(v.zoom).Add(v.origin)
}

func (v *Viewport) WorldToScreen(p geom.Vec2) geom.Vec2 {
	return p.Sub(v.origin).Scale(v.zoom).Add(v.screenOrigin)
}

// RectToScreen maps a world rectangle to screen space.
func (v *Viewport) RectToScreen(r geom.Rect) geom.Rect {
	p := v.WorldToScreen(r.Pos())
	return geom.R(p.X, p.Y, r.W*v.zoom, r.H*v.zoom)
}

// RectToWorld maps a screen rectangle to world space.
func (v *Viewport) RectToWorld(r geom.Rect) geom.Rect {
	p := v.ScreenToWorld(r.Pos())
	return geom.R(p.X, p.Y, r.W/v.zoom, r.H/v.zoom)
}

// ApplyZoomDelta changes the zoom by delta while keeping the world point
// under pivot fixed on screen.
func (v *Viewport) ApplyZoomDelta(delta float64, pivot geom.Vec2) {
	before := v.ScreenToWorld(pivot)
	v.SetZoom(v.zoom + delta)
	v.origin = before.Sub(pivot.Sub(v.screenOrigin).Div(v.zoom))
}

// Pan scrolls the view by a screen-space delta; content follows the
// pointer.
func (v *Viewport) Pan(deltaScreen geom.Vec2) {
	v.origin = v.origin.Sub(deltaScreen.Div(v.zoom))
}

// Reset restores zoom 1 and the world origin.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.origin = geom.Vec2{}
}

// HandleSize is the thickness, in world units, of category resize zones.
// It grows as the view zooms out.
func (v *Viewport) HandleSize() float64 {
	return math.Max(minHandle, handleScale*(MaxZoom-v.zoom))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
