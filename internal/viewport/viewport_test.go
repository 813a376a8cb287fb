package viewport

import (
	"math"
	"math/rand"
	"testing"

	"pinboard/internal/geom"
)

const eps = 1e-9

func near(a, b geom.Vec2) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func randomViewport(r *rand.Rand) *Viewport {
	v := New()
	v.SetZoom(MinZoom + r.Float64()*(MaxZoom-MinZoom))
	v.SetOrigin(geom.V(r.Float64()*2000-1000, r.Float64()*2000-1000))
	v.SetScreenOrigin(geom.V(r.Float64()*50, r.Float64()*50))
	return v
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		v := randomViewport(r)
		p := geom.V(r.Float64()*1600, r.Float64()*900)
		if got := v.WorldToScreen(v.ScreenToWorld(p)); !near(got, p) {
			t.Fatalf("round trip %v -> %v (zoom %v)", p, got, v.Zoom())
		}
	}
}

func TestZoomAnchoring(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		v := randomViewport(r)
		pivot := geom.V(r.Float64()*1600, r.Float64()*900)
		before := v.ScreenToWorld(pivot)
		v.ApplyZoomDelta(r.Float64()*2-1, pivot)
		if after := v.ScreenToWorld(pivot); !near(before, after) {
			t.Fatalf("pivot moved: %v -> %v", before, after)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	v := New()
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v.ApplyZoomDelta(r.Float64()*3-1.5, geom.V(100, 100))
		if z := v.Zoom(); z < MinZoom || z > MaxZoom {
			t.Fatalf("zoom %v out of range", z)
		}
	}
	v.SetZoom(10)
	if v.Zoom() != MaxZoom {
		t.Fatalf("zoom = %v, want %v", v.Zoom(), MaxZoom)
	}
	v.SetZoom(-1)
	if v.Zoom() != MinZoom {
		t.Fatalf("zoom = %v, want %v", v.Zoom(), MinZoom)
	}
}

func TestZoomAtLimitKeepsOrigin(t *testing.T) {
	v := New()
	v.SetZoom(MaxZoom)
	v.SetOrigin(geom.V(30, 40))
	v.ApplyZoomDelta(0.5, geom.V(300, 200))
	if v.Origin() != geom.V(30, 40) {
		t.Fatalf("origin = %v, want unchanged", v.Origin())
	}
}

func TestPan(t *testing.T) {
	v := New()
	v.SetZoom(2)
	v.Pan(geom.V(100, -50))
	if got, want := v.Origin(), geom.V(-50, 25); !near(got, want) {
		t.Fatalf("origin = %v, want %v", got, want)
	}
}

func TestRectToScreen(t *testing.T) {
	v := New()
	v.SetZoom(0.5)
	v.SetOrigin(geom.V(100, 100))
	got := v.RectToScreen(geom.R(200, 300, 100, 40))
	if want := geom.R(50, 100, 50, 20); got != want {
		t.Fatalf("RectToScreen = %+v, want %+v", got, want)
	}
	if back := v.RectToWorld(got); back != geom.R(200, 300, 100, 40) {
		t.Fatalf("RectToWorld = %+v", back)
	}
}

func TestHandleSize(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{0.5, 30},
		{1, 20},
		{1.5, 10},
		{2, 10},
	}
	for _, tt := range tests {
		v := New()
		v.SetZoom(tt.zoom)
		if got := v.HandleSize(); got != tt.want {
			t.Errorf("zoom %v: HandleSize = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestReset(t *testing.T) {
	v := New()
	v.ApplyZoomDelta(0.7, geom.V(10, 10))
	v.Pan(geom.V(40, 40))
	v.Reset()
	if v.Zoom() != 1 || !v.Origin().IsZero() {
		t.Fatalf("reset left zoom %v origin %v", v.Zoom(), v.Origin())
	}
}
