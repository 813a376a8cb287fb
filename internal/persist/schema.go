// Package persist loads and saves boards. Only the logical schema is
// shared between formats: categories, objects and an optional view. The
// derived category membership of objects is never written.
package persist

import (
	"fmt"

	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/viewport"
)

// Version is the schema version written by this package.
const Version = 1

type RectRecord struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type ColorRecord struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

type CategoryRecord struct {
	ID    int         `yaml:"id"`
	Title string      `yaml:"title"`
	Color ColorRecord `yaml:"color"`
	Rect  RectRecord  `yaml:"rect"`
}

type ObjectRecord struct {
	Title string     `yaml:"title"`
	Ref   string     `yaml:"ref"`
	Rect  RectRecord `yaml:"rect"`
}

// ViewRecord is the saved pan/zoom state.
type ViewRecord struct {
	Zoom    float64 `yaml:"zoom"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
}

// File is a board as stored on disk.
type File struct {
	Version    int              `yaml:"version"`
	View       *ViewRecord      `yaml:"view,omitempty"`
	Categories []CategoryRecord `yaml:"categories"`
	Objects    []ObjectRecord   `yaml:"objects"`
}

func rectRecord(r geom.Rect) RectRecord {
	return RectRecord{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func (r RectRecord) rect() geom.Rect {
	return geom.R(r.X, r.Y, r.W, r.H)
}

func colorRecord(c board.RGBA) ColorRecord {
	return ColorRecord{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c ColorRecord) rgba() board.RGBA {
	return board.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Snapshot captures b, and v when non-nil, in insertion order.
func Snapshot(b *board.Board, v *viewport.Viewport) *File {
	f := &File{Version: Version}
	for _, c := range b.Categories() {
		f.Categories = append(f.Categories, CategoryRecord{
			ID:    c.ID(),
			Title: c.Title(),
			Color: colorRecord(c.Color()),
			Rect:  rectRecord(c.Bounds()),
		})
	}
	for _, o := range b.Objects() {
		f.Objects = append(f.Objects, ObjectRecord{
			Title: o.Title(),
			Ref:   string(o.Ref()),
			Rect:  rectRecord(o.Bounds()),
		})
	}
	if v != nil {
		f.View = &ViewRecord{Zoom: v.Zoom(), OriginX: v.Origin().X, OriginY: v.Origin().Y}
	}
	return f
}

// Board rebuilds a board from f. Categories are inserted before objects and
// membership is derived before returning. Nothing is returned on error.
func (f *File) Board(opts ...board.Option) (*board.Board, error) {
	if f.Version > Version {
		return nil, fmt.Errorf("persist: version %d: %w", f.Version, ErrUnsupportedFormat)
	}
	b := board.New(opts...)
	for _, c := range f.Categories {
		if _, err := b.AddCategory(c.ID, c.Title, c.Rect.rect(), c.Color.rgba()); err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
	}
	for _, o := range f.Objects {
		b.AddObject(board.ExternalRef(o.Ref), o.Title, o.Rect.rect())
	}
	b.RecomputeMembership()
	return b, nil
}

// ApplyView restores the saved view onto v. A file without a view resets v.
func (f *File) ApplyView(v *viewport.Viewport) {
	if f.View == nil {
		v.Reset()
		return
	}
	zoom := f.View.Zoom
	if zoom == 0 {
		zoom = 1
	}
	v.SetZoom(zoom)
	v.SetOrigin(geom.V(f.View.OriginX, f.View.OriginY))
}
