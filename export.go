package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"

	"pinboard/internal/assets"
	"pinboard/internal/board"
	"pinboard/internal/geom"
	"pinboard/internal/viewport"
)

const exportPadding = 40.0

var errNothingToExport = errors.New("nothing to export")

// boardExtent returns the world rectangle covering every node, title bands
// included.
func boardExtent(b *board.Board) (geom.Rect, bool) {
	var ext geom.Rect
	has := false
	add := func(r geom.Rect) {
		if !has {
			ext, has = r, true
			return
		}
		ext = ext.Union(r)
	}
	for _, c := range b.Categories() {
		add(c.Bounds())
		add(c.TitleBand())
	}
	for _, o := range b.Objects() {
		add(o.Bounds())
	}
	return ext, has
}

// exportPNG draws the whole board at zoom 1 to a PNG file.
func exportPNG(path string, b *board.Board, icons *assets.IconProvider) error {
	ext, ok := boardExtent(b)
	if !ok {
		return errNothingToExport
	}
	ext = ext.Inset(-exportPadding)

	dc := gg.NewContext(int(math.Ceil(ext.W)), int(math.Ceil(ext.H)))
	dc.SetColor(color.White)
	dc.Clear()

	face, err := assets.MonoFace(assets.DefaultFontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	local := func(r geom.Rect) geom.Rect { return r.Translate(ext.Pos().Scale(-1)) }

	for _, c := range b.Categories() {
		drawCategoryPNG(dc, c, local(c.Bounds()), local(c.TitleBand()))
	}
	for _, o := range b.Objects() {
		tint := color.NRGBA{0x80, 0x80, 0x80, 0xff}
		if id, ok := o.CategoryID(); ok {
			if c, ok := b.Category(id); ok {
				tint = c.Color().NRGBA()
			}
		}
		var icon assets.Icon
		hasIcon := false
		if icons != nil {
			icon, hasIcon = icons.Icon(o.Ref())
		}
		drawObjectPNG(dc, o, local(o.Bounds()), tint, icon, hasIcon)
	}

	return dc.SavePNG(path)
}

func drawCategoryPNG(dc *gg.Context, c *board.CategoryNode, r, band geom.Rect) {
	col := c.Color()
	fill := col.NRGBA()
	fill.A = 0x40
	dc.SetColor(fill)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()

	dc.SetColor(col.Scale(0.6).NRGBA())
	dc.SetLineWidth(2)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Stroke()

	dc.SetColor(col.Scale(0.8).NRGBA())
	dc.DrawRectangle(band.X, band.Y, band.W, band.H)
	dc.Fill()

	if luminance(col.Scale(0.8)) > 0.5 {
		dc.SetColor(color.Black)
	} else {
		dc.SetColor(color.White)
	}
	dc.DrawStringAnchored(c.Title(), band.X+8, band.Y+band.H/2, 0, 0.35)
}

func drawObjectPNG(dc *gg.Context, o *board.ObjectNode, r geom.Rect, tint color.Color, icon assets.Icon, hasIcon bool) {
	dc.SetColor(color.NRGBA{0xf4, 0xf4, 0xf4, 0xff})
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
	dc.Fill()
	dc.SetColor(tint)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
	dc.Stroke()

	textX := r.X + 8
	midY := r.Y + r.H/2
	if hasIcon {
		if icon.Thumb != nil {
			bounds := icon.Thumb.Bounds()
			scale := math.Min(1, (r.H-8)/float64(bounds.Dy()))
			dc.Push()
			dc.Translate(r.X+4, midY-float64(bounds.Dy())*scale/2)
			dc.Scale(scale, scale)
			dc.DrawImage(icon.Thumb, 0, 0)
			dc.Pop()
			textX = r.X + 8 + float64(bounds.Dx())*scale
		} else {
			dc.SetColor(tint)
			dc.DrawStringAnchored(icon.Glyph, textX, midY, 0, 0.35)
			textX += 16
		}
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(o.Title(), textX, midY, 0, 0.35)
}

// renderBoardText draws b through v onto a cols×rows frame without colors
// and returns it as plain text.
func renderBoardText(b *board.Board, v *viewport.Viewport, cols, rows int, cw, ch float64, icons *assets.IconProvider) string {
	f := newFrame(cols, rows)
	r := &boardRenderer{view: v, cw: cw, ch: ch, icons: icons, plain: true}
	r.draw(f, b, func(board.Node) bool { return false })
	return f.plain()
}

// fitBoardText renders the whole board at zoom 1 sized to its extent.
func fitBoardText(b *board.Board, cw, ch float64, icons *assets.IconProvider) (string, error) {
	ext, ok := boardExtent(b)
	if !ok {
		return "", errNothingToExport
	}
	ext = ext.Inset(-exportPadding)
	v := viewport.New()
	v.SetOrigin(ext.Pos())
	cols := int(math.Ceil(ext.W / cw))
	rows := int(math.Ceil(ext.H / ch))
	return renderBoardText(b, v, cols, rows, cw, ch, icons), nil
}

// exportVisualTXT writes the board as it currently appears on screen.
func (m *model) exportVisualTXT(filename string) error {
	cols := m.width
	if cols < 1 {
		cols = 80
	}
	rows := m.boardRows()
	if m.height < 2 {
		rows = 24
	}
	text := renderBoardText(m.engine.Board(), m.engine.View(), cols, rows, m.cfg.CellWidth, m.cfg.CellHeight, m.icons)
	return writeText(filename, text)
}

func writeText(filename, text string) error {
	if err := os.WriteFile(filename, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// plain returns the frame's runes with trailing spaces trimmed per row.
func (f *frame) plain() string {
	lines := make([]string, f.h)
	var sb strings.Builder
	for y := 0; y < f.h; y++ {
		sb.Reset()
		for _, c := range f.cells[y*f.w : (y+1)*f.w] {
			sb.WriteRune(c.r)
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return strings.Join(lines, "\n")
}
