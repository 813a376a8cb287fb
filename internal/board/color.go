package board

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha color with channels in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

var (
	White = RGBA{1, 1, 1, 1}
	Black = RGBA{0, 0, 0, 1}
)

// Palette is the set of category colors the host cycles through.
var Palette = []RGBA{
	{0.75, 0.75, 0.75, 1}, // gray
	{0.86, 0.26, 0.26, 1}, // red
	{0.30, 0.69, 0.31, 1}, // green
	{0.95, 0.77, 0.19, 1}, // yellow
	{0.25, 0.47, 0.85, 1}, // blue
	{0.67, 0.33, 0.75, 1}, // magenta
	{0.20, 0.72, 0.78, 1}, // cyan
	{1, 1, 1, 1},          // white
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// NRGBA converts c to the image/color representation.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

// Hex formats the color as #rrggbb, ignoring alpha.
func (c RGBA) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// Scale multiplies the color channels by f, leaving alpha untouched.
func (c RGBA) Scale(f float64) RGBA {
	return RGBA{c.R * f, c.G * f, c.B * f, c.A}
}

// ParseHex parses #rrggbb or #rrggbbaa.
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return RGBA{}, fmt.Errorf("board: invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("board: invalid color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
