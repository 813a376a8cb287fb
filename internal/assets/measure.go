package assets

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// DefaultFontSize is the point size titles are measured and exported at.
const DefaultFontSize = 12.0

// MonoFace returns the Go Mono face at size points and 72 DPI.
func MonoFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("assets: parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FontMeasurer measures titles with a TrueType face. font.Face is not safe
// for concurrent use, so calls are serialized.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	face, err := MonoFace(size)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{face: face}, nil
}

// MeasureTitle returns the advance width of title in pixels.
func (m *FontMeasurer) MeasureTitle(title string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(m.face, title)) / 64
}
