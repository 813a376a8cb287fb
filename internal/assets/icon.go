package assets

import (
	"image"
	"path/filepath"
	"strings"
	"sync"

	"pinboard/internal/board"
)

// Icon describes how a reference is drawn inside its node.
type Icon struct {
	Glyph string
	Kind  string
	// Thumb is set for image assets when a thumbnail could be decoded.
	Thumb image.Image
}

var iconsByExt = map[string]Icon{
	".png":  {Glyph: "▣", Kind: "image"},
	".jpg":  {Glyph: "▣", Kind: "image"},
	".jpeg": {Glyph: "▣", Kind: "image"},
	".gif":  {Glyph: "▣", Kind: "image"},
	".bmp":  {Glyph: "▣", Kind: "image"},
	".webp": {Glyph: "▣", Kind: "image"},
	".wav":  {Glyph: "♪", Kind: "audio"},
	".mp3":  {Glyph: "♪", Kind: "audio"},
	".ogg":  {Glyph: "♪", Kind: "audio"},
	".flac": {Glyph: "♪", Kind: "audio"},
	".mp4":  {Glyph: "▶", Kind: "video"},
	".mov":  {Glyph: "▶", Kind: "video"},
	".txt":  {Glyph: "≡", Kind: "text"},
	".md":   {Glyph: "≡", Kind: "text"},
	".pdf":  {Glyph: "≡", Kind: "document"},
	".go":   {Glyph: "λ", Kind: "code"},
	".yaml": {Glyph: "≡", Kind: "text"},
	".json": {Glyph: "≡", Kind: "text"},
	".ttf":  {Glyph: "ƒ", Kind: "font"},
	".otf":  {Glyph: "ƒ", Kind: "font"},
}

var (
	fileIcon = Icon{Glyph: "◆", Kind: "file"}
	dirIcon  = Icon{Glyph: "▤", Kind: "folder"}
)

// IconProvider looks up icons and caches them per reference. Missing
// references have no icon. Safe for concurrent use.
type IconProvider struct {
	resolver  Resolver
	thumbSize int

	mu    sync.Mutex
	cache map[board.ExternalRef]cachedIcon
}

type cachedIcon struct {
	icon Icon
	ok   bool
}

// NewIconProvider returns a provider. A positive thumbSize enables
// thumbnail decoding for image assets.
func NewIconProvider(r Resolver, thumbSize int) *IconProvider {
	return &IconProvider{
		resolver:  r,
		thumbSize: thumbSize,
		cache:     make(map[board.ExternalRef]cachedIcon),
	}
}

// Icon returns the icon for ref, or false when ref does not resolve.
func (p *IconProvider) Icon(ref board.ExternalRef) (Icon, bool) {
	p.mu.Lock()
	c, hit := p.cache[ref]
	p.mu.Unlock()
	if hit {
		return c.icon, c.ok
	}

	icon, ok := p.lookup(ref)

	p.mu.Lock()
	p.cache[ref] = cachedIcon{icon: icon, ok: ok}
	p.mu.Unlock()
	return icon, ok
}

func (p *IconProvider) lookup(ref board.ExternalRef) (Icon, bool) {
	info, err := p.resolver.Stat(ref)
	if err != nil {
		return Icon{}, false
	}
	if info.IsDir() {
		return dirIcon, true
	}
	icon, known := iconsByExt[strings.ToLower(filepath.Ext(info.Name()))]
	if !known {
		return fileIcon, true
	}
	if icon.Kind == "image" && p.thumbSize > 0 {
		if img, err := Thumbnail(p.resolver.Path(ref), p.thumbSize); err == nil {
			icon.Thumb = img
		}
	}
	return icon, true
}

// Invalidate drops the cached icon for ref so the next lookup re-checks
// the file.
func (p *IconProvider) Invalidate(ref board.ExternalRef) {
	p.mu.Lock()
	delete(p.cache, ref)
	p.mu.Unlock()
}
