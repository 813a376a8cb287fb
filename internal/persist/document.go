package persist

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"pinboard/internal/board"
	"pinboard/internal/viewport"
)

// Document remembers the file a board was last loaded from or saved to.
type Document struct {
	path string
	log  *slog.Logger
}

// NewDocument returns a document with no path. A nil logger discards.
func NewDocument(logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Document{log: logger}
}

func (d *Document) Path() string { return d.path }

// Name is the file name without extension, or "untitled".
func (d *Document) Name() string {
	if d.path == "" {
		return "untitled"
	}
	base := filepath.Base(d.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open reads the board at path. On failure nothing changes, including the
// remembered path.
func (d *Document) Open(ctx context.Context, path string, opts ...board.Option) (*board.Board, *File, error) {
	if path == "" {
		return nil, nil, ErrInvalidPath
	}
	f, err := Load(ctx, path)
	if err != nil {
		d.log.Warn("load failed", slog.String("path", path), slog.String("error", err.Error()))
		return nil, nil, err
	}
	b, err := f.Board(opts...)
	if err != nil {
		d.log.Warn("load failed", slog.String("path", path), slog.String("error", err.Error()))
		return nil, nil, err
	}
	d.path = path
	d.log.Info("board loaded",
		slog.String("path", path),
		slog.Int("categories", len(f.Categories)),
		slog.Int("objects", len(f.Objects)))
	return b, f, nil
}

// Reload re-reads the remembered file.
func (d *Document) Reload(ctx context.Context, opts ...board.Option) (*board.Board, *File, error) {
	if d.path == "" {
		return nil, nil, ErrNoPriorSave
	}
	return d.Open(ctx, d.path, opts...)
}

// SaveAs writes the board to path and remembers it.
func (d *Document) SaveAs(ctx context.Context, path string, b *board.Board, v *viewport.Viewport) error {
	if path == "" {
		return ErrInvalidPath
	}
	f := Snapshot(b, v)
	if err := Save(ctx, path, f); err != nil {
		d.log.Warn("save failed", slog.String("path", path), slog.String("error", err.Error()))
		return err
	}
	d.path = path
	d.log.Info("board saved",
		slog.String("path", path),
		slog.Int("categories", len(f.Categories)),
		slog.Int("objects", len(f.Objects)))
	return nil
}

// QuickSave writes the board to the remembered path.
func (d *Document) QuickSave(ctx context.Context, b *board.Board, v *viewport.Viewport) error {
	if d.path == "" {
		d.log.Warn("quick save without a path")
		return ErrNoPriorSave
	}
	return d.SaveAs(ctx, d.path, b, v)
}
