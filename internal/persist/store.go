package persist

import (
	"context"
	"path/filepath"
	"strings"
)

// Store reads and writes board files of one format.
type Store interface {
	Load(ctx context.Context, path string) (*File, error)
	Save(ctx context.Context, path string, f *File) error
}

// ForPath picks the store for a file by extension: SQLite for .db, .sqlite
// and .sqlite3, YAML otherwise.
func ForPath(path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SQLiteStore{}
	default:
		return YAMLStore{}
	}
}

// Load reads a board file using the store its extension selects.
func Load(ctx context.Context, path string) (*File, error) {
	return ForPath(path).Load(ctx, path)
}

// Save writes a board file using the store its extension selects.
func Save(ctx context.Context, path string, f *File) error {
	return ForPath(path).Save(ctx, path, f)
}
