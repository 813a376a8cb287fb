// Package assets resolves the external references pinned to a board:
// display names, existence checks, icons and thumbnails, title measurement
// and a file watcher that reports references going missing.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pinboard/internal/board"
)

// ErrMissingRef is returned when a reference no longer resolves to a file.
var ErrMissingRef = errors.New("external reference missing")

// Resolver maps references to local file paths. References are file paths
// or file:// URLs; relative paths resolve against Root.
type Resolver struct {
	Root string
}

// ForBoard resolves relative references against the directory of the board
// file at path. An unsaved board (empty path) resolves against the working
// directory.
func ForBoard(path string) Resolver {
	if path == "" {
		return Resolver{}
	}
	return Resolver{Root: filepath.Dir(path)}
}

// IsRelative reports whether ref depends on the resolver root.
func IsRelative(ref board.ExternalRef) bool {
	s := string(ref)
	return !strings.HasPrefix(s, "file://") && !filepath.IsAbs(s)
}

// Path returns the local file path for ref.
func (r Resolver) Path(ref board.ExternalRef) string {
	s := string(ref)
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	if r.Root != "" && !filepath.IsAbs(s) {
		s = filepath.Join(r.Root, s)
	}
	return filepath.Clean(s)
}

// DisplayName is the file name of ref without its extension.
func (r Resolver) DisplayName(ref board.ExternalRef) string {
	base := filepath.Base(r.Path(ref))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return base
	}
	return name
}

// Stat checks that ref still resolves.
func (r Resolver) Stat(ref board.ExternalRef) (fs.FileInfo, error) {
	info, err := os.Stat(r.Path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("assets: %s: %w", ref, ErrMissingRef)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: stat %s: %w", ref, err)
	}
	return info, nil
}

func (r Resolver) Exists(ref board.ExternalRef) bool {
	_, err := r.Stat(ref)
	return err == nil
}
