package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLStore keeps a board in a human-readable YAML file.
type YAMLStore struct{}

func (YAMLStore) Load(ctx context.Context, path string) (*File, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("persist: %s: %w", path, ErrInvalidPath)
	}
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return &f, nil
}

// Save writes f next to path and renames it into place so a failed write
// never truncates an existing board.
func (YAMLStore) Save(ctx context.Context, path string, f *File) error {
	if path == "" {
		return ErrInvalidPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("persist: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("persist: rename %s: %w", path, err)
	}
	return nil
}
