package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned for an empty path or a board file that
	// does not exist.
	ErrInvalidPath = errors.New("invalid board path")
	// ErrNoPriorSave is returned by a quick save before the document has
	// been given a path.
	ErrNoPriorSave = errors.New("no prior save")
	// ErrUnsupportedFormat is returned for a file version this build does
	// not understand.
	ErrUnsupportedFormat = errors.New("unsupported board format")
)

// FormatError reports a board file that exists but could not be decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("persist: decode %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
