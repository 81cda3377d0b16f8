package packaging

import (
	"errors"
	"fmt"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// ErrEmptyTree is returned when asked to package a tree with no files.
var ErrEmptyTree = errors.New("artifact tree is empty")

// Error reports a packaging failure for one provider.
type Error struct {
	Provider model.Provider
	// Op is the failing step: "write", "archive", "extract" or "manifest".
	Op string
	// Path is the file or directory involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Provider, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Provider, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
