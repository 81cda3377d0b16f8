package build

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
	"github.com/pbakaus/vibe-design-plugins/internal/packaging"
	"github.com/pbakaus/vibe-design-plugins/internal/source"
	"github.com/pbakaus/vibe-design-plugins/internal/transform"
)

// StageError is the single error a failed build returns. Stage is the stage the build was
// trying to reach.
type StageError struct {
	Stage    Stage
	Provider model.Provider
	// ID is the offending command or skill id, when one is known.
	ID  string
	Err error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Stage.Step())
	b.WriteString(" failed")
	if e.Provider != "" {
		fmt.Fprintf(&b, " [%s]", e.Provider)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " [%s]", e.ID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// stageError wraps err for stage, lifting the provider and entry id out of the typed errors
// produced by the lower layers.
func stageError(stage Stage, p model.Provider, err error) *StageError {
	se := &StageError{Stage: stage, Provider: p, Err: err}

	var parseErr *source.ParseError
	var transformErr *transform.Error
	var packagingErr *packaging.Error
	switch {
	case errors.As(err, &parseErr):
		se.ID = parseErr.ID
	case errors.As(err, &transformErr):
		se.Provider = transformErr.Provider
		se.ID = transformErr.ID
	case errors.As(err, &packagingErr):
		se.Provider = packagingErr.Provider
	}
	return se
}
