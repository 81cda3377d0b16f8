// Package transform projects the canonical model into provider-specific artifact trees.
//
// Each provider is a plain Func registered in a flat table keyed by model.Provider.
// Transforms are pure: the same model always yields byte-identical trees.
package transform

import (
	"errors"
	"fmt"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Func converts a model into one provider's artifact tree.
type Func func(m *model.Model) (*model.ArtifactTree, error)

// ErrUnknownProvider is returned when no Func is registered for a provider.
var ErrUnknownProvider = errors.New("no transformer registered")

// ErrEmptyTree is returned when a non-empty model produced no artifacts.
var ErrEmptyTree = errors.New("transform produced an empty tree from a non-empty model")

// ErrMissingEntry is returned when a tree has no artifact for a command or skill of the model.
var ErrMissingEntry = errors.New("entry missing from output")

var registry = map[model.Provider]Func{
	model.Cursor:     Cursor,
	model.ClaudeCode: ClaudeCode,
	model.Gemini:     Gemini,
	model.Codex:      Codex,
}

// Lookup returns the Func registered for p.
func Lookup(p model.Provider) (Func, bool) {
	fn, ok := registry[p]
	return fn, ok
}

// Transform runs the transformer registered for p and checks the result.
func Transform(p model.Provider, m *model.Model) (*model.ArtifactTree, error) {
	fn, ok := Lookup(p)
	if !ok {
		return nil, &Error{Provider: p, Err: ErrUnknownProvider}
	}

	defer logging.Timer("transform " + p.String())()

	tree, err := fn(m)
	if err != nil {
		logging.Warn("transform failed", logging.Provider(p.String()), logging.Err(err))
		return nil, err
	}
	if tree.IsEmpty() && !m.IsEmpty() {
		return nil, &Error{Provider: p, Err: ErrEmptyTree}
	}
	if err := checkCoverage(p, m, tree); err != nil {
		return nil, err
	}

	logging.Debug("transformed model",
		logging.Provider(p.String()),
		logging.Count(tree.Len()),
	)
	return tree, nil
}

// checkCoverage fails unless every command and skill of m owns at least one artifact.
func checkCoverage(p model.Provider, m *model.Model, tree *model.ArtifactTree) error {
	owned := make(map[model.EntryRef]bool)
	for _, o := range tree.Owners() {
		owned[o] = true
	}
	for _, ref := range m.Refs() {
		if !owned[ref] {
			return &Error{Provider: p, ID: ref.ID, Err: fmt.Errorf("%w: %s", ErrMissingEntry, ref)}
		}
	}
	return nil
}

// All runs every registered transformer in model.AllProviders order. The first error
// stops the run.
func All(m *model.Model) (map[model.Provider]*model.ArtifactTree, error) {
	trees := make(map[model.Provider]*model.ArtifactTree, len(registry))
	for _, p := range model.AllProviders() {
		tree, err := Transform(p, m)
		if err != nil {
			return nil, err
		}
		trees[p] = tree
	}
	return trees, nil
}

// Error reports a provider-scoped encoding invariant violation.
type Error struct {
	Provider model.Provider
	// ID is the offending entry id, empty for tree-level failures.
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("transform %s (%s): %v", e.Provider, e.ID, e.Err)
	}
	return fmt.Sprintf("transform %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
