// Package packaging materializes provider artifact trees on disk and bundles them into
// deterministic zip archives for download.
package packaging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// WrittenEntry is one file of a WrittenTree.
type WrittenEntry struct {
	// Path is relative to the provider root, slash separated.
	Path  string         `json:"path"`
	Size  int64          `json:"size"`
	Owner model.EntryRef `json:"owner"`
}

// WrittenTree describes a provider tree as written to disk.
type WrittenTree struct {
	Provider model.Provider `json:"provider"`
	// Root is the provider directory, outputRoot/<provider>.
	Root    string         `json:"-"`
	Digest  string         `json:"digest"`
	Entries []WrittenEntry `json:"entries"`
}

// Owners returns the distinct command and skill refs in the tree, in path order.
// Shared artifacts are not included.
func (w *WrittenTree) Owners() []model.EntryRef {
	var out []model.EntryRef
	seen := make(map[model.EntryRef]bool)
	for _, e := range w.Entries {
		if e.Owner.Kind == model.KindShared || seen[e.Owner] {
			continue
		}
		seen[e.Owner] = true
		out = append(out, e.Owner)
	}
	return out
}

// EntriesFor returns the files owned by ref, in path order.
func (w *WrittenTree) EntriesFor(ref model.EntryRef) []WrittenEntry {
	var out []WrittenEntry
	for _, e := range w.Entries {
		if e.Owner == ref {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns every entry path in order.
func (w *WrittenTree) Paths() []string {
	out := make([]string, len(w.Entries))
	for i, e := range w.Entries {
		out[i] = e.Path
	}
	return out
}

// Write replaces outputRoot/<provider> with the contents of tree. An empty tree is an error
// and leaves the existing directory untouched.
func Write(tree *model.ArtifactTree, outputRoot string) (*WrittenTree, error) {
	p := tree.Provider()
	if tree.IsEmpty() {
		return nil, &Error{Provider: p, Op: "write", Err: ErrEmptyTree}
	}

	root := filepath.Join(outputRoot, p.String())
	if err := os.RemoveAll(root); err != nil {
		return nil, &Error{Provider: p, Op: "write", Path: root, Err: fmt.Errorf("failed to remove previous output: %w", err)}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &Error{Provider: p, Op: "write", Path: root, Err: err}
	}

	w := &WrittenTree{Provider: p, Root: root, Digest: tree.Digest()}
	for _, a := range tree.Entries() {
		target := filepath.Join(root, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, &Error{Provider: p, Op: "write", Path: target, Err: err}
		}
		// #nosec G306 - artifacts are meant to be world-readable
		if err := os.WriteFile(target, a.Content, 0o644); err != nil {
			return nil, &Error{Provider: p, Op: "write", Path: target, Err: err}
		}
		w.Entries = append(w.Entries, WrittenEntry{Path: a.Path, Size: int64(len(a.Content)), Owner: a.Owner})
	}

	logging.Debug("wrote artifact tree",
		logging.Provider(p.String()),
		logging.Path(root),
		logging.Count(len(w.Entries)),
	)
	return w, nil
}
