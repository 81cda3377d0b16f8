package model

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"slices"
	"strings"
)

// EntryRef identifies the canonical definition an artifact belongs to.
type EntryRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// String renders the ref as "<kind>/<id>".
func (r EntryRef) String() string {
	return string(r.Kind) + "/" + r.ID
}

// SharedRef returns the owner ref for artifacts not tied to a single entry.
func SharedRef(name string) EntryRef {
	return EntryRef{Kind: KindShared, ID: name}
}

// Artifact is one output file of a provider.
type Artifact struct {
	// Path is relative to the provider root, slash separated.
	Path    string
	Content []byte
	Owner   EntryRef
}

// ArtifactTree is the ordered set of files one provider produces from one Model.
// Entries are kept sorted by path so iteration order is stable across runs.
type ArtifactTree struct {
	provider Provider
	entries  []Artifact
}

// NewArtifactTree creates an empty tree for provider.
func NewArtifactTree(p Provider) *ArtifactTree {
	return &ArtifactTree{provider: p}
}

// Add inserts a file. The path must be relative, clean and slash separated; adding the
// same path twice is an error.
func (t *ArtifactTree) Add(p string, content []byte, owner EntryRef) error {
	if err := ValidateArtifactPath(p); err != nil {
		return err
	}
	i, found := slices.BinarySearchFunc(t.entries, p, func(a Artifact, target string) int {
		return cmp.Compare(a.Path, target)
	})
	if found {
		return fmt.Errorf("duplicate artifact path %q (owners %s and %s)", p, t.entries[i].Owner, owner)
	}
	t.entries = slices.Insert(t.entries, i, Artifact{Path: p, Content: slices.Clone(content), Owner: owner})
	return nil
}

// ValidateArtifactPath checks that p is a clean relative slash path that stays inside the root.
func ValidateArtifactPath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("artifact path cannot be empty")
	case strings.HasPrefix(p, "/"):
		return fmt.Errorf("artifact path %q must be relative", p)
	case strings.Contains(p, `\`):
		return fmt.Errorf("artifact path %q must use forward slashes", p)
	case path.Clean(p) != p:
		return fmt.Errorf("artifact path %q is not clean", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("artifact path %q escapes the provider root", p)
	}
	return nil
}

// Provider returns the provider this tree was generated for.
func (t *ArtifactTree) Provider() Provider {
	return t.provider
}

// Len returns the number of files.
func (t *ArtifactTree) Len() int {
	return len(t.entries)
}

// IsEmpty returns true if the tree has no files.
func (t *ArtifactTree) IsEmpty() bool {
	return len(t.entries) == 0
}

// Entries returns a copy of the files in path order.
func (t *ArtifactTree) Entries() []Artifact {
	out := make([]Artifact, len(t.entries))
	for i, a := range t.entries {
		out[i] = Artifact{Path: a.Path, Content: slices.Clone(a.Content), Owner: a.Owner}
	}
	return out
}

// Paths returns every path in order.
func (t *ArtifactTree) Paths() []string {
	out := make([]string, len(t.entries))
	for i, a := range t.entries {
		out[i] = a.Path
	}
	return out
}

// Owners returns the distinct owners in first-seen path order.
func (t *ArtifactTree) Owners() []EntryRef {
	var out []EntryRef
	seen := make(map[EntryRef]bool)
	for _, a := range t.entries {
		if !seen[a.Owner] {
			seen[a.Owner] = true
			out = append(out, a.Owner)
		}
	}
	return out
}

// Digest returns a hex sha256 over every path and content in order. Two trees with the same
// digest are byte-identical.
func (t *ArtifactTree) Digest() string {
	h := sha256.New()
	for _, a := range t.entries {
		fmt.Fprintf(h, "%s\x00%d\x00", a.Path, len(a.Content))
		h.Write(a.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
