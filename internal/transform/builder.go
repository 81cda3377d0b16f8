package transform

import (
	"fmt"
	"path"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// PatternsFileName is the name of the rendered pattern document in every provider tree.
const PatternsFileName = "design-patterns.md"

// patternsOwner owns the rendered pattern document.
var patternsOwner = model.SharedRef("design-patterns")

// builder accumulates one provider's tree and turns failures into *Error.
type builder struct {
	provider model.Provider
	tree     *model.ArtifactTree
}

func newBuilder(p model.Provider) *builder {
	return &builder{provider: p, tree: model.NewArtifactTree(p)}
}

func (b *builder) add(p string, content []byte, owner model.EntryRef) error {
	if err := b.tree.Add(p, content, owner); err != nil {
		return b.fail(owner.ID, err)
	}
	return nil
}

// addSkillFiles places a skill's supplementary files under dir.
func (b *builder) addSkillFiles(dir string, s model.Skill) error {
	for _, f := range s.Files {
		if err := b.add(path.Join(dir, f.Path), f.Content, s.Ref()); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addPatterns(p string, pairs []model.PatternPair) error {
	if len(pairs) == 0 {
		return nil
	}
	return b.add(p, renderPatterns(pairs), patternsOwner)
}

func (b *builder) fail(id string, err error) *Error {
	return &Error{Provider: b.provider, ID: id, Err: err}
}

func (b *builder) failf(id, format string, args ...any) *Error {
	return b.fail(id, fmt.Errorf(format, args...))
}

// requireKebab rejects ids that the provider cannot encode.
func (b *builder) requireKebab(id string) error {
	if !model.IsKebab(id) {
		return b.failf(id, "id %q must be lowercase kebab-case for %s", id, b.provider)
	}
	return nil
}

// resolved keeps only ids that name a known command other than owner.
func resolved(m *model.Model, owner string, ids []string) []string {
	var out []string
	for _, id := range ids {
		if id != owner && m.HasCommand(id) {
			out = append(out, id)
		}
	}
	return out
}
