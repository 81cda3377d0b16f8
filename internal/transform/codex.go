package transform

import (
	"path"

	"github.com/pbakaus/vibe-design-plugins/internal/frontmatter"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Codex install layout.
const (
	codexRoot    = ".codex"
	codexPrompts = codexRoot + "/prompts"
	codexSkills  = codexRoot + "/skills"
)

// Codex renders the flat quoted header (see frontmatter.EncodeFlat). Relationships are
// dropped. Ids must be kebab-case.
func Codex(m *model.Model) (*model.ArtifactTree, error) {
	b := newBuilder(model.Codex)

	for _, c := range m.Commands() {
		if err := b.requireKebab(c.ID); err != nil {
			return nil, err
		}
		fields := []frontmatter.Field{
			frontmatter.Scalar("description", c.Description),
			frontmatter.Scalar("category", c.Category.String()),
		}
		if len(c.Steps) > 0 {
			fields = append(fields, frontmatter.List("steps", c.Steps))
		}
		header, err := frontmatter.EncodeFlat(fields)
		if err != nil {
			return nil, b.fail(c.ID, err)
		}
		content := frontmatter.Compose(frontmatter.DelimiterYAML, header, document(c.Body))
		if err := b.add(path.Join(codexPrompts, c.ID+".md"), content, c.Ref()); err != nil {
			return nil, err
		}
	}

	for _, s := range m.Skills() {
		if err := b.requireKebab(s.ID); err != nil {
			return nil, err
		}
		header, err := frontmatter.EncodeFlat([]frontmatter.Field{
			frontmatter.Scalar("name", s.ID),
			frontmatter.Scalar("description", s.Description),
		})
		if err != nil {
			return nil, b.fail(s.ID, err)
		}
		body := document("# "+s.DisplayName(), focusSection(s.FocusAreas), s.Body)
		dir := path.Join(codexSkills, s.ID)
		if err := b.add(path.Join(dir, model.SkillFileName), frontmatter.Compose(frontmatter.DelimiterYAML, header, body), s.Ref()); err != nil {
			return nil, err
		}
		if err := b.addSkillFiles(dir, s); err != nil {
			return nil, err
		}
	}

	if err := b.addPatterns(path.Join(codexRoot, PatternsFileName), m.Patterns()); err != nil {
		return nil, err
	}
	return b.tree, nil
}
