package transform

import (
	"path"

	"github.com/pbakaus/vibe-design-plugins/internal/frontmatter"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Claude Code install layout. The commands and skills directories are also what the
// local mirror receives.
const (
	ClaudeRoot        = ".claude"
	ClaudeCommandsDir = "commands"
	ClaudeSkillsDir   = "skills"
)

type claudeCommandHeader struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	Steps        []string `yaml:"steps,omitempty"`
	CombinesWith []string `yaml:"combines-with,omitempty"`
	LeadsTo      []string `yaml:"leads-to,omitempty"`
	Pairs        string   `yaml:"pairs,omitempty"`
}

type claudeSkillHeader struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ClaudeCode renders YAML frontmatter headers. It is the only provider that keeps
// relationship metadata; every reference is checked against the model again and
// unresolved ids are dropped.
func ClaudeCode(m *model.Model) (*model.ArtifactTree, error) {
	b := newBuilder(model.ClaudeCode)

	for _, c := range m.Commands() {
		if err := model.ValidateID(c.ID); err != nil {
			return nil, b.fail(c.ID, err)
		}
		hdr := claudeCommandHeader{
			Name:         c.ID,
			Description:  c.Description,
			Category:     c.Category.String(),
			Steps:        c.Steps,
			CombinesWith: resolved(m, c.ID, c.Relationships.CombinesWith),
			LeadsTo:      resolved(m, c.ID, c.Relationships.LeadsTo),
		}
		if pairs := resolved(m, c.ID, []string{c.Relationships.Pairs}); len(pairs) == 1 {
			hdr.Pairs = pairs[0]
		}
		header, err := frontmatter.EncodeYAML(hdr)
		if err != nil {
			return nil, b.fail(c.ID, err)
		}
		content := frontmatter.Compose(frontmatter.DelimiterYAML, header, document(c.Body))
		p := path.Join(ClaudeRoot, ClaudeCommandsDir, c.ID+".md")
		if err := b.add(p, content, c.Ref()); err != nil {
			return nil, err
		}
	}

	for _, s := range m.Skills() {
		if err := model.ValidateID(s.ID); err != nil {
			return nil, b.fail(s.ID, err)
		}
		header, err := frontmatter.EncodeYAML(claudeSkillHeader{Name: s.ID, Description: s.Description})
		if err != nil {
			return nil, b.fail(s.ID, err)
		}
		body := document("# "+s.DisplayName(), focusSection(s.FocusAreas), s.Body)
		dir := path.Join(ClaudeRoot, ClaudeSkillsDir, s.ID)
		if err := b.add(path.Join(dir, model.SkillFileName), frontmatter.Compose(frontmatter.DelimiterYAML, header, body), s.Ref()); err != nil {
			return nil, err
		}
		if err := b.addSkillFiles(dir, s); err != nil {
			return nil, err
		}
	}

	if err := b.addPatterns(path.Join(ClaudeRoot, PatternsFileName), m.Patterns()); err != nil {
		return nil, err
	}
	return b.tree, nil
}
