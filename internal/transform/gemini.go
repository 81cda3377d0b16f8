package transform

import (
	"path"

	"github.com/pbakaus/vibe-design-plugins/internal/frontmatter"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Gemini CLI install layout.
const (
	geminiRoot     = ".gemini"
	geminiCommands = geminiRoot + "/commands"
	geminiSkills   = geminiRoot + "/skills"
)

type geminiCommand struct {
	Description string   `toml:"description"`
	Category    string   `toml:"category"`
	Steps       []string `toml:"steps,omitempty"`
	Prompt      string   `toml:"prompt"`
}

type geminiSkillHeader struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Gemini renders commands as whole TOML files and skills with a "+++" TOML header.
// Relationships are dropped. Ids must be kebab-case.
func Gemini(m *model.Model) (*model.ArtifactTree, error) {
	b := newBuilder(model.Gemini)

	for _, c := range m.Commands() {
		if err := b.requireKebab(c.ID); err != nil {
			return nil, err
		}
		prompt := c.Body
		if prompt == "" {
			prompt = c.Description
		}
		content, err := frontmatter.EncodeTOML(geminiCommand{
			Description: c.Description,
			Category:    c.Category.String(),
			Steps:       c.Steps,
			Prompt:      prompt,
		})
		if err != nil {
			return nil, b.fail(c.ID, err)
		}
		if err := b.add(path.Join(geminiCommands, c.ID+".toml"), content, c.Ref()); err != nil {
			return nil, err
		}
	}

	for _, s := range m.Skills() {
		if err := b.requireKebab(s.ID); err != nil {
			return nil, err
		}
		header, err := frontmatter.EncodeTOML(geminiSkillHeader{Name: s.ID, Description: s.Description})
		if err != nil {
			return nil, b.fail(s.ID, err)
		}
		body := document("# "+s.DisplayName(), focusSection(s.FocusAreas), s.Body)
		dir := path.Join(geminiSkills, s.ID)
		if err := b.add(path.Join(dir, model.SkillFileName), frontmatter.Compose(frontmatter.DelimiterTOML, header, body), s.Ref()); err != nil {
			return nil, err
		}
		if err := b.addSkillFiles(dir, s); err != nil {
			return nil, err
		}
	}

	if err := b.addPatterns(path.Join(geminiRoot, PatternsFileName), m.Patterns()); err != nil {
		return nil, err
	}
	return b.tree, nil
}
