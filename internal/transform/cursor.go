package transform

import (
	"path"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Cursor install layout.
const (
	cursorRoot     = ".cursor"
	cursorCommands = cursorRoot + "/commands"
	cursorRules    = cursorRoot + "/rules"
	// The leading "_" keeps the document clear of skill rules; ids cannot start with it.
	cursorPatterns = cursorRules + "/_" + PatternsFileName
)

// Cursor renders plain markdown with no metadata header. The id survives as the file name
// and the "# /<id>" title; steps are inlined as a numbered list and skills are flattened
// into a single rule file. Relationships are dropped.
func Cursor(m *model.Model) (*model.ArtifactTree, error) {
	b := newBuilder(model.Cursor)

	for _, c := range m.Commands() {
		if err := model.ValidateID(c.ID); err != nil {
			return nil, b.fail(c.ID, err)
		}
		content := document(
			"# /"+c.ID,
			c.Description,
			processSection(c.Steps),
			c.Body,
		)
		if err := b.add(path.Join(cursorCommands, c.ID+".md"), []byte(content), c.Ref()); err != nil {
			return nil, err
		}
	}

	for _, s := range m.Skills() {
		if err := model.ValidateID(s.ID); err != nil {
			return nil, b.fail(s.ID, err)
		}
		content := document(
			"# "+s.DisplayName(),
			s.Description,
			focusSection(s.FocusAreas),
			s.Body,
			fileSections(s.Files),
		)
		if err := b.add(path.Join(cursorRules, s.ID+".md"), []byte(content), s.Ref()); err != nil {
			return nil, err
		}
	}

	if err := b.addPatterns(cursorPatterns, m.Patterns()); err != nil {
		return nil, err
	}
	return b.tree, nil
}
