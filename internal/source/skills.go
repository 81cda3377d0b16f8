package source

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pbakaus/vibe-design-plugins/internal/frontmatter"
	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

type skillHeader struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	FocusAreas  []model.FocusArea `yaml:"focus-areas"`
	Ready       *bool             `yaml:"ready"`
}

func loadSkills(fsys fs.FS) ([]model.Skill, error) {
	files, err := glob(fsys, SkillsDir+"/*/"+model.SkillFileName)
	if err != nil {
		return nil, err
	}

	logging.Debug("discovered skill files", logging.Path(SkillsDir), logging.Count(len(files)))

	skills := make([]model.Skill, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		skill, err := parseSkill(fsys, file)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[skill.ID]; dup {
			return nil, &ParseError{
				Path:  file,
				ID:    skill.ID,
				Field: "name",
				Err:   fmt.Errorf("duplicate skill id, already defined in %s", prev),
			}
		}
		seen[skill.ID] = file
		skills = append(skills, skill)
	}
	return skills, nil
}

func parseSkill(fsys fs.FS, file string) (model.Skill, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return model.Skill{}, &ParseError{Path: file, Err: err}
	}

	result := frontmatter.Split(content)
	if !result.Found || result.Delimiter != frontmatter.DelimiterYAML {
		return model.Skill{}, &ParseError{Path: file, Err: fmt.Errorf("missing YAML frontmatter")}
	}

	var hdr skillHeader
	if err := frontmatter.DecodeYAML(result.Header, &hdr); err != nil {
		return model.Skill{}, &ParseError{Path: file, Err: err}
	}

	dir := path.Dir(file)
	id := strings.TrimSpace(hdr.Name)
	if id == "" {
		id = path.Base(dir)
	}
	if err := model.ValidateID(id); err != nil {
		return model.Skill{}, &ParseError{Path: file, ID: id, Field: "name", Err: err}
	}
	if strings.TrimSpace(hdr.Description) == "" {
		return model.Skill{}, &ParseError{Path: file, ID: id, Field: "description", Err: fmt.Errorf("description is required")}
	}
	for i, fa := range hdr.FocusAreas {
		if strings.TrimSpace(fa.Area) == "" {
			return model.Skill{}, &ParseError{Path: file, ID: id, Field: "focus-areas", Err: fmt.Errorf("entry %d has no area", i+1)}
		}
	}

	files, err := loadSkillFiles(fsys, dir)
	if err != nil {
		return model.Skill{}, &ParseError{Path: file, ID: id, Err: err}
	}

	return model.Skill{
		ID:          id,
		Description: strings.TrimSpace(hdr.Description),
		FocusAreas:  hdr.FocusAreas,
		Ready:       readyOrDefault(hdr.Ready),
		Body:        normalizeBody(result.Body),
		Files:       files,
	}, nil
}

// loadSkillFiles reads every file under dir except the top-level SKILL.md. Hidden files
// (any path segment starting with ".") are skipped.
func loadSkillFiles(fsys fs.FS, dir string) ([]model.File, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", dir, err)
	}
	matches, err := glob(sub, "**")
	if err != nil {
		return nil, err
	}

	var files []model.File
	for _, rel := range matches {
		if rel == model.SkillFileName || isHidden(rel) {
			continue
		}
		data, err := fs.ReadFile(sub, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", path.Join(dir, rel), err)
		}
		files = append(files, model.File{Path: rel, Content: data})
	}
	return files, nil
}

func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
