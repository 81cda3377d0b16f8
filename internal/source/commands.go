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

type commandHeader struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	Steps        []string `yaml:"steps"`
	CombinesWith []string `yaml:"combines-with"`
	LeadsTo      []string `yaml:"leads-to"`
	Pairs        string   `yaml:"pairs"`
	Ready        *bool    `yaml:"ready"`
}

func loadCommands(fsys fs.FS) ([]model.Command, error) {
	files, err := glob(fsys, CommandsDir+"/*.md")
	if err != nil {
		return nil, err
	}

	logging.Debug("discovered command files", logging.Path(CommandsDir), logging.Count(len(files)))

	commands := make([]model.Command, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		cmd, err := parseCommand(fsys, file)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[cmd.ID]; dup {
			return nil, &ParseError{
				Path:  file,
				ID:    cmd.ID,
				Field: "name",
				Err:   fmt.Errorf("duplicate command id, already defined in %s", prev),
			}
		}
		seen[cmd.ID] = file
		commands = append(commands, cmd)
	}
	return commands, nil
}

func parseCommand(fsys fs.FS, file string) (model.Command, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return model.Command{}, &ParseError{Path: file, Err: err}
	}

	result := frontmatter.Split(content)
	if !result.Found || result.Delimiter != frontmatter.DelimiterYAML {
		return model.Command{}, &ParseError{Path: file, Err: fmt.Errorf("missing YAML frontmatter")}
	}

	var hdr commandHeader
	if err := frontmatter.DecodeYAML(result.Header, &hdr); err != nil {
		return model.Command{}, &ParseError{Path: file, Err: err}
	}

	id := strings.TrimSpace(hdr.Name)
	if id == "" {
		id = strings.TrimSuffix(path.Base(file), ".md")
	}
	if err := model.ValidateCommandID(id); err != nil {
		return model.Command{}, &ParseError{Path: file, ID: id, Field: "name", Err: err}
	}
	if strings.TrimSpace(hdr.Description) == "" {
		return model.Command{}, &ParseError{Path: file, ID: id, Field: "description", Err: fmt.Errorf("description is required")}
	}
	category, err := model.ParseCategory(hdr.Category)
	if err != nil {
		return model.Command{}, &ParseError{Path: file, ID: id, Field: "category", Err: err}
	}

	return model.Command{
		ID:          id,
		Description: strings.TrimSpace(hdr.Description),
		Category:    category,
		Steps:       hdr.Steps,
		Relationships: model.Relationships{
			CombinesWith: hdr.CombinesWith,
			LeadsTo:      hdr.LeadsTo,
			Pairs:        strings.TrimSpace(hdr.Pairs),
		},
		Ready: readyOrDefault(hdr.Ready),
		Body:  normalizeBody(result.Body),
	}, nil
}

func readyOrDefault(ready *bool) bool {
	if ready == nil {
		return true
	}
	return *ready
}

// normalizeBody trims surrounding blank space and converts CRLF line endings.
func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}
