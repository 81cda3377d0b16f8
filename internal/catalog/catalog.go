// Package catalog builds the listing of commands, skills and patterns that the download
// site presents, and renders it as JSON, YAML or Markdown.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// FileName is the catalog file written next to the provider trees.
const FileName = "catalog.json"

// Format represents the output format for a catalog.
type Format string

const (
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders a human-readable listing.
	FormatMarkdown Format = "markdown"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns all supported formats.
func AllFormats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported format %q (valid: json, yaml, markdown)", s)
	}
	return format, nil
}

// Catalog is the public listing of one build.
type Catalog struct {
	Providers []string            `json:"providers" yaml:"providers"`
	Commands  []Command           `json:"commands" yaml:"commands"`
	Skills    []Skill             `json:"skills" yaml:"skills"`
	Patterns  []model.PatternPair `json:"patterns" yaml:"patterns"`
}

// Command is one catalog row for a command.
type Command struct {
	ID           string   `json:"id" yaml:"id"`
	Description  string   `json:"description" yaml:"description"`
	Category     string   `json:"category" yaml:"category"`
	Steps        []string `json:"steps,omitempty" yaml:"steps,omitempty"`
	CombinesWith []string `json:"combinesWith,omitempty" yaml:"combines-with,omitempty"`
	LeadsTo      []string `json:"leadsTo,omitempty" yaml:"leads-to,omitempty"`
	Pairs        string   `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	Ready        bool     `json:"ready" yaml:"ready"`
	// Downloads maps provider to the single-entry download path.
	Downloads map[string]string `json:"downloads" yaml:"downloads"`
}

// Skill is one catalog row for a skill.
type Skill struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	FocusAreas  []model.FocusArea `json:"focusAreas,omitempty" yaml:"focus-areas,omitempty"`
	Ready       bool              `json:"ready" yaml:"ready"`
	Downloads   map[string]string `json:"downloads" yaml:"downloads"`
}

// DownloadPath returns the serving path of a single-entry archive.
func DownloadPath(kind model.Kind, p model.Provider, id string) string {
	return fmt.Sprintf("/api/download/%s/%s/%s", kind, p, id)
}

// BundlePath returns the serving path of a provider bundle.
func BundlePath(p model.Provider) string {
	return "/api/download/bundle/" + p.String()
}

// Build creates the catalog for m. Relationships are the resolved ones held by the model.
func Build(m *model.Model) Catalog {
	providers := model.AllProviders()
	c := Catalog{
		Providers: make([]string, len(providers)),
		Commands:  make([]Command, 0),
		Skills:    make([]Skill, 0),
		Patterns:  m.Patterns(),
	}
	for i, p := range providers {
		c.Providers[i] = p.String()
	}

	downloads := func(kind model.Kind, id string) map[string]string {
		out := make(map[string]string, len(providers))
		for _, p := range providers {
			out[p.String()] = DownloadPath(kind, p, id)
		}
		return out
	}

	for _, cmd := range m.Commands() {
		c.Commands = append(c.Commands, Command{
			ID:           cmd.ID,
			Description:  cmd.Description,
			Category:     cmd.Category.String(),
			Steps:        cmd.Steps,
			CombinesWith: cmd.Relationships.CombinesWith,
			LeadsTo:      cmd.Relationships.LeadsTo,
			Pairs:        cmd.Relationships.Pairs,
			Ready:        cmd.Ready,
			Downloads:    downloads(model.KindCommand, cmd.ID),
		})
	}
	for _, s := range m.Skills() {
		c.Skills = append(c.Skills, Skill{
			ID:          s.ID,
			Name:        s.DisplayName(),
			Description: s.Description,
			FocusAreas:  s.FocusAreas,
			Ready:       s.Ready,
			Downloads:   downloads(model.KindSkill, s.ID),
		})
	}
	return c
}

// Encode writes c to w in format.
func Encode(c Catalog, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(c))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Write stores c as indented JSON at path, creating parent directories.
func Write(c Catalog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	// #nosec G304 - path comes from configuration
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	if err := Encode(c, f, FormatJSON); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logging.Debug("wrote catalog",
		logging.Path(path),
		slog.Int("commands", len(c.Commands)),
		slog.Int("skills", len(c.Skills)),
	)
	return nil
}

func markdown(c Catalog) string {
	var sb strings.Builder

	sb.WriteString("# Catalog\n\n")
	fmt.Fprintf(&sb, "Total: %d command(s), %d skill(s), %d pattern categories\n", len(c.Commands), len(c.Skills), len(c.Patterns))

	if len(c.Commands) > 0 {
		sb.WriteString("\n## Commands\n\n")
		sb.WriteString("| Command | Category | Description | Ready |\n")
		sb.WriteString("|---------|----------|-------------|-------|\n")
		for _, cmd := range c.Commands {
			fmt.Fprintf(&sb, "| /%s | %s | %s | %s |\n", cmd.ID, cmd.Category, escapeCell(cmd.Description), yesNo(cmd.Ready))
		}
	}

	if len(c.Skills) > 0 {
		sb.WriteString("\n## Skills\n\n")
		sb.WriteString("| Skill | Description | Ready |\n")
		sb.WriteString("|-------|-------------|-------|\n")
		for _, s := range c.Skills {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", s.Name, escapeCell(s.Description), yesNo(s.Ready))
		}
	}

	if len(c.Patterns) > 0 {
		sb.WriteString("\n## Patterns\n\n")
		for _, p := range c.Patterns {
			fmt.Fprintf(&sb, "- **%s**: %d do, %d don't\n", p.Name, len(p.Do), len(p.Dont))
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Read loads a catalog written by Write.
func Read(path string) (Catalog, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Entry is a command or skill row reduced to what selection needs.
type Entry struct {
	Ref         model.EntryRef
	Description string
	Ready       bool
}

// Entries lists every command and then every skill of c.
func (c Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.Commands)+len(c.Skills))
	for _, cmd := range c.Commands {
		out = append(out, Entry{Ref: model.EntryRef{Kind: model.KindCommand, ID: cmd.ID}, Description: cmd.Description, Ready: cmd.Ready})
	}
	for _, s := range c.Skills {
		out = append(out, Entry{Ref: model.EntryRef{Kind: model.KindSkill, ID: s.ID}, Description: s.Description, Ready: s.Ready})
	}
	return out
}
