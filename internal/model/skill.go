package model

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SkillFileName is the entry file of a modular skill directory.
const SkillFileName = "SKILL.md"

// FocusArea is one {area, detail} pair of a skill.
type FocusArea struct {
	Area   string `json:"area" yaml:"area" toml:"area"`
	Detail string `json:"detail" yaml:"detail" toml:"detail"`
}

// File is a supplementary file shipped inside a skill directory.
type File struct {
	// Path is relative to the skill directory and uses forward slashes.
	Path    string
	Content []byte
}

// Skill is the canonical definition of a skill.
type Skill struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	FocusAreas  []FocusArea `json:"focusAreas,omitempty"`
	Ready       bool        `json:"ready"`
	Body        string      `json:"body"`
	// Files are ordered by Path.
	Files []File `json:"-"`
}

// Ref returns the entry reference for this skill.
func (s Skill) Ref() EntryRef {
	return EntryRef{Kind: KindSkill, ID: s.ID}
}

// DisplayName formats the id for humans: "ux-writing" becomes "UX Writing".
func (s Skill) DisplayName() string {
	return DisplayName(s.ID)
}

// DisplayName title-cases a kebab-case id, keeping known acronyms upper case.
func DisplayName(id string) string {
	caser := cases.Title(language.English)
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if strings.EqualFold(w, "ux") || strings.EqualFold(w, "ui") {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func (s Skill) clone() Skill {
	out := s
	out.FocusAreas = slices.Clone(s.FocusAreas)
	out.Files = make([]File, len(s.Files))
	for i, f := range s.Files {
		out.Files[i] = File{Path: f.Path, Content: slices.Clone(f.Content)}
	}
	return out
}
