package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
)

// Model is the immutable canonical library for one build: every command, every skill and
// the paired pattern lists. Accessors return copies.
type Model struct {
	commands []Command
	skills   []Skill
	patterns []PatternPair

	commandIndex map[string]int
	skillIndex   map[string]int

	dropped []*ReferenceError
}

// New builds a Model. Commands and skills are sorted by id. Ids must be unique per kind,
// command ids must be kebab-case and categories must be valid. Relationship references
// that do not resolve to a known command (or that point at the owner itself) are dropped; see DroppedReferences.
func New(commands []Command, skills []Skill, patterns []PatternPair) (*Model, error) {
	m := &Model{
		commands:     make([]Command, 0, len(commands)),
		skills:       make([]Skill, 0, len(skills)),
		patterns:     make([]PatternPair, 0, len(patterns)),
		commandIndex: make(map[string]int, len(commands)),
		skillIndex:   make(map[string]int, len(skills)),
	}

	for _, c := range commands {
		if err := ValidateCommandID(c.ID); err != nil {
			return nil, fmt.Errorf("command: %w", err)
		}
		if c.Description == "" {
			return nil, fmt.Errorf("command %q: description is required", c.ID)
		}
		if !c.Category.IsValid() {
			return nil, fmt.Errorf("command %q: unknown category %q", c.ID, c.Category)
		}
		if _, dup := m.commandIndex[c.ID]; dup {
			return nil, fmt.Errorf("duplicate command id %q", c.ID)
		}
		m.commandIndex[c.ID] = -1
		m.commands = append(m.commands, c.clone())
	}
	for _, s := range skills {
		if err := ValidateID(s.ID); err != nil {
			return nil, fmt.Errorf("skill: %w", err)
		}
		if s.Description == "" {
			return nil, fmt.Errorf("skill %q: description is required", s.ID)
		}
		if _, dup := m.skillIndex[s.ID]; dup {
			return nil, fmt.Errorf("duplicate skill id %q", s.ID)
		}
		m.skillIndex[s.ID] = -1
		sk := s.clone()
		slices.SortFunc(sk.Files, func(a, b File) int { return cmp.Compare(a.Path, b.Path) })
		m.skills = append(m.skills, sk)
	}
	for _, p := range patterns {
		m.patterns = append(m.patterns, p.clone())
	}

	slices.SortFunc(m.commands, func(a, b Command) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(m.skills, func(a, b Skill) int { return cmp.Compare(a.ID, b.ID) })
	for i, c := range m.commands {
		m.commandIndex[c.ID] = i
	}
	for i, s := range m.skills {
		m.skillIndex[s.ID] = i
	}

	for i := range m.commands {
		m.commands[i].Relationships = m.resolve(m.commands[i].ID, m.commands[i].Relationships)
	}

	return m, nil
}

// resolve drops unknown, self and duplicate references, recording each drop of an
// unknown or self reference.
func (m *Model) resolve(owner string, r Relationships) Relationships {
	keep := func(relation string, ids []string) []string {
		var out []string
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if !m.HasCommand(id) || id == owner {
				m.dropped = append(m.dropped, &ReferenceError{From: owner, Relation: relation, To: id})
				continue
			}
			out = append(out, id)
		}
		return out
	}

	resolved := Relationships{
		CombinesWith: keep(RelationCombinesWith, r.CombinesWith),
		LeadsTo:      keep(RelationLeadsTo, r.LeadsTo),
	}
	if r.Pairs != "" {
		if pairs := keep(RelationPairs, []string{r.Pairs}); len(pairs) == 1 {
			resolved.Pairs = pairs[0]
		}
	}
	return resolved
}

// DroppedReferences returns the references removed while building the model as a
// *multierror.Error of *ReferenceError, or nil if every reference resolved.
func (m *Model) DroppedReferences() error {
	if len(m.dropped) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, ref := range m.dropped {
		result = multierror.Append(result, ref)
	}
	return result
}

// Commands returns a copy of all commands sorted by id.
func (m *Model) Commands() []Command {
	out := make([]Command, len(m.commands))
	for i, c := range m.commands {
		out[i] = c.clone()
	}
	return out
}

// Skills returns a copy of all skills sorted by id.
func (m *Model) Skills() []Skill {
	out := make([]Skill, len(m.skills))
	for i, s := range m.skills {
		out[i] = s.clone()
	}
	return out
}

// Patterns returns a copy of the paired pattern categories.
func (m *Model) Patterns() []PatternPair {
	out := make([]PatternPair, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.clone()
	}
	return out
}

// Command looks up a command by id.
func (m *Model) Command(id string) (Command, bool) {
	i, ok := m.commandIndex[id]
	if !ok {
		return Command{}, false
	}
	return m.commands[i].clone(), true
}

// Skill looks up a skill by id.
func (m *Model) Skill(id string) (Skill, bool) {
	i, ok := m.skillIndex[id]
	if !ok {
		return Skill{}, false
	}
	return m.skills[i].clone(), true
}

// HasCommand reports whether a command with id exists.
func (m *Model) HasCommand(id string) bool {
	_, ok := m.commandIndex[id]
	return ok
}

// Refs returns every command and skill reference, commands first, each sorted by id.
func (m *Model) Refs() []EntryRef {
	refs := make([]EntryRef, 0, len(m.commands)+len(m.skills))
	for _, c := range m.commands {
		refs = append(refs, c.Ref())
	}
	for _, s := range m.skills {
		refs = append(refs, s.Ref())
	}
	return refs
}

// IsEmpty returns true if the model has no commands, skills or patterns.
func (m *Model) IsEmpty() bool {
	return len(m.commands) == 0 && len(m.skills) == 0 && len(m.patterns) == 0
}

// Counts returns the number of commands, skills and pattern pairs.
func (m *Model) Counts() (commands, skills, patterns int) {
	return len(m.commands), len(m.skills), len(m.patterns)
}
