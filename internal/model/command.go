package model

import "slices"

// Relationships links a command to other commands by id.
type Relationships struct {
	// CombinesWith lists commands that work well alongside this one.
	CombinesWith []string `json:"combinesWith,omitempty"`
	// LeadsTo lists commands typically run next.
	LeadsTo []string `json:"leadsTo,omitempty"`
	// Pairs names the command with the opposite effect.
	Pairs string `json:"pairs,omitempty"`
}

// IsEmpty returns true if no relationship is set.
func (r Relationships) IsEmpty() bool {
	return len(r.CombinesWith) == 0 && len(r.LeadsTo) == 0 && r.Pairs == ""
}

func (r Relationships) clone() Relationships {
	return Relationships{
		CombinesWith: slices.Clone(r.CombinesWith),
		LeadsTo:      slices.Clone(r.LeadsTo),
		Pairs:        r.Pairs,
	}
}

// Command is the canonical definition of a slash command.
type Command struct {
	ID            string        `json:"id"`
	Description   string        `json:"description"`
	Category      Category      `json:"category"`
	Steps         []string      `json:"steps,omitempty"`
	Relationships Relationships `json:"relationships,omitempty"`
	Ready         bool          `json:"ready"`
	// Body is the long-form instruction text, copied verbatim by providers.
	Body string `json:"body"`
}

// Ref returns the entry reference for this command.
func (c Command) Ref() EntryRef {
	return EntryRef{Kind: KindCommand, ID: c.ID}
}

func (c Command) clone() Command {
	out := c
	out.Steps = slices.Clone(c.Steps)
	out.Relationships = c.Relationships.clone()
	return out
}
