package model

import "fmt"

// ReferenceError reports a relationship that points at an unknown command.
// It is recoverable: the reference is dropped and the owning command is kept.
type ReferenceError struct {
	// From is the command that holds the reference.
	From string
	// Relation is one of "combines-with", "leads-to" or "pairs".
	Relation string
	// To is the unresolved id.
	To string
}

func (e *ReferenceError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("command %q %s itself; reference dropped", e.From, e.Relation)
	}
	return fmt.Sprintf("command %q %s unknown command %q; reference dropped", e.From, e.Relation, e.To)
}

// Relation names used in ReferenceError and in serialized metadata.
const (
	RelationCombinesWith = "combines-with"
	RelationLeadsTo      = "leads-to"
	RelationPairs        = "pairs"
)
