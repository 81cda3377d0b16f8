package model

import (
	"fmt"
	"strings"
)

// Kind identifies what a canonical definition (or an artifact's owner) is.
type Kind string

const (
	// KindCommand is a slash command definition.
	KindCommand Kind = "command"
	// KindSkill is a skill definition.
	KindSkill Kind = "skill"
	// KindShared marks artifacts that belong to no single entry (e.g. the patterns document).
	KindShared Kind = "shared"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindCommand, KindSkill, KindShared:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses an entry kind. Only command and skill are addressable.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "command", "commands":
		return KindCommand, nil
	case "skill", "skills":
		return KindSkill, nil
	default:
		return "", fmt.Errorf("unknown kind %q (valid: command, skill)", s)
	}
}
