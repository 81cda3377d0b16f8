package model

import (
	"fmt"
	"strings"
)

// ValidateID checks that id is a usable token: ASCII letters, digits, '-', '_' or '.',
// not starting with a separator. Providers may impose stricter rules (see IsKebab).
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("id cannot have leading/trailing whitespace: %q", id)
	}
	if strings.ContainsAny(id[:1], "-_.") {
		return fmt.Errorf("id must start with a letter or digit: %q", id)
	}
	for _, r := range id {
		if !isTokenChar(r) {
			return fmt.Errorf("id contains invalid character %q: %q", r, id)
		}
	}
	return nil
}

// ValidateCommandID checks id like ValidateID and also requires kebab-case.
func ValidateCommandID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if !IsKebab(id) {
		return fmt.Errorf("command id must be lowercase kebab-case: %q", id)
	}
	return nil
}

func isTokenChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.'
}

// IsKebab reports whether id is lowercase kebab-case: "audit", "ux-writing", "frontend-design-2".
func IsKebab(id string) bool {
	if id == "" || id[0] == '-' || id[len(id)-1] == '-' || strings.Contains(id, "--") {
		return false
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
