package model

import (
	"fmt"
	"strings"
)

// Provider represents a consumer tool ecosystem that receives generated artifacts.
type Provider string

const (
	Cursor     Provider = "cursor"
	ClaudeCode Provider = "claude-code"
	Gemini     Provider = "gemini"
	Codex      Provider = "codex"
)

// IsValid returns true if the provider is recognized
func (p Provider) IsValid() bool {
	switch p {
	case Cursor, ClaudeCode, Gemini, Codex:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// AllProviders returns all supported providers in build order.
func AllProviders() []Provider {
	return []Provider{Cursor, ClaudeCode, Gemini, Codex}
}

// ParseProvider converts a string to a Provider.
// Accepts a few common spellings ("claude", "claudecode", "gemini-cli").
func ParseProvider(s string) (Provider, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	p := Provider(normalized)
	if p.IsValid() {
		return p, nil
	}

	switch normalized {
	case "claude", "claudecode", "claude_code":
		return ClaudeCode, nil
	case "gemini-cli":
		return Gemini, nil
	case "codex-cli":
		return Codex, nil
	default:
		return "", fmt.Errorf("unknown provider %q (valid: cursor, claude-code, gemini, codex)", s)
	}
}
