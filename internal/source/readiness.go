package source

import (
	"fmt"
	"strings"
)

// Readiness decides what happens to entries marked `ready: false`.
type Readiness string

const (
	// IncludePending keeps not-ready entries in the model.
	IncludePending Readiness = "include"
	// ExcludePending removes not-ready entries before any transform.
	ExcludePending Readiness = "exclude"
)

// IsValid returns true if r is a known policy.
func (r Readiness) IsValid() bool {
	return r == IncludePending || r == ExcludePending
}

// String returns the string representation of the policy.
func (r Readiness) String() string {
	return string(r)
}

// ParseReadiness converts a string to a Readiness. The empty string means IncludePending.
func ParseReadiness(s string) (Readiness, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IncludePending, nil
	}
	r := Readiness(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown readiness policy %q (valid: include, exclude)", s)
	}
	return r, nil
}
