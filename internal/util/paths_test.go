package util

import (
	"path/filepath"
	"testing"
)

func TestHomeDir(t *testing.T) {
	home := HomeDir()
	if home == "" {
		t.Error("HomeDir() returned empty string")
	}

	// Verify it's an absolute path
	if !filepath.IsAbs(home) {
		t.Errorf("HomeDir() returned relative path: %s", home)
	}
}

func TestClaudeMirrorPath(t *testing.T) {
	projectDir := "/test/project"
	path := ClaudeMirrorPath(projectDir)

	expected := "/test/project/.claude"
	if path != expected {
		t.Errorf("ClaudeMirrorPath(%q) = %q, want %q", projectDir, path, expected)
	}
}

func TestExpandHome(t *testing.T) {
	tests := map[string]string{
		"~":             HomeDir(),
		"~/.claude":     filepath.Join(HomeDir(), ".claude"),
		"/abs/.claude":  "/abs/.claude",
		"relative/dir":  "relative/dir",
		"~user/.claude": "~user/.claude",
	}

	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
