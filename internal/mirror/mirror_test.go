package mirror

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pbakaus/vibe-design-plugins/internal/util"
)

func TestSync_ReplacesOnlyNamedSubdirs(t *testing.T) {
	src := t.TempDir()
	mirror := t.TempDir()

	util.WriteTree(t, src, map[string]string{
		"commands/audit.md":               "new audit",
		"skills/color/SKILL.md":           "new color",
		"skills/color/reference/oklch.md": "oklch",
		"design-patterns.md":              "not mirrored",
	})
	util.WriteTree(t, mirror, map[string]string{
		"commands/old.md":      "stale",
		"commands/audit.md":    "old audit",
		"skills/gone/SKILL.md": "stale skill",
		"settings.local.json":  `{"keep": true}`,
		"agents/reviewer.md":   "untouched",
	})

	res, err := Sync(src, mirror, "commands", "skills")
	util.AssertNoError(t, err)

	got := util.ReadTree(t, mirror)
	want := map[string]string{
		"commands/audit.md":               "new audit",
		"skills/color/SKILL.md":           "new color",
		"skills/color/reference/oklch.md": "oklch",
		"settings.local.json":             `{"keep": true}`,
		"agents/reviewer.md":              "untouched",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mirror = %v\nwant %v", got, want)
	}

	if !reflect.DeepEqual(res.Replaced, []string{"commands", "skills"}) {
		t.Errorf("Replaced = %v", res.Replaced)
	}
	util.AssertEqual(t, res.Files, 3)
}

func TestSync_MissingSourceRemovesMirrorSubdir(t *testing.T) {
	src := t.TempDir()
	mirror := t.TempDir()
	util.WriteFile(t, filepath.Join(mirror, "skills", "old", "SKILL.md"), "stale")

	res, err := Sync(src, mirror, "skills")
	util.AssertNoError(t, err)

	if _, err := os.Stat(filepath.Join(mirror, "skills")); !os.IsNotExist(err) {
		t.Errorf("expected skills to be removed, stat err = %v", err)
	}
	if !reflect.DeepEqual(res.Removed, []string{"skills"}) {
		t.Errorf("Removed = %v", res.Removed)
	}
}

func TestSync_CreatesMirrorRoot(t *testing.T) {
	src := t.TempDir()
	util.WriteFile(t, filepath.Join(src, "commands", "audit.md"), "audit")
	mirror := filepath.Join(t.TempDir(), "nested", ".claude")

	_, err := Sync(src, mirror, "commands")
	util.AssertNoError(t, err)

	got := util.ReadTree(t, mirror)
	util.AssertEqual(t, got["commands/audit.md"], "audit")
}

func TestSync_InvalidSubdir(t *testing.T) {
	for _, sub := range []string{"", ".", "..", "../outside", "/abs"} {
		if _, err := Sync(t.TempDir(), t.TempDir(), sub); err == nil {
			t.Errorf("Sync(%q) expected error", sub)
		}
	}
}

func TestSync_SymlinkInMirrorIsNotFollowed(t *testing.T) {
	src := t.TempDir()
	mirror := t.TempDir()
	outside := t.TempDir()
	util.WriteFile(t, filepath.Join(outside, "precious.md"), "keep me")
	util.WriteFile(t, filepath.Join(src, "commands", "audit.md"), "audit")

	if err := os.Symlink(outside, filepath.Join(mirror, "commands")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := Sync(src, mirror, "commands")
	util.AssertNoError(t, err)

	if _, err := os.Stat(filepath.Join(outside, "precious.md")); err != nil {
		t.Errorf("symlink target was modified: %v", err)
	}
	util.AssertEqual(t, util.ReadTree(t, mirror)["commands/audit.md"], "audit")
}
