package packaging

import (
	"archive/zip"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
	"github.com/pbakaus/vibe-design-plugins/internal/util"
)

var (
	auditRef = model.EntryRef{Kind: model.KindCommand, ID: "audit"}
	colorRef = model.EntryRef{Kind: model.KindSkill, ID: "color"}
)

func testTree(t *testing.T) *model.ArtifactTree {
	t.Helper()
	tree := model.NewArtifactTree(model.ClaudeCode)
	files := []struct {
		path  string
		body  string
		owner model.EntryRef
	}{
		{".claude/commands/audit.md", "---\nname: audit\n---\n\nAudit.\n", auditRef},
		{".claude/skills/color/SKILL.md", "---\nname: color\n---\n\nColor.\n", colorRef},
		{".claude/skills/color/reference/oklch.md", "# OKLCH\n", colorRef},
		{".claude/design-patterns.md", "# Design Patterns\n", model.SharedRef("design-patterns")},
	}
	for _, f := range files {
		if err := tree.Add(f.path, []byte(f.body), f.owner); err != nil {
			t.Fatalf("Add(%s) error = %v", f.path, err)
		}
	}
	return tree
}

func TestWrite_ReplacesProviderDirectory(t *testing.T) {
	out := t.TempDir()
	util.WriteFile(t, filepath.Join(out, "claude-code", "stale.md"), "old")
	util.WriteFile(t, filepath.Join(out, "cursor", "keep.md"), "other provider")

	w, err := Write(testTree(t), out)
	util.AssertNoError(t, err)

	got := util.ReadTree(t, filepath.Join(out, "claude-code"))
	if _, ok := got["stale.md"]; ok {
		t.Error("stale file survived a full replace")
	}
	if got[".claude/skills/color/reference/oklch.md"] != "# OKLCH\n" {
		t.Errorf("written tree = %v", got)
	}
	if len(got) != 4 {
		t.Errorf("wrote %d files, want 4", len(got))
	}
	if _, err := os.Stat(filepath.Join(out, "cursor", "keep.md")); err != nil {
		t.Errorf("other provider directory touched: %v", err)
	}

	util.AssertEqual(t, w.Root, filepath.Join(out, "claude-code"))
	util.AssertEqual(t, w.Digest, testTree(t).Digest())
	if want := []model.EntryRef{auditRef, colorRef}; !reflect.DeepEqual(w.Owners(), want) {
		t.Errorf("Owners() = %v, want %v", w.Owners(), want)
	}
	if n := len(w.EntriesFor(colorRef)); n != 2 {
		t.Errorf("EntriesFor(color) = %d entries, want 2", n)
	}
}

func TestWrite_EmptyTree(t *testing.T) {
	out := t.TempDir()
	util.WriteFile(t, filepath.Join(out, "codex", "previous.md"), "keep")

	_, err := Write(model.NewArtifactTree(model.Codex), out)

	var perr *Error
	if !errors.As(err, &perr) || !errors.Is(err, ErrEmptyTree) {
		t.Fatalf("Write() error = %v, want *Error wrapping ErrEmptyTree", err)
	}
	util.AssertEqual(t, perr.Provider, model.Codex)
	if _, err := os.Stat(filepath.Join(out, "codex", "previous.md")); err != nil {
		t.Error("empty tree must leave the existing output untouched")
	}
}

func TestArchive_Deterministic(t *testing.T) {
	var archives [][]byte
	var sums []string
	for i := 0; i < 2; i++ {
		out, downloads := t.TempDir(), t.TempDir()
		w, err := Write(testTree(t), out)
		util.AssertNoError(t, err)

		h, err := Archive(w, downloads)
		util.AssertNoError(t, err)
		util.AssertEqual(t, h.Path, filepath.Join(downloads, "claude-code.zip"))
		util.AssertEqual(t, h.Entries, 4)
		if !h.IsBundle() {
			t.Error("bundle handle should report IsBundle")
		}

		data, err := os.ReadFile(h.Path)
		util.AssertNoError(t, err)
		util.AssertEqual(t, h.Size, int64(len(data)))
		archives = append(archives, data)
		sums = append(sums, h.SHA256)
	}

	if !bytes.Equal(archives[0], archives[1]) {
		t.Error("archives from identical trees differ")
	}
	util.AssertEqual(t, sums[0], sums[1])
}

func TestArchive_EntryMetadata(t *testing.T) {
	w, err := Write(testTree(t), t.TempDir())
	util.AssertNoError(t, err)
	h, err := Archive(w, t.TempDir())
	util.AssertNoError(t, err)

	r, err := zip.OpenReader(h.Path)
	util.AssertNoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		if !f.Modified.Equal(archiveTime) {
			t.Errorf("%s: modified = %v, want %v", f.Name, f.Modified, archiveTime)
		}
		if f.Mode().Perm() != archiveMode {
			t.Errorf("%s: mode = %v, want %v", f.Name, f.Mode().Perm(), archiveMode)
		}
		if f.Method != zip.Deflate {
			t.Errorf("%s: method = %d, want deflate", f.Name, f.Method)
		}
	}
	if !reflect.DeepEqual(names, w.Paths()) {
		t.Errorf("entry order = %v, want %v", names, w.Paths())
	}
}

func TestArchive_UnpackReproducesTree(t *testing.T) {
	out, downloads, dest := t.TempDir(), t.TempDir(), t.TempDir()
	w, err := Write(testTree(t), out)
	util.AssertNoError(t, err)
	h, err := Archive(w, downloads)
	util.AssertNoError(t, err)

	_, err = Unpack(h.Path, dest)
	util.AssertNoError(t, err)

	want := util.ReadTree(t, w.Root)
	got := util.ReadTree(t, dest)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unpacked tree differs from written tree\ngot:  %v\nwant: %v", got, want)
	}
}

func TestExtractEntries(t *testing.T) {
	out, downloads := t.TempDir(), t.TempDir()
	util.WriteFile(t, filepath.Join(downloads, "claude-code", "command", "removed.zip"), "stale")

	w, err := Write(testTree(t), out)
	util.AssertNoError(t, err)

	handles, err := ExtractEntries(w, downloads)
	util.AssertNoError(t, err)
	if len(handles) != 2 {
		t.Fatalf("ExtractEntries() returned %d archives, want 2", len(handles))
	}
	if _, err := os.Stat(filepath.Join(downloads, "claude-code", "command", "removed.zip")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("stale entry archive survived")
	}

	tests := []struct {
		ref       model.EntryRef
		wantPaths []string
	}{
		{ref: auditRef, wantPaths: []string{".claude/commands/audit.md"}},
		{ref: colorRef, wantPaths: []string{".claude/skills/color/SKILL.md", ".claude/skills/color/reference/oklch.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.ref.String(), func(t *testing.T) {
			path, err := Locate(downloads, model.ClaudeCode, tt.ref.Kind, tt.ref.ID)
			util.AssertNoError(t, err)

			dest := t.TempDir()
			got, err := Unpack(path, dest)
			util.AssertNoError(t, err)
			if !reflect.DeepEqual(got, tt.wantPaths) {
				t.Errorf("archive entries = %v, want %v", got, tt.wantPaths)
			}
			for _, p := range tt.wantPaths {
				want, _ := os.ReadFile(filepath.Join(w.Root, filepath.FromSlash(p)))
				gotData, _ := os.ReadFile(filepath.Join(dest, filepath.FromSlash(p)))
				if !bytes.Equal(gotData, want) {
					t.Errorf("%s differs from the written file", p)
				}
			}
		})
	}
}

func TestManifest_RoundTrip(t *testing.T) {
	downloads := t.TempDir()
	w, err := Write(testTree(t), t.TempDir())
	util.AssertNoError(t, err)

	util.AssertNoError(t, SaveManifest(w, downloads))
	got, err := LoadManifest(downloads, model.ClaudeCode)
	util.AssertNoError(t, err)

	util.AssertEqual(t, got.Provider, w.Provider)
	util.AssertEqual(t, got.Digest, w.Digest)
	if !reflect.DeepEqual(got.Entries, w.Entries) {
		t.Errorf("entries = %v, want %v", got.Entries, w.Entries)
	}

	if _, err := LoadManifest(downloads, model.Gemini); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestLocate(t *testing.T) {
	downloads := t.TempDir()
	util.WriteFile(t, filepath.Join(downloads, "cursor.zip"), "zip")
	util.WriteFile(t, filepath.Join(downloads, "cursor", "skill", "color.zip"), "zip")

	tests := []struct {
		name     string
		provider model.Provider
		kind     model.Kind
		id       string
		want     string
		notExist bool
		wantErr  bool
	}{
		{name: "bundle", provider: model.Cursor, want: filepath.Join(downloads, "cursor.zip")},
		{name: "entry", provider: model.Cursor, kind: model.KindSkill, id: "color", want: filepath.Join(downloads, "cursor", "skill", "color.zip")},
		{name: "missing entry", provider: model.Cursor, kind: model.KindCommand, id: "color", notExist: true},
		{name: "missing bundle", provider: model.Codex, notExist: true},
		{name: "path traversal", provider: model.Cursor, kind: model.KindSkill, id: "../cursor", wantErr: true},
		{name: "unknown provider", provider: model.Provider("zed"), wantErr: true},
		{name: "shared kind", provider: model.Cursor, kind: model.KindShared, id: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(downloads, tt.provider, tt.kind, tt.id)
			switch {
			case tt.notExist:
				if !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("Locate() error = %v, want fs.ErrNotExist", err)
				}
			case tt.wantErr:
				if err == nil {
					t.Errorf("Locate() = %q, want error", got)
				}
			default:
				util.AssertNoError(t, err)
				util.AssertEqual(t, got, tt.want)
			}
		})
	}
}

func TestUnpack_RejectsEscapingEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archive)
	util.AssertNoError(t, err)
	zw := zip.NewWriter(f)
	fw, err := zw.Create("../evil.md")
	util.AssertNoError(t, err)
	_, _ = fw.Write([]byte("x"))
	util.AssertNoError(t, zw.Close())
	util.AssertNoError(t, f.Close())

	if _, err := Unpack(archive, t.TempDir()); err == nil {
		t.Error("expected Unpack to reject an entry outside dest")
	}
}

func TestCheckLayout(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")

	tests := []struct {
		name      string
		dist      string
		downloads string
		wantErr   bool
	}{
		{name: "downloads below dist", dist: dist, downloads: filepath.Join(dist, "downloads")},
		{name: "separate roots", dist: dist, downloads: filepath.Join(root, "public")},
		{name: "same directory", dist: dist, downloads: dist, wantErr: true},
		{name: "same directory unclean", dist: dist, downloads: dist + "/./", wantErr: true},
		{name: "downloads inside provider tree", dist: dist, downloads: filepath.Join(dist, "gemini", "zips"), wantErr: true},
		{name: "dist inside provider archives", dist: filepath.Join(root, "dl", "cursor", "dist"), downloads: filepath.Join(root, "dl"), wantErr: true},
		{name: "dist below downloads", dist: filepath.Join(root, "dl", "site"), downloads: filepath.Join(root, "dl")},
		{name: "provider-like sibling", dist: dist, downloads: filepath.Join(dist, "cursor-zips")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLayout(tt.dist, tt.downloads)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOverlappingLayout) {
				t.Errorf("expected ErrOverlappingLayout, got %v", err)
			}
		})
	}
}
