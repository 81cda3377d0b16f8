package transform

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pbakaus/vibe-design-plugins/internal/frontmatter"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	commands := []model.Command{
		{
			ID:          "audit",
			Description: "Find problems",
			Category:    model.CategoryDiagnostic,
			Steps:       []string{"Scan", "Report"},
			Relationships: model.Relationships{
				CombinesWith: []string{"polish", "ghost"},
				LeadsTo:      []string{"polish"},
			},
			Ready: true,
			Body:  "Check everything.",
		},
		{
			ID:            "polish",
			Description:   "Final pass: details, alignment",
			Category:      model.CategoryQuality,
			Relationships: model.Relationships{Pairs: "missing"},
			Body:          "Polish it.",
		},
	}
	skills := []model.Skill{
		{
			ID:          "ux-writing",
			Description: "Write \"clear\" copy",
			FocusAreas:  []model.FocusArea{{Area: "Labels", Detail: "Use verbs"}, {Area: "Errors"}},
			Ready:       true,
			Body:        "Words matter.",
			Files:       []model.File{{Path: "reference/tone.md", Content: []byte("# Tone\n")}},
		},
	}
	patterns := model.PairPatterns(
		[]model.PatternCategory{{Name: "diagnostic", Items: []string{"Check contrast"}}},
		[]model.PatternCategory{{Name: "diagnostic", Items: []string{"Skip review"}}},
	)

	m, err := model.New(commands, skills, patterns)
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m
}

func get(tree *model.ArtifactTree, p string) ([]byte, bool) {
	for _, a := range tree.Entries() {
		if a.Path == p {
			return a.Content, true
		}
	}
	return nil, false
}

func TestTransform_RejectsMissingEntry(t *testing.T) {
	original := registry[model.Cursor]
	t.Cleanup(func() { registry[model.Cursor] = original })

	// Drop every skill rule to simulate a transformer that forgets an entry.
	registry[model.Cursor] = func(m *model.Model) (*model.ArtifactTree, error) {
		full, err := original(m)
		if err != nil {
			return nil, err
		}
		tree := model.NewArtifactTree(model.Cursor)
		for _, a := range full.Entries() {
			if a.Owner.Kind == model.KindSkill {
				continue
			}
			if err := tree.Add(a.Path, a.Content, a.Owner); err != nil {
				return nil, err
			}
		}
		return tree, nil
	}

	_, err := Transform(model.Cursor, testModel(t))
	if !errors.Is(err, ErrMissingEntry) {
		t.Fatalf("Transform() error = %v, want ErrMissingEntry", err)
	}
	var terr *Error
	if !errors.As(err, &terr) || terr.ID != "ux-writing" || terr.Provider != model.Cursor {
		t.Errorf("error = %+v", terr)
	}
}

func TestAll_IncludesEveryEntry(t *testing.T) {
	m := testModel(t)

	trees, err := All(m)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(trees) != len(model.AllProviders()) {
		t.Fatalf("All() returned %d trees, want %d", len(trees), len(model.AllProviders()))
	}

	for p, tree := range trees {
		if tree.Provider() != p {
			t.Errorf("tree for %s reports provider %s", p, tree.Provider())
		}
		owners := make(map[model.EntryRef]bool)
		for _, o := range tree.Owners() {
			owners[o] = true
		}
		for _, ref := range m.Refs() {
			if !owners[ref] {
				t.Errorf("%s: entry %s missing from tree", p, ref)
			}
		}
		if !owners[patternsOwner] {
			t.Errorf("%s: pattern document missing", p)
		}
	}
}

func TestAll_Deterministic(t *testing.T) {
	first, err := All(testModel(t))
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	second, err := All(testModel(t))
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	for _, p := range model.AllProviders() {
		if first[p].Digest() != second[p].Digest() {
			t.Errorf("%s: digests differ between identical runs", p)
		}
	}
}

func TestAll_NoDanglingReferences(t *testing.T) {
	trees, err := All(testModel(t))
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	for p, tree := range trees {
		for _, a := range tree.Entries() {
			if strings.Contains(string(a.Content), "ghost") || strings.Contains(string(a.Content), "missing") {
				t.Errorf("%s: %s contains a dangling reference", p, a.Path)
			}
		}
	}
}

func TestCursor(t *testing.T) {
	tree, err := Cursor(testModel(t))
	if err != nil {
		t.Fatalf("Cursor() error = %v", err)
	}

	wantPaths := []string{
		".cursor/commands/audit.md",
		".cursor/commands/polish.md",
		".cursor/rules/_design-patterns.md",
		".cursor/rules/ux-writing.md",
	}
	if got := tree.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Fatalf("paths = %v, want %v", got, wantPaths)
	}

	audit, _ := get(tree, ".cursor/commands/audit.md")
	want := "# /audit\n\nFind problems\n\n## Process\n\n1. Scan\n2. Report\n\nCheck everything.\n"
	if string(audit) != want {
		t.Errorf("audit =\n%q\nwant\n%q", audit, want)
	}
	if frontmatter.Split(audit).Found {
		t.Error("cursor command must not carry a metadata header")
	}
	if strings.Contains(string(audit), "combines") || strings.Contains(string(audit), "polish") {
		t.Error("cursor command must not carry relationships")
	}

	rule, _ := get(tree, ".cursor/rules/ux-writing.md")
	for _, s := range []string{"# UX Writing", "Write \"clear\" copy", "- **Labels**: Use verbs", "- **Errors**\n", "Words matter.", "## File: reference/tone.md", "# Tone"} {
		if !strings.Contains(string(rule), s) {
			t.Errorf("flattened skill missing %q:\n%s", s, rule)
		}
	}
}

func TestClaudeCode(t *testing.T) {
	tree, err := ClaudeCode(testModel(t))
	if err != nil {
		t.Fatalf("ClaudeCode() error = %v", err)
	}

	wantPaths := []string{
		".claude/commands/audit.md",
		".claude/commands/polish.md",
		".claude/design-patterns.md",
		".claude/skills/ux-writing/SKILL.md",
		".claude/skills/ux-writing/reference/tone.md",
	}
	if got := tree.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Fatalf("paths = %v, want %v", got, wantPaths)
	}

	audit, _ := get(tree, ".claude/commands/audit.md")
	split := frontmatter.Split(audit)
	if !split.Found || split.Delimiter != frontmatter.DelimiterYAML {
		t.Fatalf("expected YAML header:\n%s", audit)
	}
	var hdr claudeCommandHeader
	if err := frontmatter.DecodeYAML(split.Header, &hdr); err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	want := claudeCommandHeader{
		Name:         "audit",
		Description:  "Find problems",
		Category:     "diagnostic",
		Steps:        []string{"Scan", "Report"},
		CombinesWith: []string{"polish"},
		LeadsTo:      []string{"polish"},
	}
	if !reflect.DeepEqual(hdr, want) {
		t.Errorf("header = %+v, want %+v", hdr, want)
	}
	if strings.TrimSpace(split.Body) != "Check everything." {
		t.Errorf("body = %q", split.Body)
	}

	polish, _ := get(tree, ".claude/commands/polish.md")
	if strings.Contains(string(polish), "pairs") {
		t.Errorf("unresolved pairs reference must be dropped:\n%s", polish)
	}

	ref, _ := get(tree, ".claude/skills/ux-writing/reference/tone.md")
	if string(ref) != "# Tone\n" {
		t.Errorf("supplementary file = %q, want verbatim copy", ref)
	}
}

func TestGemini(t *testing.T) {
	tree, err := Gemini(testModel(t))
	if err != nil {
		t.Fatalf("Gemini() error = %v", err)
	}

	data, ok := get(tree, ".gemini/commands/audit.toml")
	if !ok {
		t.Fatalf("missing gemini command, paths = %v", tree.Paths())
	}
	var cmd geminiCommand
	if err := frontmatter.DecodeTOML(data, &cmd); err != nil {
		t.Fatalf("DecodeTOML() error = %v\n%s", err, data)
	}
	want := geminiCommand{Description: "Find problems", Category: "diagnostic", Steps: []string{"Scan", "Report"}, Prompt: "Check everything."}
	if !reflect.DeepEqual(cmd, want) {
		t.Errorf("command = %+v, want %+v", cmd, want)
	}

	skill, _ := get(tree, ".gemini/skills/ux-writing/SKILL.md")
	split := frontmatter.Split(skill)
	if split.Delimiter != frontmatter.DelimiterTOML {
		t.Fatalf("expected +++ header:\n%s", skill)
	}
	var hdr geminiSkillHeader
	if err := frontmatter.DecodeTOML(split.Header, &hdr); err != nil {
		t.Fatalf("DecodeTOML() error = %v", err)
	}
	if hdr.Name != "ux-writing" || hdr.Description != "Write \"clear\" copy" {
		t.Errorf("skill header = %+v", hdr)
	}
	if _, ok := get(tree, ".gemini/skills/ux-writing/reference/tone.md"); !ok {
		t.Error("gemini skill must keep supplementary files")
	}
}

func TestCodex(t *testing.T) {
	tree, err := Codex(testModel(t))
	if err != nil {
		t.Fatalf("Codex() error = %v", err)
	}

	data, ok := get(tree, ".codex/prompts/audit.md")
	if !ok {
		t.Fatalf("missing codex prompt, paths = %v", tree.Paths())
	}
	split := frontmatter.Split(data)
	fields, err := frontmatter.DecodeFlat(split.Header)
	if err != nil {
		t.Fatalf("DecodeFlat() error = %v", err)
	}
	want := []frontmatter.Field{
		frontmatter.Scalar("description", "Find problems"),
		frontmatter.Scalar("category", "diagnostic"),
		frontmatter.List("steps", []string{"Scan", "Report"}),
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("fields = %#v, want %#v", fields, want)
	}

	polish, _ := get(tree, ".codex/prompts/polish.md")
	fields, err = frontmatter.DecodeFlat(frontmatter.Split(polish).Header)
	if err != nil {
		t.Fatalf("DecodeFlat() error = %v", err)
	}
	if desc, _ := frontmatter.Lookup(fields, "description"); desc.Value != "Final pass: details, alignment" {
		t.Errorf("description = %q", desc.Value)
	}
	if _, ok := frontmatter.Lookup(fields, "steps"); ok {
		t.Error("commands without steps should not emit a steps field")
	}

	skill, _ := get(tree, ".codex/skills/ux-writing/SKILL.md")
	fields, err = frontmatter.DecodeFlat(frontmatter.Split(skill).Header)
	if err != nil {
		t.Fatalf("DecodeFlat() error = %v", err)
	}
	if name, _ := frontmatter.Lookup(fields, "name"); name.Value != "ux-writing" {
		t.Errorf("name = %q", name.Value)
	}
}

func TestPatternsRenderedVerbatim(t *testing.T) {
	trees, err := All(testModel(t))
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	want := "# Design Patterns\n\n## diagnostic\n\n### Do\n\n- Check contrast\n\n### Don't\n\n- Skip review\n"
	for p, tree := range trees {
		for _, a := range tree.Entries() {
			if a.Owner == patternsOwner && string(a.Content) != want {
				t.Errorf("%s: patterns =\n%q\nwant\n%q", p, a.Content, want)
			}
		}
	}
}

func TestKebabProviders_RejectIllegalIDs(t *testing.T) {
	m, err := model.New(nil, []model.Skill{{ID: "UX_Writing", Description: "Writing", Body: "Body."}}, nil)
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}

	tests := []struct {
		provider model.Provider
		wantErr  bool
	}{
		{provider: model.Cursor, wantErr: false},
		{provider: model.ClaudeCode, wantErr: false},
		{provider: model.Gemini, wantErr: true},
		{provider: model.Codex, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			_, err := Transform(tt.provider, m)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Transform() error = %v", err)
				}
				return
			}
			var terr *Error
			if !errors.As(err, &terr) {
				t.Fatalf("Transform() error = %v, want *Error", err)
			}
			if terr.Provider != tt.provider || terr.ID != "UX_Writing" {
				t.Errorf("error = %+v", terr)
			}
		})
	}
}

func TestCursor_SkillNamedLikePatternDocument(t *testing.T) {
	m, err := model.New(nil,
		[]model.Skill{{ID: "design-patterns", Description: "Shares a name with the pattern document", Body: "Skill body."}},
		model.PairPatterns([]model.PatternCategory{{Name: "x", Items: []string{"y"}}}, nil),
	)
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}

	trees, err := All(m)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	cursor := trees[model.Cursor]
	skill, ok := get(cursor, ".cursor/rules/design-patterns.md")
	if !ok || !strings.Contains(string(skill), "Skill body.") {
		t.Errorf("skill rule = %q, want the skill body", skill)
	}
	doc, ok := get(cursor, ".cursor/rules/_design-patterns.md")
	if !ok || !strings.HasPrefix(string(doc), "# Design Patterns") {
		t.Errorf("pattern document = %q", doc)
	}
}

func TestTransform_UnknownProvider(t *testing.T) {
	_, err := Transform(model.Provider("zed"), testModel(t))
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Transform() error = %v, want ErrUnknownProvider", err)
	}
}

func TestTransform_EmptyModel(t *testing.T) {
	m, err := model.New(nil, nil, nil)
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	for _, p := range model.AllProviders() {
		tree, err := Transform(p, m)
		if err != nil {
			t.Fatalf("%s: Transform() error = %v", p, err)
		}
		if !tree.IsEmpty() {
			t.Errorf("%s: expected empty tree for empty model", p)
		}
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Provider: model.Codex, ID: "Bad", Err: errors.New("boom")}
	if err.Error() != "transform codex (Bad): boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	err = &Error{Provider: model.Codex, Err: ErrEmptyTree}
	if !errors.Is(err, ErrEmptyTree) {
		t.Error("expected Unwrap to expose ErrEmptyTree")
	}
}
