package transform

import (
	"strconv"
	"strings"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// document joins non-empty sections with one blank line and ends with a newline.
func document(sections ...string) string {
	var parts []string
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// processSection renders steps as a numbered "Process" list.
func processSection(steps []string) string {
	if len(steps) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Process\n\n")
	for i, step := range steps {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". ")
		sb.WriteString(step)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// focusSection renders a skill's focus areas as a bullet list.
func focusSection(areas []model.FocusArea) string {
	if len(areas) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Focus Areas\n\n")
	for _, fa := range areas {
		sb.WriteString("- **")
		sb.WriteString(fa.Area)
		sb.WriteString("**")
		if fa.Detail != "" {
			sb.WriteString(": ")
			sb.WriteString(fa.Detail)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// fileSections inlines supplementary skill files for providers without skill directories.
func fileSections(files []model.File) string {
	var sections []string
	for _, f := range files {
		sections = append(sections, "## File: "+f.Path+"\n\n"+strings.TrimSpace(string(f.Content)))
	}
	return strings.Join(sections, "\n\n")
}

// renderPatterns renders every pattern pair with its items verbatim.
func renderPatterns(pairs []model.PatternPair) []byte {
	var sb strings.Builder
	sb.WriteString("# Design Patterns\n")
	for _, p := range pairs {
		sb.WriteString("\n## ")
		sb.WriteString(p.Name)
		sb.WriteByte('\n')
		writeItems(&sb, "Do", p.Do)
		writeItems(&sb, "Don't", p.Dont)
	}
	return []byte(sb.String())
}

func writeItems(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n### ")
	sb.WriteString(heading)
	sb.WriteString("\n\n")
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteByte('\n')
	}
}
