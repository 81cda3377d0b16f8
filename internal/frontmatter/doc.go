// Package frontmatter splits metadata headers from markdown bodies and provides the
// encoder/decoder pairs each provider uses for its metadata:
//
//   - YAML, delimited by "---" (canonical sources, Claude Code)
//   - TOML, delimited by "+++" or as a whole file (Gemini)
//   - Flat, a quoted "key: value" header delimited by "---" (Codex)
//
// Every codec round-trips: decoding an encoded header yields the original values.
package frontmatter
