package frontmatter

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field is one entry of a Flat header. A field is either a scalar or a list.
type Field struct {
	Key    string
	Value  string
	List   []string
	IsList bool
}

// Scalar returns a scalar field.
func Scalar(key, value string) Field {
	return Field{Key: key, Value: value}
}

// List returns a list field.
func List(key string, items []string) Field {
	return Field{Key: key, List: items, IsList: true}
}

// EncodeFlat renders fields one per line in the given order:
//
//	description: "Find problems"
//	steps: ["Scan", "Report"]
//
// Values are Go-quoted so any single- or multi-line string survives; the output is also
// valid YAML, which lets YAML-reading tools consume it.
func EncodeFlat(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !validFlatKey(f.Key) {
			return nil, fmt.Errorf("%w: flat header key %q", ErrUnencodable, f.Key)
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("%w: duplicate flat header key %q", ErrUnencodable, f.Key)
		}
		seen[f.Key] = true

		buf.WriteString(f.Key)
		buf.WriteString(": ")
		if f.IsList {
			buf.WriteByte('[')
			for i, item := range f.List {
				if !utf8.ValidString(item) {
					return nil, fmt.Errorf("%w: flat header %q has invalid UTF-8", ErrUnencodable, f.Key)
				}
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(strconv.Quote(item))
			}
			buf.WriteByte(']')
		} else {
			if !utf8.ValidString(f.Value) {
				return nil, fmt.Errorf("%w: flat header %q has invalid UTF-8", ErrUnencodable, f.Key)
			}
			buf.WriteString(strconv.Quote(f.Value))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// DecodeFlat parses a header produced by EncodeFlat.
func DecodeFlat(data []byte) ([]Field, error) {
	var fields []Field
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		key, raw, ok := strings.Cut(text, ": ")
		if !ok || !validFlatKey(key) {
			return nil, fmt.Errorf("flat header line %d: expected `key: value`, got %q", line, text)
		}

		if strings.HasPrefix(raw, "[") {
			items, err := parseQuotedList(raw)
			if err != nil {
				return nil, fmt.Errorf("flat header line %d: %w", line, err)
			}
			fields = append(fields, List(key, items))
			continue
		}

		value, err := strconv.Unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("flat header line %d: invalid quoted value %q: %w", line, raw, err)
		}
		fields = append(fields, Scalar(key, value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flat header: %w", err)
	}
	return fields, nil
}

// Lookup returns the first field with key.
func Lookup(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func parseQuotedList(raw string) ([]string, error) {
	if !strings.HasSuffix(raw, "]") {
		return nil, fmt.Errorf("unterminated list %q", raw)
	}
	rest := raw[1 : len(raw)-1]
	items := []string{}
	for rest != "" {
		quoted, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid list item in %q: %w", raw, err)
		}
		item, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("invalid list item %q: %w", quoted, err)
		}
		items = append(items, item)
		rest = rest[len(quoted):]
		if rest == "" {
			break
		}
		if !strings.HasPrefix(rest, ", ") {
			return nil, fmt.Errorf("expected `, ` between list items in %q", raw)
		}
		rest = rest[2:]
	}
	return items, nil
}

func validFlatKey(key string) bool {
	if key == "" || key[0] < 'a' || key[0] > 'z' {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
