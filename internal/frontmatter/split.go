package frontmatter

import (
	"bytes"
)

// Delimiter marks the start and end of a header block.
type Delimiter string

const (
	// DelimiterYAML opens and closes YAML (and Flat) headers.
	DelimiterYAML Delimiter = "---"
	// DelimiterTOML opens and closes TOML headers.
	DelimiterTOML Delimiter = "+++"
)

// Result contains the split header and remaining body.
type Result struct {
	// Header contains the raw header bytes with line endings normalized to \n.
	Header []byte
	// Body contains the content after the closing delimiter.
	Body string
	// Delimiter is the delimiter that was found, empty if none.
	Delimiter Delimiter
	// Found indicates whether a complete header was found.
	Found bool
}

// Split extracts a "---" or "+++" delimited header from content. Content without a
// complete header is returned whole as the body.
func Split(content []byte) Result {
	for _, d := range []Delimiter{DelimiterYAML, DelimiterTOML} {
		open := []byte(d)
		if bytes.HasPrefix(content, append(open, '\n')) || bytes.HasPrefix(content, append(open, '\r', '\n')) {
			return extract(content, open, d)
		}
	}
	return Result{Body: string(content)}
}

func extract(content, delimiter []byte, d Delimiter) Result {
	remaining := content[len(delimiter):]
	remaining = trimLineEnding(remaining)

	var header []byte
	var bodyStart int
	found := false

	if bytes.HasPrefix(remaining, delimiter) {
		// empty header: ---\n---\n
		header = []byte{}
		bodyStart = len(delimiter)
		found = true
	} else {
		for _, nl := range [][]byte{[]byte("\n"), []byte("\r\n")} {
			closing := append(append([]byte{}, nl...), delimiter...)
			if idx := bytes.Index(remaining, closing); idx != -1 {
				header = remaining[:idx]
				bodyStart = idx + len(closing)
				found = true
				break
			}
		}
	}

	if !found {
		return Result{Body: string(content)}
	}

	header = bytes.ReplaceAll(header, []byte("\r\n"), []byte("\n"))
	header = bytes.TrimRight(header, "\r")

	var body string
	if bodyStart < len(remaining) {
		body = string(trimLineEnding(remaining[bodyStart:]))
	}

	return Result{
		Header:    header,
		Body:      body,
		Delimiter: d,
		Found:     true,
	}
}

func trimLineEnding(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}

// Compose renders a delimited header followed by a blank line and the body.
// The header is expected to end with a newline.
func Compose(d Delimiter, header []byte, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(d))
	buf.WriteByte('\n')
	buf.Write(header)
	if len(header) > 0 && header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(string(d))
	buf.WriteString("\n\n")
	buf.WriteString(body)
	return buf.Bytes()
}
