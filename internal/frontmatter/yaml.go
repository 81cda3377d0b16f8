package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeYAML marshals v as a YAML header body with two-space indentation.
// Use structs rather than maps so field order is stable.
func EncodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrUnencodable, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrUnencodable, err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML unmarshals a YAML header into v.
func DecodeYAML(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	return nil
}
