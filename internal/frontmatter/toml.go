package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// EncodeTOML marshals v as TOML.
func EncodeTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: toml: %v", ErrUnencodable, err)
	}
	return buf.Bytes(), nil
}

// DecodeTOML unmarshals TOML into v. Keys in data that v does not declare are an error,
// so a decoder catches headers written for a different schema.
func DecodeTOML(data []byte, v any) error {
	md, err := toml.Decode(string(data), v)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("failed to parse TOML: unknown key %q", undecoded[0].String())
	}
	return nil
}
