package frontmatter

import "errors"

// ErrUnencodable is returned when a value cannot be represented in a codec.
var ErrUnencodable = errors.New("value cannot be encoded")
