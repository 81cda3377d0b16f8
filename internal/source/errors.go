package source

import "fmt"

// ParseError reports a definition that cannot be loaded. Any ParseError aborts the load.
type ParseError struct {
	// Path is the source file, relative to the source root.
	Path string
	// ID is the entry id when it is known.
	ID string
	// Field is the frontmatter field at fault, empty when the whole file is.
	Field string
	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	msg := "parse " + e.Path
	if e.ID != "" {
		msg += fmt.Sprintf(" (%s)", e.ID)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}
