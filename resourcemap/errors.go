package resourcemap

import (
	"errors"
	"fmt"
)

// Document error kinds.
var (
	// ErrMalformedDocument is returned when a document is not well-formed XML.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMalformedGraphSyntax is returned when a well-formed document is not
	// valid RDF/XML.
	ErrMalformedGraphSyntax = errors.New("malformed graph syntax")
)

// DocumentError reports a parse failure in one document.
type DocumentError struct {
	Path   string
	Line   int
	Err    error
	Detail string
}

func (e *DocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v: %s", e.Path, e.Line, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
