package schema

import "errors"

var (
	// ErrEmptyDocument indicates a schema document without content.
	ErrEmptyDocument = errors.New("schema: document is empty")
	// ErrMalformed indicates a document that does not have the bundle shape.
	ErrMalformed = errors.New("schema: malformed bundle")
	// ErrInvalidBundle wraps lint or structural validation failures.
	ErrInvalidBundle = errors.New("schema: invalid bundle")
)
