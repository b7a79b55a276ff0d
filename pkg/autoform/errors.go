package autoform

import "errors"

var (
	// ErrUnusableSchema is returned when the bound model is missing or
	// declares neither field types nor model types.
	ErrUnusableSchema = errors.New("autoform: unusable schema")
	// ErrMissingCardinality is returned when a typed field has no cardinality.
	ErrMissingCardinality = errors.New("autoform: missing cardinality")
	// ErrUnknownCardinality is returned for cardinalities without a layout.
	ErrUnknownCardinality = errors.New("autoform: unknown cardinality")
	// ErrUnknownNode is returned when a node id or field cannot be found.
	ErrUnknownNode = errors.New("autoform: unknown node")
	// ErrNotRendered is returned by operations that need a rendered node.
	ErrNotRendered = errors.New("autoform: node not rendered")
)

// ErrLastInstance is returned when removing the only instance of a field.
var ErrLastInstance = errors.New("autoform: cannot remove last instance")
