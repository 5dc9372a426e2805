package condition

import "errors"

// Predefined errors for the condition package.
var (
	// ErrMalformedTree indicates a structurally invalid condition tree.
	ErrMalformedTree = errors.New("malformed condition tree")

	// ErrUnknownMatchType indicates a leaf with an unsupported match type.
	ErrUnknownMatchType = errors.New("unknown condition match type")
)
