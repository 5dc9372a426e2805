package decision

import "errors"

// Predefined errors for the decision package.
var (
	// ErrNilConfig indicates the service was constructed without a project
	// configuration.
	ErrNilConfig = errors.New("project config is nil")

	// ErrVariableNotFound indicates the requested feature variable key is
	// not declared on the feature flag.
	ErrVariableNotFound = errors.New("feature variable not found")

	// ErrVariableTypeMismatch indicates the variable's declared type does
	// not match the requested accessor type.
	ErrVariableTypeMismatch = errors.New("feature variable type mismatch")
)
