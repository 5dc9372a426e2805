package experimentkit

import "errors"

// ErrNilConfig is returned by New when the project configuration is nil.
var ErrNilConfig = errors.New("project config is nil")
