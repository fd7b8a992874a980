package background

import "errors"

// ErrNotCreated is returned by per-frame methods invoked before Create.
var ErrNotCreated = errors.New("background renderer not created: call Create first")
