package inpaint

import "errors"

// ErrNotCreated is returned by per-frame methods invoked before Create.
var ErrNotCreated = errors.New("inpaint renderer not created: call Create first")
