package scene

import "errors"

// ErrNotCreated is returned by DrawFrame when called before Create.
var ErrNotCreated = errors.New("scene not created: call Create first")
