package object

import "errors"

var (
	// ErrNotCreated is returned by per-frame methods invoked before Create.
	ErrNotCreated = errors.New("object renderer not created: call Create first")

	// ErrAlreadyCreated is returned when Create is called a second time.
	ErrAlreadyCreated = errors.New("object renderer already created")

	// ErrNilMesh is returned when Create is called without a mesh.
	ErrNilMesh = errors.New("object renderer requires a mesh")
)
