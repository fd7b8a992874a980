package loader

import (
	"github.com/arlab/depthscene/engine/model"
)

// loaderBackend defines the generic interface for loading meshes from files or
// raw bytes. Concrete implementations (e.g., objLoaderBackend) handle
// format-specific details.
type loaderBackend interface {
	// Load imports a mesh from the given file path. The mesh name is derived
	// from the file name.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Mesh: the imported mesh
	//   - error: an error if reading or parsing fails
	Load(path string) (*model.Mesh, error)

	// LoadBytes imports a mesh from raw file contents.
	//
	// Parameters:
	//   - name: the mesh identifier
	//   - data: the raw mesh file contents
	//
	// Returns:
	//   - *model.Mesh: the imported mesh
	//   - error: an error if parsing fails
	LoadBytes(name string, data []byte) (*model.Mesh, error)
}
