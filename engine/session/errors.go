package session

import "fmt"

// AssetLoadError reports that a shader, mesh, or texture asset could not be
// read. Creation of the renderer that requested the asset fails atomically;
// no partial GPU state is retained.
type AssetLoadError struct {
	// Name is the logical asset name that failed to load.
	Name string

	// Err is the underlying read error.
	Err error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("asset %q failed to load: %v", e.Name, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}
