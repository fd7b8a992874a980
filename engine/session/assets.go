package session

import (
	"io/fs"
	"os"
	"path/filepath"
)

// AssetProvider supplies shader source text and mesh/texture asset bytes by
// logical name. Assets are read at renderer creation time only; per-frame code
// never touches the provider.
type AssetProvider interface {
	// Asset returns the raw bytes of the named asset.
	//
	// Parameters:
	//   - name: the logical asset name, a slash-separated relative path
	//
	// Returns:
	//   - []byte: the asset contents
	//   - error: a *AssetLoadError if the asset cannot be read
	Asset(name string) ([]byte, error)
}

// fsAssetProvider serves assets from an fs.FS.
type fsAssetProvider struct {
	fsys fs.FS
}

var _ AssetProvider = &fsAssetProvider{}

// NewFSAssetProvider creates an AssetProvider backed by the given filesystem,
// typically an embed.FS holding the shipped shader and mesh assets.
//
// Parameters:
//   - fsys: the filesystem to read assets from
//
// Returns:
//   - AssetProvider: the provider
func NewFSAssetProvider(fsys fs.FS) AssetProvider {
	return &fsAssetProvider{fsys: fsys}
}

// NewDirAssetProvider creates an AssetProvider reading assets from a directory
// on disk, for development and replay sessions.
//
// Parameters:
//   - dir: the root directory containing the assets
//
// Returns:
//   - AssetProvider: the provider
func NewDirAssetProvider(dir string) AssetProvider {
	return &fsAssetProvider{fsys: os.DirFS(filepath.Clean(dir))}
}

func (p *fsAssetProvider) Asset(name string) ([]byte, error) {
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return nil, &AssetLoadError{Name: name, Err: err}
	}
	return data, nil
}
