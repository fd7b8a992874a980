// Package loader imports mesh and texture assets from disk or a reader stream
// and caches the results. The file format is abstracted behind a generic
// backend; Wavefront OBJ is the only mesh format currently implemented.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/model"
)

// LoaderBackendType identifies the mesh file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string]*model.Mesh

	backend loaderBackend
}

// Loader loads and caches mesh and texture assets. Meshes are cached by file
// path (or by the explicit name given to LoadMeshReader); a second load of the
// same key returns the cached mesh without touching the backend.
type Loader interface {
	// LoadMesh imports a mesh file and caches the result by path.
	// The backend is selected based on the file extension (.obj → OBJ backend).
	//
	// Parameters:
	//   - path: the file path to the mesh file
	//
	// Returns:
	//   - *model.Mesh: the loaded and cached mesh
	//   - error: an error if reading or parsing fails
	LoadMesh(path string) (*model.Mesh, error)

	// LoadMeshReader imports a mesh from a named asset blob and caches it by
	// the given name. The data must be in the backend's format.
	//
	// Parameters:
	//   - name: the cache key and mesh identifier
	//   - data: the raw mesh file contents
	//
	// Returns:
	//   - *model.Mesh: the loaded mesh
	//   - error: an error if parsing fails
	LoadMeshReader(name string, data []byte) (*model.Mesh, error)

	// LoadTexture reads an image file into an ImportedTexture. The pixels are
	// decoded lazily by ImportedTexture.Decode.
	//
	// Parameters:
	//   - path: the file path to the PNG or JPEG image
	//
	// Returns:
	//   - *common.ImportedTexture: the texture with raw image bytes
	//   - error: an error if reading fails
	LoadTexture(path string) (*common.ImportedTexture, error)

	// Get retrieves a cached mesh by key. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.Mesh: the cached mesh or nil
	Get(name string) *model.Mesh

	// Meshes returns a copy of the full mesh cache.
	//
	// Returns:
	//   - map[string]*model.Mesh: all cached meshes keyed by name
	Meshes() map[string]*model.Mesh
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		meshCache: make(map[string]*model.Mesh),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadMesh(path string) (*model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	mesh, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.meshCache[path] = mesh
	l.mu.Unlock()

	return mesh, nil
}

func (l *loader) LoadMeshReader(name string, data []byte) (*model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	mesh, err := l.backend.LoadBytes(name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh %q: %w", name, err)
	}

	l.mu.Lock()
	l.meshCache[name] = mesh
	l.mu.Unlock()

	return mesh, nil
}

func (l *loader) LoadTexture(path string) (*common.ImportedTexture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &common.ImportedTexture{
		Name: name,
		Path: path,
		Data: data,
	}, nil
}

func (l *loader) Get(name string) *model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Meshes() map[string]*model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.Mesh, len(l.meshCache))
	for k, v := range l.meshCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file
// extension. Currently only Wavefront OBJ is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}
