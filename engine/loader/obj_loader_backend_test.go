package loader

import (
	"strings"
	"testing"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestLoadBytesQuad(t *testing.T) {
	b := newOBJLoaderBackend()
	mesh, err := b.LoadBytes("quad", []byte(quadOBJ))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	if mesh.VertexCount != 4 {
		t.Errorf("vertex count = %d, want 4", mesh.VertexCount)
	}
	// One quad fan-triangulates into two triangles.
	if got := mesh.IndexCount(); got != 6 {
		t.Errorf("index count = %d, want 6", got)
	}
	wantIndices := []uint16{0, 1, 2, 0, 2, 3}
	for i, want := range wantIndices {
		if mesh.Indices[i] != want {
			t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], want)
		}
	}

	// Packed layout: positions, then normals, then texcoords.
	if mesh.PositionsOffset != 0 {
		t.Errorf("positions offset = %d, want 0", mesh.PositionsOffset)
	}
	if want := uint64(4*3) * 4; mesh.NormalsOffset != want {
		t.Errorf("normals offset = %d, want %d", mesh.NormalsOffset, want)
	}
	if want := uint64(4*3+4*3) * 4; mesh.TexCoordsOffset != want {
		t.Errorf("texcoords offset = %d, want %d", mesh.TexCoordsOffset, want)
	}

	// All four vertices share the single normal.
	normals := mesh.Vertices[4*3 : 4*3+4*3]
	for i := 0; i < 4; i++ {
		if normals[i*3] != 0 || normals[i*3+1] != 0 || normals[i*3+2] != 1 {
			t.Errorf("vertex %d normal = %v, want (0 0 1)", i, normals[i*3:i*3+3])
		}
	}
}

func TestLoadBytesSharedCorners(t *testing.T) {
	// Two triangles sharing an edge: corners 2 and 3 are identical triples and
	// must collapse into shared vertices.
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	b := newOBJLoaderBackend()
	mesh, err := b.LoadBytes("shared", []byte(src))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if mesh.VertexCount != 4 {
		t.Errorf("vertex count = %d, want 4 (shared corners deduplicated)", mesh.VertexCount)
	}
	if got := mesh.IndexCount(); got != 6 {
		t.Errorf("index count = %d, want 6", got)
	}
}

func TestLoadBytesNegativeAndSparseRefs(t *testing.T) {
	// v//vn corners with negative indices counting back from the pool end.
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f -3//-1 -2//-1 -1//-1
`
	b := newOBJLoaderBackend()
	mesh, err := b.LoadBytes("negative", []byte(src))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if mesh.VertexCount != 3 {
		t.Errorf("vertex count = %d, want 3", mesh.VertexCount)
	}
	// Unreferenced texcoords default to (0, 0).
	tc := mesh.Vertices[len(mesh.Vertices)-6:]
	for i, v := range tc {
		if v != 0 {
			t.Errorf("texcoord float %d = %v, want 0", i, v)
		}
	}
}

func TestLoadBytesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no faces", "v 0 0 0\n", "has no faces"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n", "out of range"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "need at least 3"},
		{"bad float", "v a b c\n", "vertex"},
	}
	b := newOBJLoaderBackend()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.LoadBytes("bad", []byte(tt.src))
			if err == nil {
				t.Fatalf("LoadBytes accepted malformed input")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoaderCachesByName(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)
	first, err := l.LoadMeshReader("quad", []byte(quadOBJ))
	if err != nil {
		t.Fatalf("LoadMeshReader: %v", err)
	}
	second, err := l.LoadMeshReader("quad", []byte("not an obj"))
	if err != nil {
		t.Fatalf("LoadMeshReader cached: %v", err)
	}
	if first != second {
		t.Errorf("second load did not return the cached mesh")
	}
	if l.Get("quad") != first {
		t.Errorf("Get did not return the cached mesh")
	}
}

func TestLoadMeshRejectsUnknownExtension(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)
	if _, err := l.LoadMesh("model.gltf"); err == nil || !strings.Contains(err.Error(), "unsupported mesh format") {
		t.Fatalf("LoadMesh: got %v, want unsupported format error", err)
	}
}
