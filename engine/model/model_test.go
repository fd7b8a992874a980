package model

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func triangleAttributes() (positions, normals, texCoords []float32, indices []uint32) {
	positions = []float32{
		0, 0, 0,
		3, 0, 0,
		0, 4, 0,
	}
	normals = []float32{
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	}
	texCoords = []float32{
		0, 0,
		1, 0,
		0, 1,
	}
	indices = []uint32{0, 1, 2}
	return
}

func TestNewMeshPacking(t *testing.T) {
	positions, normals, texCoords, indices := triangleAttributes()
	mesh, err := NewMesh("triangle", positions, normals, texCoords, indices)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	if mesh.VertexCount != 3 {
		t.Errorf("vertex count = %d, want 3", mesh.VertexCount)
	}
	if got := mesh.IndexCount(); got != 3 {
		t.Errorf("index count = %d, want 3", got)
	}

	// Blocks pack back to back: positions, normals, texcoords.
	if mesh.PositionsOffset != 0 {
		t.Errorf("positions offset = %d, want 0", mesh.PositionsOffset)
	}
	if want := uint64(9 * 4); mesh.NormalsOffset != want {
		t.Errorf("normals offset = %d, want %d", mesh.NormalsOffset, want)
	}
	if want := uint64(18 * 4); mesh.TexCoordsOffset != want {
		t.Errorf("texcoords offset = %d, want %d", mesh.TexCoordsOffset, want)
	}
	if want := 9 + 9 + 6; len(mesh.Vertices) != want {
		t.Fatalf("packed float count = %d, want %d", len(mesh.Vertices), want)
	}

	for i, v := range positions {
		if mesh.Vertices[i] != v {
			t.Errorf("position float %d = %v, want %v", i, mesh.Vertices[i], v)
		}
	}
	for i, v := range normals {
		if mesh.Vertices[9+i] != v {
			t.Errorf("normal float %d = %v, want %v", i, mesh.Vertices[9+i], v)
		}
	}
	for i, v := range texCoords {
		if mesh.Vertices[18+i] != v {
			t.Errorf("texcoord float %d = %v, want %v", i, mesh.Vertices[18+i], v)
		}
	}
}

func TestNewMeshBoundingRadius(t *testing.T) {
	positions, normals, texCoords, indices := triangleAttributes()
	mesh, err := NewMesh("triangle", positions, normals, texCoords, indices)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	// The (0, 4, 0) vertex is the farthest from the origin.
	if math.Abs(float64(mesh.BoundingRadius-4)) > 1e-6 {
		t.Errorf("bounding radius = %v, want 4", mesh.BoundingRadius)
	}
}

func TestNewMeshAttributeMismatch(t *testing.T) {
	positions, normals, texCoords, indices := triangleAttributes()
	tests := []struct {
		name string
		run  func() error
		want string
	}{
		{
			"empty positions",
			func() error {
				_, err := NewMesh("m", nil, normals, texCoords, indices)
				return err
			},
			"not a multiple of 3",
		},
		{
			"ragged positions",
			func() error {
				_, err := NewMesh("m", positions[:8], normals, texCoords, indices)
				return err
			},
			"not a multiple of 3",
		},
		{
			"short normals",
			func() error {
				_, err := NewMesh("m", positions, normals[:6], texCoords, indices)
				return err
			},
			"normal floats",
		},
		{
			"short texcoords",
			func() error {
				_, err := NewMesh("m", positions, normals, texCoords[:4], indices)
				return err
			},
			"texture coordinate floats",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatalf("NewMesh accepted mismatched attributes")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNewMeshIndexOverflow(t *testing.T) {
	positions, normals, texCoords, _ := triangleAttributes()
	_, err := NewMesh("m", positions, normals, texCoords, []uint32{0, 1, 70000})
	var overflow *IndexOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("NewMesh: got %v, want *IndexOverflowError", err)
	}
	if overflow.Position != 2 {
		t.Errorf("Position = %d, want 2", overflow.Position)
	}
	if overflow.Value != 70000 {
		t.Errorf("Value = %d, want 70000", overflow.Value)
	}
}

func TestNewMeshNarrowsIndices(t *testing.T) {
	positions, normals, texCoords, _ := triangleAttributes()
	mesh, err := NewMesh("m", positions, normals, texCoords, []uint32{2, 0, 1})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	want := []uint16{2, 0, 1}
	for i, w := range want {
		if mesh.Indices[i] != w {
			t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], w)
		}
	}
}
