// package model holds CPU-side mesh data in the packed block layout consumed by the
// renderer. A Mesh keeps positions, normals, and texture coordinates as contiguous
// blocks of a single float buffer with recorded byte offsets, so the whole vertex
// payload uploads as one GPU buffer bound at three slots.
package model

import (
	"fmt"
	"math"
)

// Mesh is a static triangle mesh ready for GPU upload. All attribute blocks live in
// Vertices back to back: positions first, then normals, then texture coordinates.
// The byte offsets locate each block within the uploaded vertex buffer.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices is the packed attribute data: VertexCount*3 position floats, followed
	// by VertexCount*3 normal floats, followed by VertexCount*2 texture coordinate floats.
	Vertices []float32

	// Indices are the triangle indices, narrowed to 16 bits.
	Indices []uint16

	// VertexCount is the number of vertices in the mesh.
	VertexCount int

	// PositionsOffset is the byte offset of the position block within the vertex buffer.
	PositionsOffset uint64

	// NormalsOffset is the byte offset of the normal block within the vertex buffer.
	NormalsOffset uint64

	// TexCoordsOffset is the byte offset of the texture coordinate block within the vertex buffer.
	TexCoordsOffset uint64

	// BoundingRadius is the maximum vertex distance from the model-space origin.
	BoundingRadius float32
}

// NewMesh packs per-attribute slices into a Mesh. Positions and normals carry three
// floats per vertex and texture coordinates carry two. Indices are narrowed to 16
// bits; any index above the 16-bit range fails with an *IndexOverflowError rather
// than wrapping silently.
//
// Parameters:
//   - name: the mesh identifier
//   - positions: model-space vertex positions, 3 floats per vertex
//   - normals: vertex normals, 3 floats per vertex
//   - texCoords: texture coordinates, 2 floats per vertex
//   - indices: triangle indices into the vertex arrays
//
// Returns:
//   - *Mesh: the packed mesh
//   - error: an error if attribute counts disagree or an index overflows 16 bits
func NewMesh(name string, positions, normals, texCoords []float32, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return nil, fmt.Errorf("model: mesh %q position count %d is not a multiple of 3", name, len(positions))
	}
	vertexCount := len(positions) / 3
	if len(normals) != vertexCount*3 {
		return nil, fmt.Errorf("model: mesh %q has %d normal floats, expected %d", name, len(normals), vertexCount*3)
	}
	if len(texCoords) != vertexCount*2 {
		return nil, fmt.Errorf("model: mesh %q has %d texture coordinate floats, expected %d", name, len(texCoords), vertexCount*2)
	}

	narrowed := make([]uint16, len(indices))
	for i, idx := range indices {
		if idx > math.MaxUint16 {
			return nil, &IndexOverflowError{Position: i, Value: idx}
		}
		narrowed[i] = uint16(idx)
	}

	packed := make([]float32, 0, len(positions)+len(normals)+len(texCoords))
	packed = append(packed, positions...)
	packed = append(packed, normals...)
	packed = append(packed, texCoords...)

	return &Mesh{
		Name:            name,
		Vertices:        packed,
		Indices:         narrowed,
		VertexCount:     vertexCount,
		PositionsOffset: 0,
		NormalsOffset:   uint64(len(positions)) * 4,
		TexCoordsOffset: uint64(len(positions)+len(normals)) * 4,
		BoundingRadius:  computeBoundingRadius(positions),
	}, nil
}

// IndexCount returns the number of indices in the mesh.
//
// Returns:
//   - int: the index count
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// computeBoundingRadius calculates the bounding sphere radius from packed vertex
// positions. The radius is the maximum distance from the origin across all vertices.
func computeBoundingRadius(positions []float32) float32 {
	var maxDistSq float32
	for i := 0; i+2 < len(positions); i += 3 {
		distSq := positions[i]*positions[i] + positions[i+1]*positions[i+1] + positions[i+2]*positions[i+2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
