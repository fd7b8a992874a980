package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUObjectUniformsSource is the canonical WGSL definition of the ObjectUniforms struct.
// Matches GPUObjectUniforms layout exactly (256 bytes, std140 aligned).
//
//go:embed assets/object_uniforms.wgsl
var GPUObjectUniformsSource string

// GPUObjectUniforms is the GPU-aligned uniform block for the object pass. It carries
// the per-draw matrices, the light direction already transformed into view space, the
// frame's color correction, the draw color, the material lighting scalars, and the
// depth occlusion parameters.
// Matches the WGSL ObjectUniforms struct layout exactly (see GPUObjectUniformsSource).
// Size: 256 bytes (std140 aligned; the mat3x3 occupies three vec4-aligned columns).
type GPUObjectUniforms struct {
	MVP                [16]float32 // offset   0: model-view-projection matrix (64 bytes)
	MV                 [16]float32 // offset  64: model-view matrix for view-space normals (64 bytes)
	UvTransform        [12]float32 // offset 128: 3x3 depth UV transform, columns padded to vec4 (48 bytes)
	ViewLightDirection [4]float32  // offset 176: normalized light direction in view space (16 bytes)
	ColorCorrection    [4]float32  // offset 192: RGB correction + average pixel intensity (16 bytes)
	ObjectColor        [4]float32  // offset 208: per-draw RGBA tint (16 bytes)
	MaterialParams     [4]float32  // offset 224: ambient, diffuse, specular, specular power (16 bytes)
	DepthParams        [4]float32  // offset 240: x = depth texture aspect ratio, yzw unused (16 bytes)
}

// Size returns the size of the GPUObjectUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUObjectUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload.
func (g *GPUObjectUniforms) Marshal() []byte {
	buf := make([]byte, 256)
	off := 0
	put := func(vals []float32) {
		for _, v := range vals {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
			off += 4
		}
	}
	put(g.MVP[:])
	put(g.MV[:])
	put(g.UvTransform[:])
	put(g.ViewLightDirection[:])
	put(g.ColorCorrection[:])
	put(g.ObjectColor[:])
	put(g.MaterialParams[:])
	put(g.DepthParams[:])
	return buf
}

// SetUvTransform packs a row-major 3x3 matrix into the column-padded layout WGSL uses
// for mat3x3<f32>, where each column occupies a 16-byte slot.
//
// Parameters:
//   - m: the 3x3 transform in row-major order (m[row*3+col])
func (g *GPUObjectUniforms) SetUvTransform(m [9]float32) {
	for col := 0; col < 3; col++ {
		g.UvTransform[col*4+0] = m[0*3+col]
		g.UvTransform[col*4+1] = m[1*3+col]
		g.UvTransform[col*4+2] = m[2*3+col]
		g.UvTransform[col*4+3] = 0
	}
}
