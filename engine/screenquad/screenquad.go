// Package screenquad provides the screen-space quad geometry shared by the
// background and inpaint overlay passes: fixed 2D positions in normalized device
// coordinates paired with a mutable, same-length UV buffer.
//
// The quads are drawn as triangle strips. The UV buffer is recomputed when the
// display geometry changes, either by querying the frame's coordinate transform
// or analytically via CroppedUV, and is uploaded independently of the positions.
package screenquad

import (
	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/session"
)

// fullScreenQuadCoords spans the whole viewport as a 4-vertex triangle strip,
// ordered bottom-left, bottom-right, top-left, top-right so consecutive triples
// form front-facing triangles.
var fullScreenQuadCoords = [8]float32{
	-1.0, -1.0, +1.0, -1.0, -1.0, +1.0, +1.0, +1.0,
}

// overlayPatchCoords is the centered patch the inpaint overlay draws, in the
// same strip order as the full-screen quad.
var overlayPatchCoords = [8]float32{
	-0.6, -0.4, +0.6, -0.4, -0.6, +0.4, +0.6, +0.4,
}

// Geometry holds a triangle-strip quad's fixed NDC positions and its parallel
// UV buffer. Positions are authored once at construction; UVs are recomputed on
// display-geometry or rotation changes. len(positions) == len(uvs) always holds.
type Geometry struct {
	positions []float32
	uvs       []float32
}

// NewFullScreenQuad creates the 4-vertex quad used by the background pass.
//
// Returns:
//   - *Geometry: the quad geometry with a zeroed UV buffer
func NewFullScreenQuad() *Geometry {
	return newGeometry(fullScreenQuadCoords[:])
}

// NewOverlayPatch creates the inpaint overlay patch, subdivided into a vertical
// triangle strip with the given number of intermediate rows. A slice count of 0
// yields the plain 4-vertex patch.
//
// Parameters:
//   - slices: the number of evenly spaced intermediate rows, must be >= 0
//
// Returns:
//   - *Geometry: the subdivided patch geometry with a zeroed UV buffer
func NewOverlayPatch(slices int) *Geometry {
	return newGeometry(SubdivideStrip(overlayPatchCoords, slices))
}

func newGeometry(positions []float32) *Geometry {
	return &Geometry{
		positions: positions,
		uvs:       make([]float32, len(positions)),
	}
}

// Positions returns the fixed NDC position pairs. Callers must not mutate the
// returned slice.
func (g *Geometry) Positions() []float32 {
	return g.positions
}

// UV returns the current texture coordinate pairs, parallel to Positions.
func (g *Geometry) UV() []float32 {
	return g.uvs
}

// VertexCount returns the number of strip vertices, which is also the draw
// count for a non-indexed triangle-strip draw: 4 for a plain quad, 4+2*slices
// for a subdivided patch.
func (g *Geometry) VertexCount() int {
	return len(g.positions) / 2
}

// PositionBytes returns the position data as a little-endian byte view for
// vertex buffer upload.
func (g *Geometry) PositionBytes() []byte {
	return common.SliceToBytes(g.positions)
}

// UVBytes returns the UV data as a little-endian byte view for vertex buffer
// upload. The UV region follows the positions in a single packed buffer, at
// byte offset UVByteOffset.
func (g *Geometry) UVBytes() []byte {
	return common.SliceToBytes(g.uvs)
}

// UVByteOffset returns the byte offset of the UV region within the packed
// positions-then-UVs vertex buffer.
func (g *Geometry) UVByteOffset() uint64 {
	return uint64(len(g.positions) * 4)
}

// PackedVertexBytes returns positions followed by UVs as one contiguous byte
// slice, the layout InitMeshBuffers uploads. The UV region can be rewritten
// later at UVByteOffset without touching positions.
func (g *Geometry) PackedVertexBytes() []byte {
	packed := make([]float32, 0, len(g.positions)+len(g.uvs))
	packed = append(packed, g.positions...)
	packed = append(packed, g.uvs...)
	buf := make([]byte, len(packed)*4)
	copy(buf, common.SliceToBytes(packed))
	return buf
}

// SetUV replaces the UV buffer contents. The input length must match the
// position buffer; mismatched input is ignored to preserve the parallel-buffer
// invariant.
//
// Parameters:
//   - uvs: the new texture coordinate pairs
//
// Returns:
//   - bool: true if the UVs were applied
func (g *Geometry) SetUV(uvs []float32) bool {
	if len(uvs) != len(g.positions) {
		return false
	}
	copy(g.uvs, uvs)
	return true
}

// RefreshUV re-queries the frame's NDC-to-texture transform and rewrites the
// UV buffer, but only when the frame reports a display geometry change. The
// transform query is potentially expensive, so it is rate-limited to change
// events rather than run every frame.
//
// Parameters:
//   - frame: the current frame
//
// Returns:
//   - bool: true if the UVs were recomputed
func (g *Geometry) RefreshUV(frame *session.Frame) bool {
	if frame == nil || !frame.DisplayGeometryChanged {
		return false
	}
	return g.TransformUV(frame.DisplayTransform)
}

// TransformUV unconditionally maps the quad positions through the given
// coordinate transform and stores the result as the new UV buffer.
//
// Parameters:
//   - t: the NDC-to-texture coordinate transform
//
// Returns:
//   - bool: true if the UVs were recomputed
func (g *Geometry) TransformUV(t session.CoordinateTransformer) bool {
	if t == nil {
		return false
	}
	return g.SetUV(t.TransformCoordinates(g.positions))
}

// CroppedUV derives the quad's texture coordinates analytically: the camera
// image is center-cropped to match the screen aspect ratio, then the four quad
// corners are remapped according to the camera-to-display rotation. Only the
// four cardinal rotations are supported.
//
// Parameters:
//   - imageWidth: the camera image width in pixels
//   - imageHeight: the camera image height in pixels
//   - screenAspectRatio: the display width/height ratio
//   - rotationDegrees: the camera-to-display rotation, one of 0, 90, 180, 270
//
// Returns:
//   - [8]float32: the UV pairs in strip order
//   - error: a *UnsupportedRotationError for any other rotation value
func CroppedUV(imageWidth, imageHeight int, screenAspectRatio float32, rotationDegrees int) ([8]float32, error) {
	imageAspectRatio := float32(imageWidth) / float32(imageHeight)
	var croppedWidth, croppedHeight float32
	if screenAspectRatio < imageAspectRatio {
		croppedWidth = float32(imageHeight) * screenAspectRatio
		croppedHeight = float32(imageHeight)
	} else {
		croppedWidth = float32(imageWidth)
		croppedHeight = float32(imageWidth) / screenAspectRatio
	}

	u := (float32(imageWidth) - croppedWidth) / float32(imageWidth) * 0.5
	v := (float32(imageHeight) - croppedHeight) / float32(imageHeight) * 0.5

	switch rotationDegrees {
	case 0:
		return [8]float32{u, 1 - v, 1 - u, 1 - v, u, v, 1 - u, v}, nil
	case 90:
		return [8]float32{1 - u, 1 - v, 1 - u, v, u, 1 - v, u, v}, nil
	case 180:
		return [8]float32{1 - u, v, u, v, 1 - u, 1 - v, u, 1 - v}, nil
	case 270:
		return [8]float32{u, v, u, 1 - v, 1 - u, v, 1 - u, 1 - v}, nil
	default:
		return [8]float32{}, &UnsupportedRotationError{Rotation: rotationDegrees}
	}
}

// SubdivideStrip inserts evenly spaced intermediate vertex rows between the
// bottom and top edges of a 4-vertex strip quad, keeping the result drawable as
// a single triangle strip. Only the Y axis is interpolated; each inserted row
// reuses the quad's left and right X coordinates, tessellating a vertical strip
// rather than a full grid.
//
// Parameters:
//   - quad: the 4-vertex strip quad in bottom-left, bottom-right, top-left, top-right order
//   - slices: the number of intermediate rows, must be >= 0
//
// Returns:
//   - []float32: 4*slices+8 floats (the original 8 when slices is 0)
func SubdivideStrip(quad [8]float32, slices int) []float32 {
	if slices <= 0 {
		out := make([]float32, len(quad))
		copy(out, quad[:])
		return out
	}

	num := 4*slices + 8
	out := make([]float32, num)

	// Bottom edge pair first, top edge pair last.
	out[0], out[1], out[2], out[3] = quad[0], quad[1], quad[2], quad[3]
	out[num-4], out[num-3], out[num-2], out[num-1] = quad[4], quad[5], quad[6], quad[7]

	step := (quad[5] - quad[1]) / float32(slices+1)
	for i := 1; i <= slices; i++ {
		out[4*i] = quad[0]
		out[4*i+1] = quad[1] + float32(i)*step
		out[4*i+2] = quad[2]
		out[4*i+3] = quad[3] + float32(i)*step
	}

	return out
}
