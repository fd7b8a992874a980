package session

// DepthImage is a raw depth map captured alongside a camera frame.
// Data holds one 16-bit little-endian depth sample per texel, in millimeters,
// row-major with no padding: len(Data) == Width*Height*2.
type DepthImage struct {
	Data   []byte
	Width  uint32
	Height uint32
}

// AspectRatio returns the width/height ratio of the depth image, or 0 when the
// image has no height.
//
// Returns:
//   - float32: the aspect ratio
func (d *DepthImage) AspectRatio() float32 {
	if d == nil || d.Height == 0 {
		return 0
	}
	return float32(d.Width) / float32(d.Height)
}

// CoordinateTransformer maps normalized device coordinates to texture-sample
// coordinates, accounting for sensor/display rotation and aspect-ratio cropping.
// The frame provider owns the transform; querying it is potentially expensive
// and callers rate-limit it to display-geometry changes.
type CoordinateTransformer interface {
	// TransformCoordinates maps pairs of normalized device coordinates to
	// texture coordinates. The input is a flat sequence of (x, y) pairs and the
	// output has the same length and ordering.
	//
	// Parameters:
	//   - ndc: a flat slice of NDC (x, y) pairs
	//
	// Returns:
	//   - []float32: the corresponding texture coordinate pairs
	TransformCoordinates(ndc []float32) []float32
}

// CameraImage is an RGBA camera capture for the background pass.
// Pixels is row-major with 4 bytes per pixel: len(Pixels) == Width*Height*4.
type CameraImage struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// Frame carries everything the frame provider supplies for one draw cycle.
// All fields are read-only to the rendering core.
type Frame struct {
	// Timestamp is the capture time in nanoseconds. The sentinel value 0 means
	// no real camera frame has been produced yet; the background pass can be
	// configured to suppress drawing for such frames.
	Timestamp int64

	// CameraState reports how well the device pose is currently tracked. The
	// 3D passes are skipped while the camera is not tracking; the background
	// still draws. The zero value is TrackingStateTracking.
	CameraState TrackingState

	// CameraImage is the camera capture for this frame, or nil when the image
	// is unchanged since the previous frame.
	CameraImage *CameraImage

	// DisplayGeometryChanged is set when the display rotation, size, or crop
	// changed since the previous frame, invalidating cached UV coordinates.
	DisplayGeometryChanged bool

	// DepthImage is the depth map for this frame, or nil when the device did
	// not produce one this cycle.
	DepthImage *DepthImage

	// View is the camera view matrix, column-major.
	View [16]float32

	// Projection is the camera projection matrix, column-major.
	Projection [16]float32

	// ColorCorrection holds RGB gain in xyz and average pixel intensity gamma
	// in w, applied to virtual object lighting to match camera exposure.
	ColorCorrection [4]float32

	// DisplayTransform maps NDC quad corners to camera texture coordinates.
	DisplayTransform CoordinateTransformer
}
