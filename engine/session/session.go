// Package session defines the boundary between the rendering core and the
// collaborators that feed it: the frame provider (camera/depth images, view and
// projection matrices, color correction), the anchor provider (tracked poses and
// colors placed by the user), the flag provider (UI toggles), and the asset
// provider (shader sources, meshes, textures by logical name).
//
// The rendering core only ever reads these inputs. It never retains or mutates
// the anchor list, and it reads flag values once per frame rather than polling.
package session

// FrameProvider supplies the per-frame inputs the compositing passes consume.
type FrameProvider interface {
	// CurrentFrame returns the frame to composite this draw cycle.
	// A frame with Timestamp 0 means no real camera frame has arrived yet.
	//
	// Returns:
	//   - *Frame: the current frame, never nil on success
	//   - error: an error if no frame could be produced this cycle
	CurrentFrame() (*Frame, error)
}

// AnchorProvider supplies the ordered list of anchors to draw each frame.
// The list is owned by the provider; the rendering core reads it once per frame
// and must not retain or mutate it.
type AnchorProvider interface {
	// Anchors returns the current anchor list in placement order.
	//
	// Returns:
	//   - []Anchor: the anchors, possibly empty
	Anchors() []Anchor
}

// FlagProvider supplies the UI-controlled toggles read once per frame.
type FlagProvider interface {
	// ShowDepthMap reports whether the depth visualization should replace the
	// camera image in the background pass.
	//
	// Returns:
	//   - bool: true when the depth visualization is active
	ShowDepthMap() bool

	// OcclusionEnabled reports whether virtual objects should be occluded by
	// real-world geometry using the depth texture.
	//
	// Returns:
	//   - bool: true when depth occlusion is active
	OcclusionEnabled() bool

	// InpaintMode reports whether the inpaint overlay patch should be drawn.
	// The overlay additionally requires ShowDepthMap to be true.
	//
	// Returns:
	//   - bool: true when inpaint mode is active
	InpaintMode() bool
}
