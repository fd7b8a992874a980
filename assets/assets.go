// Package assets embeds the WGSL shader sources shipped with the engine and
// exposes them through a session.AssetProvider. The pass renderers load their
// shaders by the slash-separated names under shaders/.
package assets

import (
	"embed"

	"github.com/arlab/depthscene/engine/session"
)

// Shader asset names served by Provider.
const (
	ShaderScreenQuadVert  = "shaders/screenquad_vert.wgsl"
	ShaderCameraFrag      = "shaders/camera_frag.wgsl"
	ShaderDepthVisualizer = "shaders/depth_visualizer_frag.wgsl"
	ShaderObjectVert      = "shaders/object_vert.wgsl"
	ShaderObjectFrag      = "shaders/object_frag.wgsl"
	ShaderInpaintFrag     = "shaders/inpaint_frag.wgsl"
)

//go:embed shaders/*.wgsl
var FS embed.FS

// Provider returns an AssetProvider serving the embedded shader assets.
//
// Returns:
//   - session.AssetProvider: the provider backed by the embedded filesystem
func Provider() session.AssetProvider {
	return session.NewFSAssetProvider(FS)
}
