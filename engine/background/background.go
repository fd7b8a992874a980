// Package background implements the camera background pass: a full-screen
// triangle-strip quad drawn before everything else with depth test and write
// disabled, showing either the camera image or a color-mapped visualization of
// the depth image. Quad texture coordinates are re-derived from the frame's
// display transform whenever the display geometry changes.
package background

import (
	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/renderer"
	"github.com/arlab/depthscene/engine/renderer/bind_group_provider"
	"github.com/arlab/depthscene/engine/renderer/pipeline"
	"github.com/arlab/depthscene/engine/renderer/shader"
	"github.com/arlab/depthscene/engine/screenquad"
	"github.com/arlab/depthscene/engine/session"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline cache keys for the two background permutations.
const (
	CameraPipelineKey = "background/camera"
	DepthPipelineKey  = "background/depth"
)

// Shader asset names loaded during Create.
const (
	vertexShaderName          = "shaders/screenquad_vert.wgsl"
	cameraFragmentShaderName  = "shaders/camera_frag.wgsl"
	depthVisualizerShaderName = "shaders/depth_visualizer_frag.wgsl"
)

// Bindings within the camera bind group.
const (
	bindingCameraTexture = 0
	bindingCameraSampler = 1
)

// Binding within the depth visualization bind group.
const bindingDepthTexture = 0

// backgroundRenderer is the implementation of the Renderer interface.
type backgroundRenderer struct {
	created bool

	renderer renderer.Renderer
	quad     *screenquad.Geometry

	meshProvider   bind_group_provider.BindGroupProvider
	cameraProvider bind_group_provider.BindGroupProvider
	depthProvider  bind_group_provider.BindGroupProvider

	cameraPipeline pipeline.Pipeline
	depthPipeline  pipeline.Pipeline

	// suppressTimestampZero skips drawing for frames that carry the sentinel
	// timestamp 0, avoiding a one-frame black flash before the first real
	// camera image arrives.
	suppressTimestampZero bool
}

// Renderer draws the camera background. Create must be called once before any
// other method; the remaining methods are driven per frame by the scene.
type Renderer interface {
	// Create loads the background shaders, registers the camera and depth
	// visualization pipelines, and uploads the full-screen quad geometry.
	// Creation is atomic: on error no partial GPU state is retained.
	//
	// Parameters:
	//   - r: the renderer to create GPU resources with
	//   - assetProvider: the source for shader assets
	//
	// Returns:
	//   - error: a *session.AssetLoadError, *shader.CompileError, or GPU error
	Create(r renderer.Renderer, assetProvider session.AssetProvider) error

	// UpdateCameraImage uploads a new camera capture. The GPU texture is
	// reallocated only when the image dimensions change.
	//
	// Parameters:
	//   - img: the camera capture to upload
	//
	// Returns:
	//   - error: an error if the upload fails
	UpdateCameraImage(img *session.CameraImage) error

	// UpdateDepthImage uploads a new depth image for the depth visualization
	// permutation. The GPU texture is reallocated only when the image
	// dimensions change.
	//
	// Parameters:
	//   - img: the depth image to upload
	//
	// Returns:
	//   - error: an error if the upload fails
	UpdateDepthImage(img *session.DepthImage) error

	// Draw encodes the background draw call for this frame. When the frame
	// reports a display geometry change the quad texture coordinates are
	// re-derived from the frame's display transform first; this happens even
	// for frames whose draw is suppressed. When the frame carries timestamp 0
	// and suppression is enabled, nothing is drawn.
	//
	// Parameters:
	//   - frame: the current frame
	//   - showDepthMap: selects the depth visualization pipeline instead of the camera image
	//
	// Returns:
	//   - error: ErrNotCreated before Create, or a draw encoding error
	Draw(frame *session.Frame, showDepthMap bool) error

	// Release frees the GPU resources held by the pass.
	Release()
}

var _ Renderer = &backgroundRenderer{}

// NewRenderer creates a background Renderer. GPU resources are not allocated
// until Create is called.
//
// Parameters:
//   - options: variadic list of Option functions to configure the pass
//
// Returns:
//   - Renderer: the configured background renderer
func NewRenderer(options ...Option) Renderer {
	b := &backgroundRenderer{
		quad:                  screenquad.NewFullScreenQuad(),
		suppressTimestampZero: true,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *backgroundRenderer) Create(r renderer.Renderer, assetProvider session.AssetProvider) error {
	vertSource, err := assetProvider.Asset(vertexShaderName)
	if err != nil {
		return err
	}
	cameraSource, err := assetProvider.Asset(cameraFragmentShaderName)
	if err != nil {
		return err
	}
	depthSource, err := assetProvider.Asset(depthVisualizerShaderName)
	if err != nil {
		return err
	}

	vertShader, err := shader.NewShader("background_vert", shader.ShaderTypeVertex, vertSource, shader.FeatureFlags{})
	if err != nil {
		return err
	}
	cameraShader, err := shader.NewShader("camera_frag", shader.ShaderTypeFragment, cameraSource, shader.FeatureFlags{})
	if err != nil {
		return err
	}
	depthShader, err := shader.NewShader("depth_visualizer_frag", shader.ShaderTypeFragment, depthSource, shader.FeatureFlags{})
	if err != nil {
		return err
	}

	// The background replaces whatever is on screen and must never interact
	// with the depth buffer of the 3D passes behind it.
	cameraPipeline := pipeline.NewPipeline(CameraPipelineKey,
		pipeline.WithVertexShader(vertShader),
		pipeline.WithFragmentShader(cameraShader),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	)
	depthPipeline := pipeline.NewPipeline(DepthPipelineKey,
		pipeline.WithVertexShader(vertShader),
		pipeline.WithFragmentShader(depthShader),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	)
	if err := r.RegisterPipelines(cameraPipeline, depthPipeline); err != nil {
		return err
	}

	meshProvider := bind_group_provider.NewBindGroupProvider("background_quad")
	if err := r.InitMeshBuffers(meshProvider, b.quad.PackedVertexBytes(), nil, b.quad.VertexCount()); err != nil {
		return err
	}

	// 1x1 placeholders keep the bind groups valid until the first real frame
	// arrives; UpdateCameraImage and UpdateDepthImage replace them.
	cameraProvider := bind_group_provider.NewBindGroupProvider("background_camera")
	if err := r.InitTextureView(cameraProvider, bindingCameraTexture, common.TextureStagingData{
		Pixels: []byte{0, 0, 0, 255},
		Width:  1,
		Height: 1,
	}); err != nil {
		return err
	}
	if err := r.InitSampler(cameraProvider, bindingCameraSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	}); err != nil {
		return err
	}
	if err := r.InitBindGroup(cameraProvider, cameraPipeline.MergedBindGroupLayout(0), nil, nil); err != nil {
		return err
	}

	depthProvider := bind_group_provider.NewBindGroupProvider("background_depth")
	if err := r.InitTextureView(depthProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: []byte{0, 0},
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatR16Uint,
	}); err != nil {
		return err
	}
	if err := r.InitBindGroup(depthProvider, depthPipeline.MergedBindGroupLayout(0), nil, nil); err != nil {
		return err
	}

	b.renderer = r
	b.meshProvider = meshProvider
	b.cameraProvider = cameraProvider
	b.depthProvider = depthProvider
	b.cameraPipeline = cameraPipeline
	b.depthPipeline = depthPipeline
	b.created = true
	return nil
}

func (b *backgroundRenderer) UpdateCameraImage(img *session.CameraImage) error {
	if !b.created {
		return ErrNotCreated
	}
	if img == nil {
		return nil
	}
	recreated, err := b.renderer.UpdateTexture(b.cameraProvider, bindingCameraTexture, common.TextureStagingData{
		Pixels: img.Pixels,
		Width:  img.Width,
		Height: img.Height,
	})
	if err != nil {
		return err
	}
	if recreated {
		return b.renderer.InitBindGroup(b.cameraProvider, b.cameraPipeline.MergedBindGroupLayout(0), nil, nil)
	}
	return nil
}

func (b *backgroundRenderer) UpdateDepthImage(img *session.DepthImage) error {
	if !b.created {
		return ErrNotCreated
	}
	if img == nil {
		return nil
	}
	recreated, err := b.renderer.UpdateTexture(b.depthProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: img.Data,
		Width:  img.Width,
		Height: img.Height,
		Format: wgpu.TextureFormatR16Uint,
	})
	if err != nil {
		return err
	}
	if recreated {
		return b.renderer.InitBindGroup(b.depthProvider, b.depthPipeline.MergedBindGroupLayout(0), nil, nil)
	}
	return nil
}

func (b *backgroundRenderer) Draw(frame *session.Frame, showDepthMap bool) error {
	if !b.created {
		return ErrNotCreated
	}
	if frame == nil {
		return nil
	}
	// Geometry changes are consumed even on frames that end up suppressed,
	// otherwise the change notice is lost and later frames draw with stale UVs.
	if b.quad.RefreshUV(frame) {
		common.Logger().Debug("background quad UVs recomputed", "timestamp", frame.Timestamp)
		b.renderer.WriteMeshBuffer(b.meshProvider, b.quad.UVByteOffset(), b.quad.UVBytes())
	}

	if frame.Timestamp == 0 && b.suppressTimestampZero {
		return nil
	}

	key := CameraPipelineKey
	bindProvider := b.cameraProvider
	if showDepthMap {
		key = DepthPipelineKey
		bindProvider = b.depthProvider
	}

	return b.renderer.DrawCall(key, b.meshProvider, []uint64{0, b.quad.UVByteOffset()}, 1,
		[]bind_group_provider.BindGroupProvider{bindProvider})
}

func (b *backgroundRenderer) Release() {
	if !b.created {
		return
	}
	b.meshProvider.Release()
	b.cameraProvider.Release()
	b.depthProvider.Release()
	b.created = false
}
