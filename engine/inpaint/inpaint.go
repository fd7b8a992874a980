// Package inpaint implements the depth-inpainting overlay pass: a centered,
// vertically subdivided triangle-strip patch that visualizes the depth image
// with sensor holes filled, drawn last with depth test and write disabled. The
// overlay only appears while both the depth map display and inpaint mode are
// active.
package inpaint

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

// PipelineKey is the cache key of the overlay pipeline.
const PipelineKey = "inpaint/depth"

// DefaultSlices is the number of intermediate strip rows the overlay patch is
// subdivided into by default.
const DefaultSlices = 5

// Shader asset names loaded during Create.
const (
	vertexShaderName   = "shaders/screenquad_vert.wgsl"
	fragmentShaderName = "shaders/inpaint_frag.wgsl"
)

// Binding within the overlay bind group.
const bindingDepthTexture = 0

// UVRefreshPolicy controls when the patch texture coordinates are re-derived
// from the frame's display transform.
type UVRefreshPolicy int

const (
	// UVRefreshOnce derives the texture coordinates from the first frame that
	// carries a display transform and never again. This is the default.
	UVRefreshOnce UVRefreshPolicy = iota

	// UVRefreshOnGeometryChange re-derives the texture coordinates whenever a
	// frame reports a display geometry change.
	UVRefreshOnGeometryChange
)

// inpaintRenderer is the implementation of the Renderer interface.
type inpaintRenderer struct {
	created bool

	renderer renderer.Renderer
	patch    *screenquad.Geometry
	slices   int

	meshProvider  bind_group_provider.BindGroupProvider
	depthProvider bind_group_provider.BindGroupProvider

	pipeline pipeline.Pipeline

	uvPolicy    UVRefreshPolicy
	uvRefreshed bool
}

// Renderer draws the depth-inpainting overlay patch. Create must be called
// once before any other method.
type Renderer interface {
	// Create loads the overlay shaders, registers the pipeline, and uploads the
	// subdivided patch geometry.
	//
	// Parameters:
	//   - r: the renderer to create GPU resources with
	//   - assetProvider: the source for shader assets
	//
	// Returns:
	//   - error: a *session.AssetLoadError, *shader.CompileError, or GPU error
	Create(r renderer.Renderer, assetProvider session.AssetProvider) error

	// UpdateDepthImage uploads a new depth image. The GPU texture is
	// reallocated only when the image dimensions change.
	//
	// Parameters:
	//   - img: the depth image to upload
	//
	// Returns:
	//   - error: an error if the upload fails
	UpdateDepthImage(img *session.DepthImage) error

	// Draw encodes the overlay draw call. Nothing is drawn unless both
	// showDepthMap and inpaintMode are set. The patch texture coordinates are
	// derived from the frame's display transform per the configured refresh
	// policy before the first visible draw.
	//
	// Parameters:
	//   - frame: the current frame
	//   - showDepthMap: whether the depth map display is active
	//   - inpaintMode: whether inpaint mode is active
	//
	// Returns:
	//   - error: ErrNotCreated before Create, or a draw encoding error
	Draw(frame *session.Frame, showDepthMap, inpaintMode bool) error

	// Release frees the GPU resources held by the pass.
	Release()
}

var _ Renderer = &inpaintRenderer{}

// NewRenderer creates an overlay Renderer. GPU resources are not allocated
// until Create is called.
//
// Parameters:
//   - options: variadic list of Option functions to configure the pass
//
// Returns:
//   - Renderer: the configured overlay renderer
func NewRenderer(options ...Option) Renderer {
	i := &inpaintRenderer{
		slices:   DefaultSlices,
		uvPolicy: UVRefreshOnce,
	}
	for _, opt := range options {
		opt(i)
	}
	i.patch = screenquad.NewOverlayPatch(i.slices)
	return i
}

func (i *inpaintRenderer) Create(r renderer.Renderer, assetProvider session.AssetProvider) error {
	vertSource, err := assetProvider.Asset(vertexShaderName)
	if err != nil {
		return err
	}
	fragSource, err := assetProvider.Asset(fragmentShaderName)
	if err != nil {
		return err
	}

	vertShader, err := shader.NewShader("inpaint_vert", shader.ShaderTypeVertex, vertSource, shader.FeatureFlags{})
	if err != nil {
		return err
	}
	fragShader, err := shader.NewShader("inpaint_frag", shader.ShaderTypeFragment, fragSource, shader.FeatureFlags{})
	if err != nil {
		return err
	}

	// The overlay floats above the composed scene and must not disturb the
	// depth buffer.
	p := pipeline.NewPipeline(PipelineKey,
		pipeline.WithVertexShader(vertShader),
		pipeline.WithFragmentShader(fragShader),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	)
	if err := r.RegisterPipelines(p); err != nil {
		return err
	}

	meshProvider := bind_group_provider.NewBindGroupProvider("inpaint_patch")
	if err := r.InitMeshBuffers(meshProvider, i.patch.PackedVertexBytes(), nil, i.patch.VertexCount()); err != nil {
		return err
	}

	depthProvider := bind_group_provider.NewBindGroupProvider("inpaint_depth")
	if err := r.InitTextureView(depthProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: []byte{0, 0},
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatR16Uint,
	}); err != nil {
		return err
	}
	if err := r.InitBindGroup(depthProvider, p.MergedBindGroupLayout(0), nil, nil); err != nil {
		return err
	}

	i.renderer = r
	i.meshProvider = meshProvider
	i.depthProvider = depthProvider
	i.pipeline = p
	i.created = true
	return nil
}

func (i *inpaintRenderer) UpdateDepthImage(img *session.DepthImage) error {
	if !i.created {
		return ErrNotCreated
	}
	if img == nil {
		return nil
	}
	recreated, err := i.renderer.UpdateTexture(i.depthProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: img.Data,
		Width:  img.Width,
		Height: img.Height,
		Format: wgpu.TextureFormatR16Uint,
	})
	if err != nil {
		return err
	}
	if recreated {
		return i.renderer.InitBindGroup(i.depthProvider, i.pipeline.MergedBindGroupLayout(0), nil, nil)
	}
	return nil
}

func (i *inpaintRenderer) Draw(frame *session.Frame, showDepthMap, inpaintMode bool) error {
	if !i.created {
		return ErrNotCreated
	}
	if frame == nil || !showDepthMap || !inpaintMode {
		return nil
	}

	if i.refreshUV(frame) {
		i.renderer.WriteMeshBuffer(i.meshProvider, i.patch.UVByteOffset(), i.patch.UVBytes())
	}

	return i.renderer.DrawCall(PipelineKey, i.meshProvider, []uint64{0, i.patch.UVByteOffset()}, 1,
		[]bind_group_provider.BindGroupProvider{i.depthProvider})
}

// refreshUV applies the configured refresh policy and reports whether the UV
// buffer changed.
func (i *inpaintRenderer) refreshUV(frame *session.Frame) bool {
	switch i.uvPolicy {
	case UVRefreshOnGeometryChange:
		return i.patch.RefreshUV(frame)
	default:
		if i.uvRefreshed {
			return false
		}
		if !i.patch.TransformUV(frame.DisplayTransform) {
			return false
		}
		i.uvRefreshed = true
		return true
	}
}

func (i *inpaintRenderer) Release() {
	if !i.created {
		return
	}
	i.meshProvider.Release()
	i.depthProvider.Release()
	i.created = false
}
