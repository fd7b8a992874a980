// Package object implements the virtual object pass: an anchored textured mesh
// lit by a fixed directional light, color-corrected to match camera exposure,
// and optionally faded out behind real surfaces using the camera depth image.
//
// Depth occlusion is a compile-time shader permutation. Toggling it selects a
// different pipeline keyed by the permutation's feature flags; pipelines are
// built lazily on first use and cached by the renderer, so repeated toggles
// never recompile.
package object

import (
	"sync"

	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/model"
	"github.com/arlab/depthscene/engine/renderer"
	"github.com/arlab/depthscene/engine/renderer/bind_group_provider"
	"github.com/arlab/depthscene/engine/renderer/material"
	"github.com/arlab/depthscene/engine/renderer/pipeline"
	"github.com/arlab/depthscene/engine/renderer/shader"
	"github.com/arlab/depthscene/engine/session"
	"github.com/cogentcore/webgpu/wgpu"
)

// lightDirection is the fixed world-space light direction (w = 0 so it rotates
// with the view without translating).
var lightDirection = [4]float32{0.25, 0.866, 0.433, 0.0}

// Shader asset names loaded during Create.
const (
	vertexShaderName   = "shaders/object_vert.wgsl"
	fragmentShaderName = "shaders/object_frag.wgsl"
)

// Bindings within the object bind group.
const (
	bindingUniforms       = 0
	bindingDiffuseTexture = 1
	bindingDiffuseSampler = 2
	bindingDepthTexture   = 3
)

// PipelineKey returns the cache key for the object pipeline permutation built
// with the given blend mode and feature flags.
//
// Parameters:
//   - mode: the blend mode baked into the pipeline
//   - flags: the shader permutation's feature flags
//
// Returns:
//   - string: the pipeline cache key
func PipelineKey(mode material.BlendMode, flags shader.FeatureFlags) string {
	name := "opaque"
	switch mode {
	case material.BlendModeShadow:
		name = "shadow"
	case material.BlendModeAlphaBlending:
		name = "alpha"
	}
	return "object/" + name + "/" + flags.Key()
}

// objectRenderer is the implementation of the Renderer interface.
type objectRenderer struct {
	mu      sync.Mutex
	created bool

	renderer renderer.Renderer
	mesh     *model.Mesh

	// Raw shader sources are retained so new permutations can be built when
	// the occlusion flag or blend mode changes.
	vertSource []byte
	fragSource []byte

	meshProvider bind_group_provider.BindGroupProvider
	bindProvider bind_group_provider.BindGroupProvider

	flags     shader.FeatureFlags
	blendMode material.BlendMode
	lighting  material.LightingProperties

	// rebuildCount counts pipeline permutation builds, observable in tests to
	// verify that no-op flag changes never trigger a rebuild.
	rebuildCount int

	modelMatrix [16]float32
	uvTransform [9]float32
	depthAspect float32

	uniforms material.GPUObjectUniforms
}

// Renderer draws anchored virtual objects. Create must be called once before
// any other method.
type Renderer interface {
	// Create loads the object shaders, builds the initial pipeline permutation,
	// and uploads the mesh geometry and diffuse texture. Creation is one-time:
	// a second call returns ErrAlreadyCreated.
	//
	// Parameters:
	//   - r: the renderer to create GPU resources with
	//   - assetProvider: the source for shader assets
	//   - mesh: the packed mesh to draw
	//   - diffuseTexture: the diffuse texture, or nil for a white placeholder
	//
	// Returns:
	//   - error: a *session.AssetLoadError, *shader.CompileError, or GPU error
	Create(r renderer.Renderer, assetProvider session.AssetProvider, mesh *model.Mesh, diffuseTexture *common.ImportedTexture) error

	// SetUseDepthForOcclusion selects the occlusion shader permutation. Setting
	// the current value is a structural no-op; changing it builds and registers
	// the permutation's pipeline unless it is already cached.
	//
	// Parameters:
	//   - enabled: whether fragments should fade out behind real surfaces
	//
	// Returns:
	//   - error: a *shader.CompileError or pipeline registration error
	SetUseDepthForOcclusion(enabled bool) error

	// SetBlendMode selects the blend state permutation, building its pipeline
	// on first use.
	//
	// Parameters:
	//   - mode: the blend mode to draw with
	//
	// Returns:
	//   - error: a *shader.CompileError or pipeline registration error
	SetBlendMode(mode material.BlendMode) error

	// SetMaterialProperties sets the scalar lighting coefficients applied on
	// subsequent draws.
	//
	// Parameters:
	//   - lighting: the coefficients to use
	SetMaterialProperties(lighting material.LightingProperties)

	// UpdateModelMatrix recomputes the model matrix from an anchor pose and a
	// uniform scale factor.
	//
	// Parameters:
	//   - pose: the anchor's rigid transform, column-major
	//   - scale: the uniform scale factor
	UpdateModelMatrix(pose [16]float32, scale float32)

	// SetUVTransform sets the row-major 3x3 transform mapping screen-space
	// texture coordinates into the depth image for occlusion lookups.
	//
	// Parameters:
	//   - m: the transform in row-major order
	SetUVTransform(m [9]float32)

	// UpdateDepthImage uploads a new depth image for occlusion and records its
	// aspect ratio. The GPU texture is reallocated only when the image
	// dimensions change.
	//
	// Parameters:
	//   - img: the depth image to upload
	//
	// Returns:
	//   - error: an error if the upload fails
	UpdateDepthImage(img *session.DepthImage) error

	// Draw encodes one draw of the mesh at the current model matrix.
	//
	// Parameters:
	//   - view: the camera view matrix, column-major
	//   - projection: the camera projection matrix, column-major
	//   - colorCorrection: RGB gain in xyz, average pixel intensity gamma in w
	//   - objectColor: the per-draw tint, applied when its alpha is >= 255
	//
	// Returns:
	//   - error: ErrNotCreated before Create, or a draw encoding error
	Draw(view, projection [16]float32, colorCorrection, objectColor [4]float32) error

	// DrawModel encodes one draw of the mesh at a precomputed model matrix,
	// replacing the stored model matrix. Callers that pack model matrices
	// themselves (e.g. in parallel) use this instead of UpdateModelMatrix
	// followed by Draw.
	//
	// Parameters:
	//   - model: the model matrix, column-major
	//   - view: the camera view matrix, column-major
	//   - projection: the camera projection matrix, column-major
	//   - colorCorrection: RGB gain in xyz, average pixel intensity gamma in w
	//   - objectColor: the per-draw tint, applied when its alpha is >= 255
	//
	// Returns:
	//   - error: ErrNotCreated before Create, or a draw encoding error
	DrawModel(model [16]float32, view, projection [16]float32, colorCorrection, objectColor [4]float32) error

	// DrawAnchors draws the mesh once per tracked anchor, in list order.
	// Anchors that are not currently tracking are skipped.
	//
	// Parameters:
	//   - anchors: the anchors to draw
	//   - view: the camera view matrix, column-major
	//   - projection: the camera projection matrix, column-major
	//   - colorCorrection: RGB gain in xyz, average pixel intensity gamma in w
	//   - scale: the uniform scale factor applied to every anchor pose
	//
	// Returns:
	//   - error: the first draw error encountered
	DrawAnchors(anchors []session.Anchor, view, projection [16]float32, colorCorrection [4]float32, scale float32) error

	// RebuildCount returns the number of pipeline permutations built so far.
	//
	// Returns:
	//   - int: the permutation build count
	RebuildCount() int

	// Release frees the GPU resources held by the pass.
	Release()
}

var _ Renderer = &objectRenderer{}

// NewRenderer creates an object Renderer. GPU resources are not allocated until
// Create is called.
//
// Parameters:
//   - options: variadic list of Option functions to configure the pass
//
// Returns:
//   - Renderer: the configured object renderer
func NewRenderer(options ...Option) Renderer {
	o := &objectRenderer{
		blendMode:   material.BlendModeOpaque,
		lighting:    material.DefaultLightingProperties(),
		uvTransform: [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	common.Identity(o.modelMatrix[:])
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *objectRenderer) Create(r renderer.Renderer, assetProvider session.AssetProvider, mesh *model.Mesh, diffuseTexture *common.ImportedTexture) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.created {
		return ErrAlreadyCreated
	}
	if mesh == nil {
		return ErrNilMesh
	}

	vertSource, err := assetProvider.Asset(vertexShaderName)
	if err != nil {
		return err
	}
	fragSource, err := assetProvider.Asset(fragmentShaderName)
	if err != nil {
		return err
	}
	o.renderer = r
	o.vertSource = vertSource
	o.fragSource = fragSource
	o.mesh = mesh

	if err := o.ensurePipelineLocked(); err != nil {
		return err
	}

	meshProvider := bind_group_provider.NewBindGroupProvider("object_mesh")
	if err := r.InitMeshBuffers(meshProvider, common.SliceToBytes(mesh.Vertices), common.SliceToBytes(mesh.Indices), mesh.IndexCount()); err != nil {
		return err
	}

	pixels, width, height := []byte{255, 255, 255, 255}, uint32(1), uint32(1)
	if diffuseTexture != nil {
		pixels, width, height, err = diffuseTexture.Decode()
		if err != nil {
			return err
		}
	}

	bindProvider := bind_group_provider.NewBindGroupProvider("object")
	if err := r.InitTextureView(bindProvider, bindingDiffuseTexture, common.TextureStagingData{
		Pixels: pixels,
		Width:  width,
		Height: height,
	}); err != nil {
		return err
	}
	if err := r.InitSampler(bindProvider, bindingDiffuseSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	}); err != nil {
		return err
	}
	// Placeholder depth keeps the bind group valid while occlusion is off or no
	// depth image has arrived yet.
	if err := r.InitTextureView(bindProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: []byte{0, 0},
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatR16Uint,
	}); err != nil {
		return err
	}
	if err := o.initBindGroupLocked(bindProvider); err != nil {
		return err
	}

	o.meshProvider = meshProvider
	o.bindProvider = bindProvider
	o.created = true
	return nil
}

// ensurePipelineLocked builds and registers the pipeline for the current blend
// mode and feature flags if the renderer does not already cache it.
func (o *objectRenderer) ensurePipelineLocked() error {
	key := PipelineKey(o.blendMode, o.flags)
	if o.renderer.Pipeline(key) != nil {
		return nil
	}

	vertShader, err := shader.NewShader("object_vert", shader.ShaderTypeVertex, o.vertSource, o.flags)
	if err != nil {
		return err
	}
	fragShader, err := shader.NewShader("object_frag", shader.ShaderTypeFragment, o.fragSource, o.flags)
	if err != nil {
		return err
	}

	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vertShader),
		pipeline.WithFragmentShader(fragShader),
	}
	switch o.blendMode {
	case material.BlendModeShadow:
		opts = append(opts, pipeline.WithShadowBlend())
	case material.BlendModeAlphaBlending:
		opts = append(opts, pipeline.WithPremultipliedAlphaBlend())
	}

	if err := o.renderer.RegisterPipelines(pipeline.NewPipeline(key, opts...)); err != nil {
		return err
	}
	o.rebuildCount++
	common.Logger().Debug("object pipeline permutation built", "key", key)
	return nil
}

// initBindGroupLocked (re)builds the bind group from the current permutation's
// merged layout. All permutations declare identical bindings, so the layout is
// group-equivalent across them.
func (o *objectRenderer) initBindGroupLocked(provider bind_group_provider.BindGroupProvider) error {
	p := o.renderer.Pipeline(PipelineKey(o.blendMode, o.flags))
	if p == nil {
		return ErrNotCreated
	}
	return o.renderer.InitBindGroup(provider, p.MergedBindGroupLayout(0), nil, nil)
}

func (o *objectRenderer) SetUseDepthForOcclusion(enabled bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	flags := shader.FeatureFlags{UseDepthForOcclusion: enabled}
	if flags == o.flags {
		return nil
	}
	o.flags = flags
	if !o.created {
		return nil
	}
	return o.ensurePipelineLocked()
}

func (o *objectRenderer) SetBlendMode(mode material.BlendMode) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if mode == o.blendMode {
		return nil
	}
	o.blendMode = mode
	if !o.created {
		return nil
	}
	return o.ensurePipelineLocked()
}

func (o *objectRenderer) SetMaterialProperties(lighting material.LightingProperties) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lighting = lighting
}

func (o *objectRenderer) UpdateModelMatrix(pose [16]float32, scale float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var scaleMatrix [16]float32
	common.ScaleUniform(scaleMatrix[:], scale)
	common.Mul4(o.modelMatrix[:], pose[:], scaleMatrix[:])
}

func (o *objectRenderer) SetUVTransform(m [9]float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uvTransform = m
}

func (o *objectRenderer) UpdateDepthImage(img *session.DepthImage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.created {
		return ErrNotCreated
	}
	if img == nil {
		return nil
	}
	o.depthAspect = img.AspectRatio()
	recreated, err := o.renderer.UpdateTexture(o.bindProvider, bindingDepthTexture, common.TextureStagingData{
		Pixels: img.Data,
		Width:  img.Width,
		Height: img.Height,
		Format: wgpu.TextureFormatR16Uint,
	})
	if err != nil {
		return err
	}
	if recreated {
		return o.initBindGroupLocked(o.bindProvider)
	}
	return nil
}

func (o *objectRenderer) Draw(view, projection [16]float32, colorCorrection, objectColor [4]float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.drawLocked(view, projection, colorCorrection, objectColor)
}

func (o *objectRenderer) drawLocked(view, projection [16]float32, colorCorrection, objectColor [4]float32) error {
	if !o.created {
		return ErrNotCreated
	}

	var mv, mvp [16]float32
	common.Mul4(mv[:], view[:], o.modelMatrix[:])
	common.Mul4(mvp[:], projection[:], mv[:])

	var viewLight [4]float32
	common.Mul4Vec4(viewLight[:], mv[:], lightDirection[:])
	common.NormalizeVec3(viewLight[:])
	viewLight[3] = 1.0 // light intensity

	o.uniforms.MVP = mvp
	o.uniforms.MV = mv
	o.uniforms.SetUvTransform(o.uvTransform)
	o.uniforms.ViewLightDirection = viewLight
	o.uniforms.ColorCorrection = colorCorrection
	o.uniforms.ObjectColor = objectColor
	o.uniforms.MaterialParams = [4]float32{o.lighting.Ambient, o.lighting.Diffuse, o.lighting.Specular, o.lighting.SpecularPower}
	o.uniforms.DepthParams = [4]float32{o.depthAspect, 0, 0, 0}

	o.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: o.bindProvider,
		Binding:  bindingUniforms,
		Offset:   0,
		Data:     o.uniforms.Marshal(),
	}})

	offsets := []uint64{o.mesh.PositionsOffset, o.mesh.NormalsOffset, o.mesh.TexCoordsOffset}
	return o.renderer.DrawCall(PipelineKey(o.blendMode, o.flags), o.meshProvider, offsets, 1,
		[]bind_group_provider.BindGroupProvider{o.bindProvider})
}

func (o *objectRenderer) DrawModel(model [16]float32, view, projection [16]float32, colorCorrection, objectColor [4]float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modelMatrix = model
	return o.drawLocked(view, projection, colorCorrection, objectColor)
}

func (o *objectRenderer) DrawAnchors(anchors []session.Anchor, view, projection [16]float32, colorCorrection [4]float32, scale float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.created {
		return ErrNotCreated
	}

	var scaleMatrix [16]float32
	common.ScaleUniform(scaleMatrix[:], scale)

	for _, anchor := range anchors {
		if anchor.State != session.TrackingStateTracking {
			continue
		}
		common.Mul4(o.modelMatrix[:], anchor.Pose[:], scaleMatrix[:])
		if err := o.drawLocked(view, projection, colorCorrection, anchor.Color); err != nil {
			return err
		}
	}
	return nil
}

func (o *objectRenderer) RebuildCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rebuildCount
}

func (o *objectRenderer) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.created {
		return
	}
	o.meshProvider.Release()
	o.bindProvider.Release()
	o.created = false
}
