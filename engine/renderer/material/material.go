package material

import (
	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/renderer/bind_group_provider"
)

// BlendMode selects the blend and depth-write state a draw pass is built with.
// Blend state is baked into the render pipeline, so changing a material's blend
// mode selects a different pipeline rather than mutating global GPU state.
type BlendMode int

const (
	// BlendModeOpaque disables blending and writes depth.
	BlendModeOpaque BlendMode = iota

	// BlendModeShadow multiplies the destination by one minus source alpha and
	// disables depth writes. Used for shadow receiver quads that only darken what
	// is already on screen.
	BlendModeShadow

	// BlendModeAlphaBlending performs premultiplied-alpha blending with depth
	// writes enabled, for textured occlusion-faded virtual objects.
	BlendModeAlphaBlending
)

// LightingProperties holds the scalar lighting coefficients of the Phong-style
// object shading model.
type LightingProperties struct {
	// Ambient scales the color-corrected ambient term.
	Ambient float32

	// Diffuse scales the Lambertian term.
	Diffuse float32

	// Specular scales the specular highlight term.
	Specular float32

	// SpecularPower is the specular exponent controlling highlight tightness.
	SpecularPower float32
}

// DefaultLightingProperties returns the lighting coefficients used when a material
// does not override them.
//
// Returns:
//   - LightingProperties: ambient 0.3, diffuse 1.0, specular 1.0, specular power 6.0
func DefaultLightingProperties() LightingProperties {
	return LightingProperties{
		Ambient:       0.3,
		Diffuse:       1.0,
		Specular:      1.0,
		SpecularPower: 6.0,
	}
}

// material is the implementation of the Material interface.
type material struct {
	name              string
	baseColor         [4]float32
	lighting          LightingProperties
	blendMode         BlendMode
	diffuseTexture    *common.ImportedTexture
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating surface
// properties, the blend mode, texture references, and GPU resource bindings needed
// for draw calls.
//
// Surface properties (name, base color, lighting, diffuse texture) are set at
// construction and are read-only through this interface. GPU resource references
// (pipeline key, bind group provider) and the blend mode are mutable so they can be
// configured after construction during renderer initialization.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Lighting retrieves the scalar lighting coefficients of the material.
	//
	// Returns:
	//   - LightingProperties: the ambient, diffuse, specular, and specular power values
	Lighting() LightingProperties

	// BlendMode retrieves the blend mode the material's pipeline is built with.
	//
	// Returns:
	//   - BlendMode: the active blend mode
	BlendMode() BlendMode

	// DiffuseTexture retrieves the diffuse/albedo texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetLighting sets the scalar lighting coefficients of the material.
	//
	// Parameters:
	//   - lighting: the coefficients to apply on subsequent draws
	SetLighting(lighting LightingProperties)

	// SetBlendMode sets the blend mode for this material.
	//
	// Parameters:
	//   - mode: the blend mode to build or select pipelines with
	SetBlendMode(mode BlendMode)

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		lighting:  DefaultLightingProperties(),
		blendMode: BlendModeOpaque,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Lighting() LightingProperties {
	return m.lighting
}

func (m *material) BlendMode() BlendMode {
	return m.blendMode
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetLighting(lighting LightingProperties) {
	m.lighting = lighting
}

func (m *material) SetBlendMode(mode BlendMode) {
	m.blendMode = mode
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
