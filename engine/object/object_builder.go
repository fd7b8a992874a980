package object

import "github.com/arlab/depthscene/engine/renderer/material"

// Option is a functional option used to configure the object Renderer during
// construction.
type Option func(*objectRenderer)

// WithBlendMode sets the initial blend mode the first pipeline permutation is
// built with. Defaults to BlendModeOpaque.
//
// Parameters:
//   - mode: the blend mode to start with
//
// Returns:
//   - Option: a function that sets the initial blend mode
func WithBlendMode(mode material.BlendMode) Option {
	return func(o *objectRenderer) {
		o.blendMode = mode
	}
}

// WithLighting sets the initial scalar lighting coefficients. Defaults to
// material.DefaultLightingProperties.
//
// Parameters:
//   - lighting: the coefficients to start with
//
// Returns:
//   - Option: a function that sets the initial lighting
func WithLighting(lighting material.LightingProperties) Option {
	return func(o *objectRenderer) {
		o.lighting = lighting
	}
}

// WithDepthForOcclusion sets the initial occlusion permutation, so the first
// pipeline built at Create already carries the occlusion flag.
//
// Parameters:
//   - enabled: whether occlusion starts enabled
//
// Returns:
//   - Option: a function that sets the initial occlusion flag
func WithDepthForOcclusion(enabled bool) Option {
	return func(o *objectRenderer) {
		o.flags.UseDepthForOcclusion = enabled
	}
}
