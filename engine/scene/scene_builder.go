package scene

import (
	"github.com/arlab/depthscene/engine/background"
	"github.com/arlab/depthscene/engine/inpaint"
	"github.com/arlab/depthscene/engine/object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjectScale sets the uniform scale factor applied to every anchor pose
// before drawing the virtual object. Defaults to 1.0.
//
// Parameters:
//   - scale: the uniform scale factor
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjectScale(scale float32) SceneBuilderOption {
	return func(s *scene) {
		s.objectScale = scale
	}
}

// WithMatrixWorkers sets the number of worker goroutines used during the
// parallel per-anchor matrix packing phase of DrawFrame. Defaults to
// runtime.NumCPU()-1. Higher values may improve throughput with many anchors;
// lower values reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of matrix workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMatrixWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.matrixWorkers = n
	}
}

// WithBackgroundRenderer replaces the default background pass renderer,
// allowing a pre-configured one (e.g. with timestamp-zero suppression
// disabled) to be injected before Create.
//
// Parameters:
//   - b: the background pass renderer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackgroundRenderer(b background.Renderer) SceneBuilderOption {
	return func(s *scene) {
		s.backgroundPass = b
	}
}

// WithObjectRenderer replaces the default object pass renderer.
//
// Parameters:
//   - o: the object pass renderer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjectRenderer(o object.Renderer) SceneBuilderOption {
	return func(s *scene) {
		s.objectPass = o
	}
}

// WithInpaintRenderer replaces the default inpaint overlay pass renderer,
// allowing a pre-configured one (e.g. with a different subdivision count or
// UV refresh policy) to be injected before Create.
//
// Parameters:
//   - i: the inpaint overlay pass renderer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInpaintRenderer(i inpaint.Renderer) SceneBuilderOption {
	return func(s *scene) {
		s.inpaintPass = i
	}
}
