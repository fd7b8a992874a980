package inpaint

// Option is a functional option used to configure the overlay Renderer during
// construction.
type Option func(*inpaintRenderer)

// WithSlices sets the number of intermediate strip rows the overlay patch is
// subdivided into. Defaults to DefaultSlices. Negative values are treated as 0.
//
// Parameters:
//   - slices: the number of intermediate rows
//
// Returns:
//   - Option: a function that sets the subdivision count
func WithSlices(slices int) Option {
	return func(i *inpaintRenderer) {
		if slices < 0 {
			slices = 0
		}
		i.slices = slices
	}
}

// WithUVRefreshPolicy sets when the patch texture coordinates are re-derived
// from the display transform. Defaults to UVRefreshOnce.
//
// Parameters:
//   - policy: the refresh policy
//
// Returns:
//   - Option: a function that sets the refresh policy
func WithUVRefreshPolicy(policy UVRefreshPolicy) Option {
	return func(i *inpaintRenderer) {
		i.uvPolicy = policy
	}
}
