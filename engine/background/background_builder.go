package background

// Option is a functional option used to configure the background Renderer
// during construction.
type Option func(*backgroundRenderer)

// WithSuppressTimestampZeroRendering controls whether frames carrying the
// sentinel timestamp 0 are drawn. Suppression is enabled by default so the
// first frames before a real camera image arrives do not flash black.
//
// Parameters:
//   - suppress: whether to skip drawing for timestamp-0 frames
//
// Returns:
//   - Option: a function that sets the suppression behavior
func WithSuppressTimestampZeroRendering(suppress bool) Option {
	return func(b *backgroundRenderer) {
		b.suppressTimestampZero = suppress
	}
}
