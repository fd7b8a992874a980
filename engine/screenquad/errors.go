package screenquad

import "fmt"

// UnsupportedRotationError reports a camera-to-display rotation outside the
// four cardinal values. This is a programming-contract violation by the caller,
// not a recoverable runtime condition.
type UnsupportedRotationError struct {
	// Rotation is the rejected rotation value in degrees.
	Rotation int
}

func (e *UnsupportedRotationError) Error() string {
	return fmt.Sprintf("unsupported camera-to-display rotation %d: must be one of 0, 90, 180, 270", e.Rotation)
}
