package session

// TrackingState describes how well the motion tracking system currently knows
// an anchor's pose.
type TrackingState int

const (
	// TrackingStateTracking means the pose is current and the anchor is drawn.
	TrackingStateTracking TrackingState = iota

	// TrackingStatePaused means tracking is temporarily lost; the anchor is
	// skipped without side effects until tracking resumes.
	TrackingStatePaused

	// TrackingStateStopped means the anchor will never be tracked again.
	TrackingStateStopped
)

// String returns the tracking state name for logging.
func (s TrackingState) String() string {
	switch s {
	case TrackingStateTracking:
		return "tracking"
	case TrackingStatePaused:
		return "paused"
	case TrackingStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Anchor is a tracked real-world pose at which a virtual object is rendered,
// paired with the tint color chosen at placement time. Anchors are appended by
// the placement collaborator (e.g. on user tap) and never mutated by the
// rendering core.
type Anchor struct {
	// Pose is the anchor's rigid transform as a column-major model matrix.
	Pose [16]float32

	// State gates drawing: only TrackingStateTracking anchors are drawn.
	State TrackingState

	// Color is the RGBA tint for the virtual object at this anchor.
	Color [4]float32
}
