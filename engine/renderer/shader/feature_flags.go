package shader

import "fmt"

// FeatureFlags describes the compile-time feature set a shader permutation is built
// with. Two FeatureFlags values with equal fields describe the same permutation and
// produce the same Key, so callers can use structural comparison to detect no-op
// flag changes before rebuilding anything.
type FeatureFlags struct {
	// UseDepthForOcclusion enables depth-texture occlusion sampling in the object
	// pass fragment shader. Permutations built with this flag additionally require
	// the depth texture, depth UV transform, and depth aspect ratio bindings to be
	// populated before drawing.
	UseDepthForOcclusion bool
}

// Key returns a stable cache key identifying this permutation. Equal FeatureFlags
// values always produce equal keys.
//
// Returns:
//   - string: the permutation cache key
func (f FeatureFlags) Key() string {
	return fmt.Sprintf("occlusion=%d", boolToInt(f.UseDepthForOcclusion))
}

// value returns the WGSL const value for the named flag.
//
// Parameters:
//   - name: the flag name as it appears in @ds:flag annotations
//
// Returns:
//   - uint32: 1 if the flag is enabled, 0 otherwise
//   - bool: false if the name does not match a known flag
func (f FeatureFlags) value(name AnnotationArg) (uint32, bool) {
	switch name {
	case AnnotationArgUseDepthForOcclusion:
		return uint32(boolToInt(f.UseDepthForOcclusion)), true
	default:
		return 0, false
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
