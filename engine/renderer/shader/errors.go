package shader

import "fmt"

// CompileError reports a shader source that failed pre-processing or parsing.
// The Log field carries the underlying processing output so failures are never
// reduced to a bare boolean.
type CompileError struct {
	// Key is the shader key the failure belongs to.
	Key string

	// Log is the processing/compiler output describing the failure.
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q failed to compile: %s", e.Key, e.Log)
}
