package model

import "fmt"

// IndexOverflowError reports a mesh index that cannot be narrowed to the 16-bit
// index format used by mesh index buffers.
type IndexOverflowError struct {
	// Position is the offset of the offending index within the source index slice.
	Position int

	// Value is the index value that exceeded the 16-bit range.
	Value uint32
}

func (e *IndexOverflowError) Error() string {
	return fmt.Sprintf("model: index %d at position %d exceeds the 16-bit index range", e.Value, e.Position)
}
