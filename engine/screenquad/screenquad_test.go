package screenquad

import (
	"errors"
	"math"
	"testing"

	"github.com/arlab/depthscene/engine/session"
)

// halfShiftTransform maps NDC to texture space as v*0.5+0.5, the transform an
// unrotated, uncropped capture produces.
type halfShiftTransform struct {
	calls int
}

func (t *halfShiftTransform) TransformCoordinates(ndc []float32) []float32 {
	t.calls++
	out := make([]float32, len(ndc))
	for i, v := range ndc {
		out[i] = v*0.5 + 0.5
	}
	return out
}

var _ session.CoordinateTransformer = &halfShiftTransform{}

func floatsEqual(a, b []float32, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tolerance {
			return false
		}
	}
	return true
}

func TestCroppedUVNoCrop(t *testing.T) {
	// Matching aspect ratios crop nothing: the UVs span the full image.
	got, err := CroppedUV(640, 480, 640.0/480.0, 0)
	if err != nil {
		t.Fatalf("CroppedUV: %v", err)
	}
	want := [8]float32{0, 1, 1, 1, 0, 0, 1, 0}
	if !floatsEqual(got[:], want[:], 1e-5) {
		t.Errorf("uvs = %v, want %v", got, want)
	}
}

func TestCroppedUVRotations(t *testing.T) {
	// A 2:1 image on a square screen crops a quarter off each side: u=0.25, v=0.
	tests := []struct {
		rotation int
		want     [8]float32
	}{
		{0, [8]float32{0.25, 1, 0.75, 1, 0.25, 0, 0.75, 0}},
		{90, [8]float32{0.75, 1, 0.75, 0, 0.25, 1, 0.25, 0}},
		{180, [8]float32{0.75, 0, 0.25, 0, 0.75, 1, 0.25, 1}},
		{270, [8]float32{0.25, 0, 0.25, 1, 0.75, 0, 0.75, 1}},
	}
	for _, tt := range tests {
		got, err := CroppedUV(200, 100, 1.0, tt.rotation)
		if err != nil {
			t.Fatalf("CroppedUV(rotation=%d): %v", tt.rotation, err)
		}
		if !floatsEqual(got[:], tt.want[:], 1e-5) {
			t.Errorf("rotation %d: uvs = %v, want %v", tt.rotation, got, tt.want)
		}
	}
}

func TestCroppedUVWideScreen(t *testing.T) {
	// A square image on a 2:1 screen crops a quarter off top and bottom: v=0.25.
	got, err := CroppedUV(100, 100, 2.0, 0)
	if err != nil {
		t.Fatalf("CroppedUV: %v", err)
	}
	want := [8]float32{0, 0.75, 1, 0.75, 0, 0.25, 1, 0.25}
	if !floatsEqual(got[:], want[:], 1e-5) {
		t.Errorf("uvs = %v, want %v", got, want)
	}
}

func TestCroppedUVBounds(t *testing.T) {
	// Every supported rotation and crop direction stays inside [0, 1].
	for _, rotation := range []int{0, 90, 180, 270} {
		for _, aspect := range []float32{0.5, 1.0, 16.0 / 9.0, 3.0} {
			uvs, err := CroppedUV(1920, 1080, aspect, rotation)
			if err != nil {
				t.Fatalf("CroppedUV(aspect=%v, rotation=%d): %v", aspect, rotation, err)
			}
			for i, v := range uvs {
				if v < 0 || v > 1 {
					t.Errorf("aspect %v rotation %d: uv float %d = %v, outside [0, 1]", aspect, rotation, i, v)
				}
			}
		}
	}
}

func TestCroppedUVUnsupportedRotation(t *testing.T) {
	_, err := CroppedUV(640, 480, 1.0, 45)
	var rotErr *UnsupportedRotationError
	if !errors.As(err, &rotErr) {
		t.Fatalf("CroppedUV(rotation=45): got %v, want *UnsupportedRotationError", err)
	}
	if rotErr.Rotation != 45 {
		t.Errorf("Rotation = %d, want 45", rotErr.Rotation)
	}
}

func TestSubdivideStrip(t *testing.T) {
	quad := [8]float32{-0.6, -0.4, +0.6, -0.4, -0.6, +0.4, +0.6, +0.4}

	for _, slices := range []int{0, 1, 5} {
		out := SubdivideStrip(quad, slices)
		if want := 4*slices + 8; len(out) != want {
			t.Fatalf("slices=%d: %d floats, want %d", slices, len(out), want)
		}

		// First and last pairs are the original bottom and top edges.
		if !floatsEqual(out[:4], quad[:4], 0) {
			t.Errorf("slices=%d: bottom edge = %v, want %v", slices, out[:4], quad[:4])
		}
		if !floatsEqual(out[len(out)-4:], quad[4:], 0) {
			t.Errorf("slices=%d: top edge = %v, want %v", slices, out[len(out)-4:], quad[4:])
		}

		// Each row keeps the quad's X coordinates and strictly ascends in Y.
		prevY := float32(math.Inf(-1))
		for i := 0; i*4 < len(out); i++ {
			row := out[i*4 : i*4+4]
			if row[0] != quad[0] || row[2] != quad[2] {
				t.Errorf("slices=%d row %d: x = (%v, %v), want (%v, %v)", slices, i, row[0], row[2], quad[0], quad[2])
			}
			if row[1] != row[3] {
				t.Errorf("slices=%d row %d: uneven y pair (%v, %v)", slices, i, row[1], row[3])
			}
			if row[1] <= prevY {
				t.Errorf("slices=%d row %d: y %v not above previous row %v", slices, i, row[1], prevY)
			}
			prevY = row[1]
		}
	}
}

func TestVertexCount(t *testing.T) {
	if got := NewFullScreenQuad().VertexCount(); got != 4 {
		t.Errorf("full-screen quad vertex count = %d, want 4", got)
	}
	if got := NewOverlayPatch(0).VertexCount(); got != 4 {
		t.Errorf("unsliced patch vertex count = %d, want 4", got)
	}
	if got := NewOverlayPatch(5).VertexCount(); got != 14 {
		t.Errorf("5-slice patch vertex count = %d, want 14", got)
	}
}

func TestPackedVertexLayout(t *testing.T) {
	tests := []struct {
		name       string
		geometry   *Geometry
		wantOffset uint64
	}{
		{"full-screen quad", NewFullScreenQuad(), 32},
		{"5-slice patch", NewOverlayPatch(5), 112},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.geometry.UVByteOffset(); got != tt.wantOffset {
				t.Errorf("UVByteOffset = %d, want %d", got, tt.wantOffset)
			}
			// Positions then UVs, 4 bytes per float, in one buffer.
			if got, want := len(tt.geometry.PackedVertexBytes()), int(tt.wantOffset)*2; got != want {
				t.Errorf("PackedVertexBytes length = %d, want %d", got, want)
			}
		})
	}
}

func TestSetUVRejectsMismatchedLength(t *testing.T) {
	g := NewFullScreenQuad()
	if g.SetUV(make([]float32, 6)) {
		t.Errorf("SetUV accepted a short buffer")
	}
	for i, v := range g.UV() {
		if v != 0 {
			t.Errorf("uv float %d = %v after rejected SetUV, want 0", i, v)
		}
	}
	if !g.SetUV(make([]float32, 8)) {
		t.Errorf("SetUV rejected a matching buffer")
	}
}

func TestRefreshUVGatedOnGeometryChange(t *testing.T) {
	g := NewFullScreenQuad()
	transform := &halfShiftTransform{}

	frame := &session.Frame{DisplayTransform: transform}
	if g.RefreshUV(frame) {
		t.Errorf("RefreshUV recomputed without a geometry change")
	}
	if transform.calls != 0 {
		t.Errorf("transform queried %d times without a geometry change", transform.calls)
	}

	frame.DisplayGeometryChanged = true
	if !g.RefreshUV(frame) {
		t.Fatalf("RefreshUV did not recompute on geometry change")
	}
	want := []float32{0, 0, 1, 0, 0, 1, 1, 1}
	if !floatsEqual(g.UV(), want, 1e-6) {
		t.Errorf("uvs = %v, want %v", g.UV(), want)
	}
}

func TestTransformUVNil(t *testing.T) {
	g := NewFullScreenQuad()
	if g.TransformUV(nil) {
		t.Errorf("TransformUV recomputed with a nil transform")
	}
	if g.RefreshUV(nil) {
		t.Errorf("RefreshUV recomputed with a nil frame")
	}
}
