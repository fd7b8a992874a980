package common

import (
	"math"
	"testing"
)

func matricesEqual(a, b []float32, tolerance float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tolerance {
			return false
		}
	}
	return true
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i)
	}

	Mul4(out[:], id[:], m[:])
	if !matricesEqual(out[:], m[:], 0) {
		t.Errorf("I * m = %v, want %v", out, m)
	}
	Mul4(out[:], m[:], id[:])
	if !matricesEqual(out[:], m[:], 0) {
		t.Errorf("m * I = %v, want %v", out, m)
	}
}

func TestMul4TranslationThenScale(t *testing.T) {
	var translate, scale, out [16]float32
	Identity(translate[:])
	translate[12], translate[13], translate[14] = 1, 2, 3
	ScaleUniform(scale[:], 2)

	// translate * scale applies the scale first, so the offset is unscaled.
	Mul4(out[:], translate[:], scale[:])
	v := []float32{1, 1, 1, 1}
	Mul4Vec4(v, out[:], v)
	want := []float32{3, 4, 5, 1}
	if !matricesEqual(v, want, 1e-6) {
		t.Errorf("transformed point = %v, want %v", v, want)
	}
}

func TestMul4Aliasing(t *testing.T) {
	var a, b, want [16]float32
	Identity(a[:])
	a[12] = 5
	ScaleUniform(b[:], 3)
	Mul4(want[:], a[:], b[:])

	// Writing into an operand must not corrupt the result.
	Mul4(a[:], a[:], b[:])
	if !matricesEqual(a[:], want[:], 0) {
		t.Errorf("aliased multiply = %v, want %v", a, want)
	}
}

func TestNormalizeVec3(t *testing.T) {
	v := []float32{3, 0, 4, 7}
	NormalizeVec3(v)
	want := []float32{0.6, 0, 0.8, 7}
	if !matricesEqual(v, want, 1e-6) {
		t.Errorf("normalized = %v, want %v", v, want)
	}

	zero := []float32{0, 0, 0}
	NormalizeVec3(zero)
	if zero[0] != 0 || zero[1] != 0 || zero[2] != 0 {
		t.Errorf("zero vector changed to %v", zero)
	}
}

func TestPerspectiveClipRange(t *testing.T) {
	var p [16]float32
	Perspective(p[:], float32(math.Pi)/2, 1, 1, 101)

	// A point on the near plane lands at z/w = 0; the far plane at z/w = 1.
	near := []float32{0, 0, -1, 1}
	Mul4Vec4(near, p[:], near)
	if got := near[2] / near[3]; math.Abs(float64(got)) > 1e-5 {
		t.Errorf("near plane z/w = %v, want 0", got)
	}
	far := []float32{0, 0, -101, 1}
	Mul4Vec4(far, p[:], far)
	if got := far[2] / far[3]; math.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("far plane z/w = %v, want 1", got)
	}
}

func TestLookAtTransformsTargetToViewAxis(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 5, 0, 0, 0, 0, 1, 0)

	// The target sits straight ahead: on the negative view-space z axis.
	target := []float32{0, 0, 0, 1}
	Mul4Vec4(target, view[:], target)
	want := []float32{0, 0, -5, 1}
	if !matricesEqual(target, want, 1e-5) {
		t.Errorf("view-space target = %v, want %v", target, want)
	}

	// The eye itself maps to the view-space origin.
	eye := []float32{0, 0, 5, 1}
	Mul4Vec4(eye, view[:], eye)
	if !matricesEqual(eye, []float32{0, 0, 0, 1}, 1e-5) {
		t.Errorf("view-space eye = %v, want origin", eye)
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes[float32](nil) != nil {
		t.Errorf("empty slice did not map to nil")
	}
	data := []float32{1}
	b := SliceToBytes(data)
	if len(b) != 4 {
		t.Fatalf("byte length = %d, want 4", len(b))
	}
	// 1.0f is 0x3f800000 little-endian.
	if b[0] != 0 || b[1] != 0 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("bytes = % x, want 00 00 80 3f", b)
	}
}
