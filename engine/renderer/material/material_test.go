package material

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("cube"))

	if m.Name() != "cube" {
		t.Errorf("name = %q, want %q", m.Name(), "cube")
	}
	if got := m.BaseColor(); got != [4]float32{1, 1, 1, 1} {
		t.Errorf("base color = %v, want opaque white", got)
	}
	if m.BlendMode() != BlendModeOpaque {
		t.Errorf("blend mode = %v, want opaque", m.BlendMode())
	}
	if got, want := m.Lighting(), DefaultLightingProperties(); got != want {
		t.Errorf("lighting = %+v, want %+v", got, want)
	}
	if m.DiffuseTexture() != nil {
		t.Errorf("diffuse texture = %v, want nil", m.DiffuseTexture())
	}
}

func TestMaterialOptions(t *testing.T) {
	lighting := LightingProperties{Ambient: 0.1, Diffuse: 0.8, Specular: 0.5, SpecularPower: 12}
	m := NewMaterial(
		WithBaseColor([4]float32{0.2, 0.4, 0.6, 1}),
		WithBlendMode(BlendModeAlphaBlending),
		WithLighting(lighting),
		WithPipelineKey("object/alpha/occlusion=1"),
	)

	if got := m.BaseColor(); got != [4]float32{0.2, 0.4, 0.6, 1} {
		t.Errorf("base color = %v", got)
	}
	if m.BlendMode() != BlendModeAlphaBlending {
		t.Errorf("blend mode = %v, want alpha blending", m.BlendMode())
	}
	if m.Lighting() != lighting {
		t.Errorf("lighting = %+v, want %+v", m.Lighting(), lighting)
	}
	if got := m.PipelineKey(); got != "object/alpha/occlusion=1" {
		t.Errorf("pipeline key = %q", got)
	}

	m.SetBlendMode(BlendModeShadow)
	if m.BlendMode() != BlendModeShadow {
		t.Errorf("blend mode after SetBlendMode = %v, want shadow", m.BlendMode())
	}
	m.SetPipelineKey("object/shadow/occlusion=1")
	if got := m.PipelineKey(); got != "object/shadow/occlusion=1" {
		t.Errorf("pipeline key after SetPipelineKey = %q", got)
	}
}

func TestGPUObjectUniformsSize(t *testing.T) {
	var u GPUObjectUniforms
	if got := u.Size(); got != 256 {
		t.Errorf("Size() = %d, want 256", got)
	}
	if got := len(u.Marshal()); got != 256 {
		t.Errorf("Marshal() length = %d, want 256", got)
	}
}

func marshalledFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func TestGPUObjectUniformsMarshalOffsets(t *testing.T) {
	u := GPUObjectUniforms{}
	u.MVP[0] = 1.5
	u.MV[0] = 2.5
	u.UvTransform[0] = 3.5
	u.ViewLightDirection = [4]float32{0, 1, 0, 0}
	u.ColorCorrection = [4]float32{1, 1, 1, 0.8}
	u.ObjectColor = [4]float32{0.1, 0.2, 0.3, 1}
	u.MaterialParams = [4]float32{0.3, 1, 1, 6}
	u.DepthParams = [4]float32{1.6, 0, 0, 0}

	buf := u.Marshal()
	tests := []struct {
		name   string
		offset int
		want   float32
	}{
		{"mvp", 0, 1.5},
		{"mv", 64, 2.5},
		{"uv transform", 128, 3.5},
		{"light direction y", 176 + 4, 1},
		{"color correction a", 192 + 12, 0.8},
		{"object color b", 208 + 8, 0.3},
		{"specular power", 224 + 12, 6},
		{"depth aspect", 240, 1.6},
	}
	for _, tt := range tests {
		if got := marshalledFloat(buf, tt.offset); got != tt.want {
			t.Errorf("%s at offset %d = %v, want %v", tt.name, tt.offset, got, tt.want)
		}
	}
}

func TestSetUvTransform(t *testing.T) {
	var u GPUObjectUniforms
	// Row-major input: row i is {3i, 3i+1, 3i+2}.
	u.SetUvTransform([9]float32{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
	})

	// Columns pack into vec4-aligned slots with a zero pad.
	want := [12]float32{
		0, 3, 6, 0,
		1, 4, 7, 0,
		2, 5, 8, 0,
	}
	if u.UvTransform != want {
		t.Errorf("UvTransform = %v, want %v", u.UvTransform, want)
	}
}
