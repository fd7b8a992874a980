package pipeline

import (
	"testing"

	"github.com/arlab/depthscene/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("object/opaque/occlusion=0")

	if got := p.PipelineKey(); got != "object/opaque/occlusion=0" {
		t.Errorf("pipeline key = %q", got)
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Errorf("depth test/write = %v/%v, want true/true", p.DepthTestEnabled(), p.DepthWriteEnabled())
	}
	if p.BlendEnabled() {
		t.Errorf("blending enabled by default")
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("cull mode = %v, want none", p.CullMode())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v, want triangle list", p.Topology())
	}
	if p.Pipeline() != nil {
		t.Errorf("render pipeline = %v before initialization, want nil", p.Pipeline())
	}
}

func TestShadowBlendPreset(t *testing.T) {
	p := NewPipeline("object/shadow/occlusion=0", WithShadowBlend())

	if !p.BlendEnabled() {
		t.Fatalf("shadow preset did not enable blending")
	}
	// Shadow surfaces only darken what is on screen and leave depth untouched.
	if p.DepthWriteEnabled() {
		t.Errorf("shadow preset left depth writes enabled")
	}
	bs := p.BlendState()
	if bs.Color.SrcFactor != wgpu.BlendFactorZero {
		t.Errorf("color src factor = %v, want zero", bs.Color.SrcFactor)
	}
	if bs.Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("color dst factor = %v, want one-minus-src-alpha", bs.Color.DstFactor)
	}
}

func TestPremultipliedAlphaBlendPreset(t *testing.T) {
	p := NewPipeline("object/alpha/occlusion=0", WithPremultipliedAlphaBlend())

	if !p.BlendEnabled() {
		t.Fatalf("alpha preset did not enable blending")
	}
	if !p.DepthWriteEnabled() {
		t.Errorf("alpha preset disabled depth writes")
	}
	bs := p.BlendState()
	if bs.Color.SrcFactor != wgpu.BlendFactorOne {
		t.Errorf("color src factor = %v, want one", bs.Color.SrcFactor)
	}
	if bs.Alpha.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("alpha dst factor = %v, want one-minus-src-alpha", bs.Alpha.DstFactor)
	}
}

func TestBuilderOptions(t *testing.T) {
	p := NewPipeline("background/camera",
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithDepthBias(2, 1.5),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
	)

	if p.Topology() != wgpu.PrimitiveTopologyTriangleStrip {
		t.Errorf("topology = %v, want triangle strip", p.Topology())
	}
	if p.DepthTestEnabled() || p.DepthWriteEnabled() {
		t.Errorf("depth test/write = %v/%v, want false/false", p.DepthTestEnabled(), p.DepthWriteEnabled())
	}
	if p.DepthBias() != 2 || p.DepthBiasSlopeScale() != 1.5 {
		t.Errorf("depth bias = %d/%v, want 2/1.5", p.DepthBias(), p.DepthBiasSlopeScale())
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("cull mode = %v, want back", p.CullMode())
	}
	if p.FrontFace() != wgpu.FrontFaceCW {
		t.Errorf("front face = %v, want clockwise", p.FrontFace())
	}
}

const mergeVertexSource = `
@group(0) @binding(0) var<uniform> uniforms: Uniforms;

struct Uniforms {
    mvp: mat4x4<f32>,
};

@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return uniforms.mvp * vec4<f32>(0.0);
}
`

const mergeFragmentSource = `
@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var color_texture: texture_2d<f32>;

struct Uniforms {
    mvp: mat4x4<f32>,
};

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`

func TestMergedBindGroupLayout(t *testing.T) {
	vs, err := shader.NewShader("merge_vert", shader.ShaderTypeVertex, []byte(mergeVertexSource), shader.FeatureFlags{})
	if err != nil {
		t.Fatalf("vertex shader: %v", err)
	}
	fs, err := shader.NewShader("merge_frag", shader.ShaderTypeFragment, []byte(mergeFragmentSource), shader.FeatureFlags{})
	if err != nil {
		t.Fatalf("fragment shader: %v", err)
	}

	p := NewPipeline("merge", WithVertexShader(vs), WithFragmentShader(fs))
	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypeFragment) != fs {
		t.Fatalf("shaders not retrievable by type")
	}

	merged := p.MergedBindGroupLayout(0)
	if len(merged.Entries) != 2 {
		t.Fatalf("merged group 0 has %d entries, want 2", len(merged.Entries))
	}
	// The uniform buffer is declared in both stages and must carry both bits.
	if want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment; merged.Entries[0].Visibility != want {
		t.Errorf("shared entry visibility = %v, want %v", merged.Entries[0].Visibility, want)
	}
	if merged.Entries[1].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("texture entry visibility = %v, want fragment", merged.Entries[1].Visibility)
	}

	if got := p.MergedBindGroupLayout(3); len(got.Entries) != 0 {
		t.Errorf("undeclared group returned %d entries", len(got.Entries))
	}
}
