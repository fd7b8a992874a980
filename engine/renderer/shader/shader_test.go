package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestFeatureFlagsKey(t *testing.T) {
	off := FeatureFlags{}
	on := FeatureFlags{UseDepthForOcclusion: true}

	if got := off.Key(); got != "occlusion=0" {
		t.Errorf("Key() = %q, want %q", got, "occlusion=0")
	}
	if got := on.Key(); got != "occlusion=1" {
		t.Errorf("Key() = %q, want %q", got, "occlusion=1")
	}
	if off.Key() == on.Key() {
		t.Errorf("distinct flag sets produced the same key %q", off.Key())
	}
}

func TestProcessFlagInjection(t *testing.T) {
	source := "//@ds:flag USE_DEPTH_FOR_OCCLUSION\nfn f() {}"

	tests := []struct {
		name  string
		flags FeatureFlags
		want  string
	}{
		{"disabled", FeatureFlags{}, "const USE_DEPTH_FOR_OCCLUSION: u32 = 0u;"},
		{"enabled", FeatureFlags{UseDepthForOcclusion: true}, "const USE_DEPTH_FOR_OCCLUSION: u32 = 1u;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewPreProcessor(tt.flags).Process(source)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("processed source missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestProcessGroupDeclaration(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"uniform struct",
			"//@ds:group 0 0 storage_uniform uniforms object_uniforms",
			"@group(0) @binding(0) var<uniform> uniforms: ObjectUniforms;",
		},
		{
			"storage array",
			"//@ds:group 1 2 storage_read items array<object_uniforms>",
			"@group(1) @binding(2) var<storage, read> items: array<ObjectUniforms>;",
		},
	}
	pp := NewPreProcessor(FeatureFlags{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := pp.Process(tt.source)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("processed source missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestProcessInclude(t *testing.T) {
	out, err := NewPreProcessor(FeatureFlags{}).Process("//@ds:include quad_vertex")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(out, "struct QuadVertex") {
		t.Errorf("processed source missing the injected struct:\n%s", out)
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty annotation", "//@ds:", "empty @ds annotation"},
		{"unknown type", "//@ds:frobnicate quad_vertex", "unknown @ds annotation type"},
		{"unknown flag", "//@ds:flag NO_SUCH_FLAG", "unknown feature flag"},
		{"unknown struct", "//@ds:include no_such_struct", "unknown struct type"},
		{"group arity", "//@ds:group 0 0 storage_uniform uniforms", "exactly five arguments"},
		{"bad group index", "//@ds:group x 0 storage_uniform uniforms object_uniforms", "invalid group number"},
		{"unknown address space", "//@ds:group 0 0 nowhere uniforms object_uniforms", "unknown address space"},
	}
	pp := NewPreProcessor(FeatureFlags{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pp.Process("fn f() {}\n" + tt.source)
			if err == nil {
				t.Fatalf("Process accepted a malformed annotation")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			// The annotation sits on line 2 of the wrapped source.
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("error %q does not carry the source line", err)
			}
		})
	}
}

const occlusionFragmentSource = `//@ds:flag USE_DEPTH_FOR_OCCLUSION
@group(0) @binding(0) var depth_texture: texture_2d<u32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    if (USE_DEPTH_FOR_OCCLUSION == 1u) {
        return vec4<f32>(1.0);
    }
    return vec4<f32>(0.0);
}
`

func TestNewShaderPermutations(t *testing.T) {
	on, err := NewShader("object_frag", ShaderTypeFragment, []byte(occlusionFragmentSource), FeatureFlags{UseDepthForOcclusion: true})
	if err != nil {
		t.Fatalf("NewShader(occlusion on): %v", err)
	}
	off, err := NewShader("object_frag", ShaderTypeFragment, []byte(occlusionFragmentSource), FeatureFlags{})
	if err != nil {
		t.Fatalf("NewShader(occlusion off): %v", err)
	}

	if got := on.EntryPoint(); got != "fs_main" {
		t.Errorf("entry point = %q, want %q", got, "fs_main")
	}
	if !strings.Contains(on.Source(), "= 1u;") {
		t.Errorf("enabled permutation source missing baked flag:\n%s", on.Source())
	}
	if !strings.Contains(off.Source(), "= 0u;") {
		t.Errorf("disabled permutation source missing baked flag:\n%s", off.Source())
	}
	// The module label disambiguates permutations of the same key.
	if got, want := on.Module().Label, "object_frag[occlusion=1]"; got != want {
		t.Errorf("module label = %q, want %q", got, want)
	}

	desc := on.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("group 0 has %d entries, want 1", len(desc.Entries))
	}
	if desc.Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("entry visibility = %v, want fragment", desc.Entries[0].Visibility)
	}
	if got := on.BindGroupVarName(0, 0); got != "depth_texture" {
		t.Errorf("BindGroupVarName(0, 0) = %q, want %q", got, "depth_texture")
	}
	if binding, ok := on.BindGroupFromVarName(0, "depth_texture"); !ok || binding != 0 {
		t.Errorf("BindGroupFromVarName = (%d, %v), want (0, true)", binding, ok)
	}
}

func TestNewShaderCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty source", "", "empty shader source"},
		{"no entry point", "fn helper() {}", "no matching entry point"},
		{"bad annotation", "//@ds:flag NO_SUCH_FLAG\n@fragment fn fs_main() {}", "unknown feature flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader("bad", ShaderTypeFragment, []byte(tt.source), FeatureFlags{})
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("NewShader: got %v, want *CompileError", err)
			}
			if compileErr.Key != "bad" {
				t.Errorf("Key = %q, want %q", compileErr.Key, "bad")
			}
			if !strings.Contains(compileErr.Log, tt.want) {
				t.Errorf("Log %q does not mention %q", compileErr.Log, tt.want)
			}
		})
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
		2: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := MergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 3 {
		t.Fatalf("merged %d groups, want 3", len(merged))
	}

	// Shared binding gets both stage bits; the fragment-only binding keeps its own.
	shared := merged[0]
	if len(shared.Entries) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(shared.Entries))
	}
	if shared.Entries[0].Binding != 0 || shared.Entries[1].Binding != 1 {
		t.Errorf("group 0 entries not sorted by binding: %v, %v", shared.Entries[0].Binding, shared.Entries[1].Binding)
	}
	if want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment; shared.Entries[0].Visibility != want {
		t.Errorf("shared binding visibility = %v, want %v", shared.Entries[0].Visibility, want)
	}
	if shared.Entries[1].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("fragment-only binding visibility = %v, want fragment", shared.Entries[1].Visibility)
	}

	// Single-stage groups pass through unchanged.
	if got := merged[1].Entries[0].Visibility; got != wgpu.ShaderStageFragment {
		t.Errorf("fragment-only group visibility = %v, want fragment", got)
	}
	if got := merged[2].Entries[0].Visibility; got != wgpu.ShaderStageVertex {
		t.Errorf("vertex-only group visibility = %v, want vertex", got)
	}
}
