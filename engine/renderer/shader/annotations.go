// annotations.go defines the annotation types, argument constants, and parser for the
// depthscene WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @ds: that drive automatic struct injection, bind group declaration, and feature-flag
// constant generation. The parsed results are stored as Annotation values and consumed by
// the PreProcessor when a shader permutation is built.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a depthscene annotation within a WGSL
// comment line. Every annotation must appear on a line beginning with "//" followed by
// this prefix.
const annotationPrefix = "@ds:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation is consumed
	// entirely during pre-processing.
	//
	// Syntax: //@ds:include <struct_type>
	//
	// Example: //@ds:include quad_vertex
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration.
	// The declaration carries the group index, binding index, and the resolved struct
	// type, so shaders never hand-write buffer binding declarations for registered
	// struct types.
	//
	// Syntax: //@ds:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@ds:group 0 0 storage_uniform uniforms object_uniforms
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeFlag generates a WGSL const declaration whose value is taken from
	// the FeatureFlags the shader permutation was built with. Enabled flags emit 1u,
	// disabled flags emit 0u. This is how a single shader source yields multiple
	// compiled permutations: the flag constant is baked into the module at build time
	// and branch conditions on it fold away during compilation.
	//
	// Syntax: //@ds:flag <FLAG_NAME>
	//
	// Example: //@ds:flag USE_DEPTH_FOR_OCCLUSION
	AnnotationTypeFlag AnnotationType = "flag"
)

// Annotation represents a single parsed @ds: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or flag).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct type key (e.g. "quad_vertex")
	//   - group:   [0] = address space, [1] = var name, [2] = WGSL type key
	//   - flag:    [0] = flag name (e.g. "USE_DEPTH_FOR_OCCLUSION")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group annotations. Nil for include and flag annotations.
	Group *int

	// Binding is the @binding index for group annotations. Nil for include and flag annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and feature flag names (used with flag).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @ds:include annotations
// (to inject the struct source) and in @ds:group annotations (as the type field). Each
// maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgVertex identifies the VertexInput struct for static meshes.
	// Source: engine/model/assets/vertex.wgsl
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgQuadVertex identifies the QuadVertex struct for screen-space quads.
	// Source: engine/model/assets/quad_vertex.wgsl
	AnnotationArgQuadVertex AnnotationArg = "quad_vertex"

	// AnnotationArgObjectUniforms identifies the ObjectUniforms struct carrying the
	// per-draw matrices, lighting, material, and occlusion parameters of the object pass.
	// Source: engine/renderer/material/assets/object_uniforms.wgsl
	AnnotationArgObjectUniforms AnnotationArg = "object_uniforms"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @ds:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Feature flag arguments ─────────────────────────────────────────────────────
// These name the compile-time feature flags a shader permutation can be built with.
// Each must have a corresponding accessor in the pre-processor's flag registry.

const (
	// AnnotationArgUseDepthForOcclusion gates depth-texture occlusion sampling in the
	// object pass fragment shader.
	AnnotationArgUseDepthForOcclusion AnnotationArg = "USE_DEPTH_FOR_OCCLUSION"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @ds:include and @ds:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgVertex,
	AnnotationArgQuadVertex,
	AnnotationArgObjectUniforms,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @ds:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validFlags lists all AnnotationArg values that are accepted as flag names in
// @ds:flag annotations. Each must map to a FeatureFlags field in the pre-processor's
// flag registry.
var validFlags = []AnnotationArg{
	AnnotationArgUseDepthForOcclusion,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @ds: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @ds annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @ds include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @ds include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @ds group annotation requires exactly five arguments (group number, binding number, address space, var name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @ds group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @ds group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @ds group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @ds group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @ds group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeFlag):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @ds flag annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validFlags, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown feature flag %q in @ds flag annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: AnnotationTypeFlag,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @ds annotation type %q", lineNum, args[0])
	}
}
