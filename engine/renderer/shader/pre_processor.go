// pre_processor.go implements the depthscene WGSL shader pre-processor. It scans shader
// source code for @ds: annotations and replaces them with generated WGSL declarations,
// injected struct source, or feature-flag constants. Flag constants are what make shader
// permutations work: the same source text pre-processed with different FeatureFlags
// yields different compiled modules, and the renderers cache pipelines per flag key.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources and their
//     resolved type names. Used by @ds:include (to inject the struct source) and
//     @ds:group (to resolve the WGSL type name in the generated declaration).
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/arlab/depthscene/engine/model"
	"github.com/arlab/depthscene/engine/renderer/material"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @ds:include.
	Source string

	// Type is the WGSL type name emitted in @ds:group declarations (e.g. "ObjectUniforms").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type argument keys to their embedded WGSL source and type name.
	structRegistry map[AnnotationArg]registryEntry

	// addressSpaceRegistry maps address space argument keys to WGSL var<> syntax strings.
	addressSpaceRegistry map[AnnotationArg]string

	// flags is the feature set baked into @ds:flag constants during Process.
	flags FeatureFlags
}

// PreProcessor processes raw WGSL shader source code containing @ds: annotations,
// replacing them with generated declarations, injected struct sources, or feature-flag
// constants resolved against the FeatureFlags the pre-processor was built with.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it by replacing
	// @ds: annotations with their corresponding WGSL output. @ds:include annotations
	// are replaced with embedded struct source text. @ds:group annotations are replaced
	// with generated @group/@binding variable declarations. @ds:flag annotations are
	// replaced with const declarations whose values come from the configured
	// FeatureFlags.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and
// address space mappings pre-populated. The struct registry maps annotation argument
// keys to their embedded WGSL source and resolved WGSL type names from the engine's
// GPU type packages. The provided FeatureFlags determine the values emitted for
// @ds:flag annotations.
//
// Parameters:
//   - flags: the feature set this pre-processor bakes into flag constants
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(flags FeatureFlags) PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgQuadVertex:     {Source: model.GPUQuadVertexSource, Type: "QuadVertex"},
			AnnotationArgObjectUniforms: {Source: material.GPUObjectUniformsSource, Type: "ObjectUniforms"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		flags: flags,
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	// iterate through each line of the source and attempt to parse it as an annotation, if it's an annotation replace it with the corresponding generated WGSL, otherwise keep the line as is.
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		// handle annotation based on its type and arguments
		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @ds:include argument %q", i+1, a.Args[0])
			}

			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			var wgslType string
			if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
				inner = strings.TrimSuffix(inner, ">")
				entry := p.structRegistry[AnnotationArg(inner)]
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			} else {
				entry := p.structRegistry[a.Args[2]]
				wgslType = entry.Type
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
		case AnnotationTypeFlag:
			val, ok := p.flags.value(a.Args[0])
			if !ok {
				return "", fmt.Errorf("line %d: unknown @ds:flag argument %q", i+1, a.Args[0])
			}

			out = append(out, fmt.Sprintf("const %s: u32 = %du;", a.Args[0], val))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}

	}
	return strings.Join(out, "\n"), nil
}
