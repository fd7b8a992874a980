package model

import (
	_ "embed"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for static
// mesh pipelines. Each field streams from its own vertex buffer slot, matching the
// packed block layout produced by NewMesh.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUQuadVertexSource is the canonical WGSL definition of the QuadVertex struct for
// screen-space quad pipelines. Position and texture coordinate stream from separate
// buffer slots so the coordinate buffer can be rewritten without touching positions.
//
//go:embed assets/quad_vertex.wgsl
var GPUQuadVertexSource string
