// Package renderertest provides a recording Renderer implementation for testing
// pass renderers without a GPU device. Every call is appended to an ordered op
// log that tests assert against.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/renderer"
	"github.com/arlab/depthscene/engine/renderer/bind_group_provider"
	"github.com/arlab/depthscene/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Op is a single recorded renderer call. Name identifies the method and Detail
// carries the arguments that matter for assertions (pipeline key, byte counts,
// texture dimensions).
type Op struct {
	Name   string
	Detail string
}

// Recorder is a Renderer double that records calls instead of touching the GPU.
// The zero value is ready to use.
type Recorder struct {
	mu  sync.Mutex
	ops []Op

	pipelines map[string]pipeline.Pipeline

	// RegisterErr, when set, is returned from RegisterPipelines.
	RegisterErr error

	// UpdateTextureRecreates, when true, makes UpdateTexture report that the
	// texture view was recreated (dimension change path).
	UpdateTextureRecreates bool
}

func (r *Recorder) record(name, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Name: name, Detail: fmt.Sprintf(format, args...)})
}

// Ops returns a copy of the recorded operation log.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// OpNames returns just the method names of the recorded operations, in order.
func (r *Recorder) OpNames() []string {
	ops := r.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}

// DrawCalls returns the recorded DrawCall ops, in order.
func (r *Recorder) DrawCalls() []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Name == "DrawCall" {
			out = append(out, op)
		}
	}
	return out
}

// Reset clears the recorded operation log. The pipeline cache is kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

func (r *Recorder) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *Recorder) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines
}

func (r *Recorder) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if r.RegisterErr != nil {
		return r.RegisterErr
	}
	r.mu.Lock()
	if r.pipelines == nil {
		r.pipelines = make(map[string]pipeline.Pipeline)
	}
	var keys []string
	for _, p := range pipelines {
		if _, exists := r.pipelines[p.PipelineKey()]; exists {
			continue
		}
		r.pipelines[p.PipelineKey()] = p
		keys = append(keys, p.PipelineKey())
	}
	r.mu.Unlock()
	r.record("RegisterPipelines", "%v", keys)
	return nil
}

func (r *Recorder) SetPipeline(key string, p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pipelines == nil {
		r.pipelines = make(map[string]pipeline.Pipeline)
	}
	r.pipelines[key] = p
}

func (r *Recorder) SetPipelines(pipelines map[string]pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines = pipelines
}

func (r *Recorder) Resize(width, height int) {
	r.record("Resize", "%dx%d", width, height)
}

func (r *Recorder) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, drawCount int) error {
	provider.SetIndexCount(drawCount)
	r.record("InitMeshBuffers", "label=%s vertexBytes=%d indexBytes=%d drawCount=%d", provider.Label(), len(vertexData), len(indexData), drawCount)
	return nil
}

func (r *Recorder) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	r.record("InitBindGroup", "label=%s entries=%d", provider.Label(), len(descriptor.Entries))
	return nil
}

func (r *Recorder) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	r.record("InitTextureView", "label=%s binding=%d %dx%d format=%d", provider.Label(), bindingKey, stagingData.Width, stagingData.Height, stagingData.Format)
	return nil
}

func (r *Recorder) UpdateTexture(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) (bool, error) {
	r.record("UpdateTexture", "label=%s binding=%d %dx%d", provider.Label(), bindingKey, stagingData.Width, stagingData.Height)
	return r.UpdateTextureRecreates, nil
}

func (r *Recorder) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	r.record("InitSampler", "label=%s binding=%d", provider.Label(), bindingKey)
	return nil
}

func (r *Recorder) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		r.record("WriteBuffers", "label=%s binding=%d offset=%d bytes=%d", w.Provider.Label(), w.Binding, w.Offset, len(w.Data))
	}
}

func (r *Recorder) WriteMeshBuffer(provider bind_group_provider.BindGroupProvider, offset uint64, data []byte) {
	r.record("WriteMeshBuffer", "label=%s offset=%d bytes=%d", provider.Label(), offset, len(data))
}

func (r *Recorder) BeginFrame() error {
	r.record("BeginFrame", "")
	return nil
}

func (r *Recorder) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, vertexOffsets []uint64, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	_, exists := r.pipelines[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.record("DrawCall", "pipeline=%s label=%s slots=%d instances=%d count=%d", pipelineKey, meshProvider.Label(), len(vertexOffsets), instanceCount, meshProvider.IndexCount())
	return nil
}

func (r *Recorder) EndFrame() {
	r.record("EndFrame", "")
}

func (r *Recorder) Present() {
	r.record("Present", "")
}

func (r *Recorder) AbortFrame() {
	r.record("AbortFrame", "")
}

func (r *Recorder) SetPresentMode(mode renderer.PresentMode) {
	r.record("SetPresentMode", "%d", mode)
}

var _ renderer.Renderer = &Recorder{}
