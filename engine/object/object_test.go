package object

import (
	"strings"
	"testing"

	"github.com/arlab/depthscene/assets"
	"github.com/arlab/depthscene/engine/model"
	"github.com/arlab/depthscene/engine/renderer/material"
	"github.com/arlab/depthscene/engine/renderer/renderertest"
	"github.com/arlab/depthscene/engine/renderer/shader"
	"github.com/arlab/depthscene/engine/session"
)

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func testMesh(t *testing.T) *model.Mesh {
	t.Helper()
	mesh, err := model.NewMesh("triangle",
		[]float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		[]float32{0, 0, 1, 0, 0, 1},
		[]uint32{0, 1, 2},
	)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	return mesh
}

func newCreated(t *testing.T, options ...Option) (Renderer, *renderertest.Recorder) {
	t.Helper()
	rec := &renderertest.Recorder{}
	o := NewRenderer(options...)
	if err := o.Create(rec, assets.Provider(), testMesh(t), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Reset()
	return o, rec
}

func TestCreateIsOneTime(t *testing.T) {
	o, rec := newCreated(t)
	if err := o.Create(rec, assets.Provider(), testMesh(t), nil); err != ErrAlreadyCreated {
		t.Fatalf("second Create: got %v, want ErrAlreadyCreated", err)
	}
}

func TestDrawBeforeCreate(t *testing.T) {
	o := NewRenderer()
	if err := o.Draw(identity, identity, [4]float32{1, 1, 1, 1}, [4]float32{}); err != ErrNotCreated {
		t.Fatalf("Draw before Create: got %v, want ErrNotCreated", err)
	}
}

func TestOcclusionToggleIdempotency(t *testing.T) {
	o, _ := newCreated(t)
	if got := o.RebuildCount(); got != 1 {
		t.Fatalf("after Create: rebuild count %d, want 1", got)
	}

	// Setting the current value is a structural no-op.
	if err := o.SetUseDepthForOcclusion(false); err != nil {
		t.Fatalf("SetUseDepthForOcclusion: %v", err)
	}
	if got := o.RebuildCount(); got != 1 {
		t.Errorf("no-op toggle rebuilt: count %d, want 1", got)
	}

	// Enabling builds the occlusion permutation once.
	if err := o.SetUseDepthForOcclusion(true); err != nil {
		t.Fatalf("SetUseDepthForOcclusion: %v", err)
	}
	if got := o.RebuildCount(); got != 2 {
		t.Fatalf("enable: rebuild count %d, want 2", got)
	}

	// Toggling back selects the cached permutation without rebuilding.
	if err := o.SetUseDepthForOcclusion(false); err != nil {
		t.Fatalf("SetUseDepthForOcclusion: %v", err)
	}
	if err := o.SetUseDepthForOcclusion(true); err != nil {
		t.Fatalf("SetUseDepthForOcclusion: %v", err)
	}
	if got := o.RebuildCount(); got != 2 {
		t.Errorf("cached toggles rebuilt: count %d, want 2", got)
	}
}

func TestDrawUsesPermutationKey(t *testing.T) {
	o, rec := newCreated(t)
	if err := o.SetUseDepthForOcclusion(true); err != nil {
		t.Fatalf("SetUseDepthForOcclusion: %v", err)
	}
	if err := o.Draw(identity, identity, [4]float32{1, 1, 1, 1}, [4]float32{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	calls := rec.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1", len(calls))
	}
	wantKey := PipelineKey(material.BlendModeOpaque, shader.FeatureFlags{UseDepthForOcclusion: true})
	if !strings.Contains(calls[0].Detail, "pipeline="+wantKey) {
		t.Errorf("draw call %q does not use %s", calls[0].Detail, wantKey)
	}
	if !strings.Contains(calls[0].Detail, "slots=3") {
		t.Errorf("draw call %q does not bind 3 vertex slots", calls[0].Detail)
	}
}

func TestBlendModeSelectsPipeline(t *testing.T) {
	o, rec := newCreated(t)
	if err := o.SetBlendMode(material.BlendModeAlphaBlending); err != nil {
		t.Fatalf("SetBlendMode: %v", err)
	}
	if err := o.Draw(identity, identity, [4]float32{1, 1, 1, 1}, [4]float32{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	calls := rec.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1", len(calls))
	}
	wantKey := PipelineKey(material.BlendModeAlphaBlending, shader.FeatureFlags{})
	if !strings.Contains(calls[0].Detail, "pipeline="+wantKey) {
		t.Errorf("draw call %q does not use %s", calls[0].Detail, wantKey)
	}
}

func TestDrawAnchorsSkipsUntracked(t *testing.T) {
	o, rec := newCreated(t)
	anchors := []session.Anchor{
		{Pose: identity, State: session.TrackingStateTracking, Color: [4]float32{255, 0, 0, 255}},
		{Pose: identity, State: session.TrackingStatePaused},
		{Pose: identity, State: session.TrackingStateStopped},
		{Pose: identity, State: session.TrackingStateTracking, Color: [4]float32{0, 255, 0, 255}},
	}
	if err := o.DrawAnchors(anchors, identity, identity, [4]float32{1, 1, 1, 1}, 1.0); err != nil {
		t.Fatalf("DrawAnchors: %v", err)
	}
	if calls := rec.DrawCalls(); len(calls) != 2 {
		t.Fatalf("got %d draw calls, want 2 (tracked anchors only)", len(calls))
	}

	// Each draw uploads a fresh 256-byte uniform block before encoding.
	var writes int
	for _, op := range rec.Ops() {
		if op.Name == "WriteBuffers" {
			writes++
			if !strings.Contains(op.Detail, "bytes=256") {
				t.Errorf("uniform write %q is not a 256-byte block", op.Detail)
			}
		}
	}
	if writes != 2 {
		t.Errorf("got %d uniform writes, want 2", writes)
	}
}

func TestUpdateDepthImageRecordsAspect(t *testing.T) {
	o, rec := newCreated(t)
	img := &session.DepthImage{Data: make([]byte, 160*90*2), Width: 160, Height: 90}
	if err := o.UpdateDepthImage(img); err != nil {
		t.Fatalf("UpdateDepthImage: %v", err)
	}
	var updated bool
	for _, op := range rec.Ops() {
		if op.Name == "UpdateTexture" && strings.Contains(op.Detail, "160x90") {
			updated = true
		}
	}
	if !updated {
		t.Fatalf("depth image was not uploaded")
	}
}
