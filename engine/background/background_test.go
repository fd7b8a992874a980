package background

import (
	"strings"
	"testing"

	"github.com/arlab/depthscene/assets"
	"github.com/arlab/depthscene/engine/renderer/renderertest"
	"github.com/arlab/depthscene/engine/session"
)

// identityTransform maps NDC pairs straight to [0,1] texture coordinates.
type identityTransform struct{}

func (identityTransform) TransformCoordinates(ndc []float32) []float32 {
	out := make([]float32, len(ndc))
	for i, v := range ndc {
		out[i] = v*0.5 + 0.5
	}
	return out
}

func newCreated(t *testing.T) (Renderer, *renderertest.Recorder) {
	t.Helper()
	rec := &renderertest.Recorder{}
	b := NewRenderer()
	if err := b.Create(rec, assets.Provider()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Reset()
	return b, rec
}

func TestDrawBeforeCreate(t *testing.T) {
	b := NewRenderer()
	if err := b.Draw(&session.Frame{Timestamp: 1}, false); err != ErrNotCreated {
		t.Fatalf("Draw before Create: got %v, want ErrNotCreated", err)
	}
	if err := b.UpdateDepthImage(&session.DepthImage{Width: 1, Height: 1, Data: []byte{0, 0}}); err != ErrNotCreated {
		t.Fatalf("UpdateDepthImage before Create: got %v, want ErrNotCreated", err)
	}
}

func TestCreateRegistersBothPipelines(t *testing.T) {
	rec := &renderertest.Recorder{}
	b := NewRenderer()
	if err := b.Create(rec, assets.Provider()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Pipeline(CameraPipelineKey) == nil {
		t.Errorf("camera pipeline not registered")
	}
	if rec.Pipeline(DepthPipelineKey) == nil {
		t.Errorf("depth pipeline not registered")
	}
	for _, key := range []string{CameraPipelineKey, DepthPipelineKey} {
		p := rec.Pipeline(key)
		if p.DepthTestEnabled() || p.DepthWriteEnabled() {
			t.Errorf("%s: depth test/write must be disabled", key)
		}
	}
}

func TestTimestampZeroSuppression(t *testing.T) {
	b, rec := newCreated(t)
	if err := b.Draw(&session.Frame{Timestamp: 0}, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if ops := rec.Ops(); len(ops) != 0 {
		t.Fatalf("timestamp-0 frame produced %d ops, want 0", len(ops))
	}
}

func TestTimestampZeroSuppressionDisabled(t *testing.T) {
	rec := &renderertest.Recorder{}
	b := NewRenderer(WithSuppressTimestampZeroRendering(false))
	if err := b.Create(rec, assets.Provider()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Reset()
	if err := b.Draw(&session.Frame{Timestamp: 0}, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if calls := rec.DrawCalls(); len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1", len(calls))
	}
}

func TestDrawSelectsPipeline(t *testing.T) {
	tests := []struct {
		name         string
		showDepthMap bool
		wantKey      string
	}{
		{"camera", false, CameraPipelineKey},
		{"depth visualization", true, DepthPipelineKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newCreated(t)
			if err := b.Draw(&session.Frame{Timestamp: 1}, tt.showDepthMap); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			calls := rec.DrawCalls()
			if len(calls) != 1 {
				t.Fatalf("got %d draw calls, want 1", len(calls))
			}
			if !strings.Contains(calls[0].Detail, "pipeline="+tt.wantKey) {
				t.Errorf("draw call %q does not use %s", calls[0].Detail, tt.wantKey)
			}
		})
	}
}

func TestDisplayGeometryChangeRewritesUVs(t *testing.T) {
	b, rec := newCreated(t)
	frame := &session.Frame{
		Timestamp:              1,
		DisplayGeometryChanged: true,
		DisplayTransform:       identityTransform{},
	}
	if err := b.Draw(frame, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	var wrote bool
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			wrote = true
			if !strings.Contains(op.Detail, "offset=32") {
				t.Errorf("UV write %q not at the UV byte offset", op.Detail)
			}
		}
	}
	if !wrote {
		t.Fatalf("display geometry change did not rewrite quad UVs")
	}

	// An unchanged follow-up frame must not rewrite.
	rec.Reset()
	if err := b.Draw(&session.Frame{Timestamp: 2}, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			t.Fatalf("unchanged frame rewrote quad UVs")
		}
	}
}

func TestSuppressedFrameStillConsumesGeometryChange(t *testing.T) {
	b, rec := newCreated(t)

	// The geometry change arrives on a frame whose draw is suppressed. The UV
	// rewrite must happen anyway or the change notice is lost for good.
	suppressed := &session.Frame{
		Timestamp:              0,
		DisplayGeometryChanged: true,
		DisplayTransform:       identityTransform{},
	}
	if err := b.Draw(suppressed, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if calls := rec.DrawCalls(); len(calls) != 0 {
		t.Fatalf("suppressed frame produced %d draw calls, want 0", len(calls))
	}
	var wrote bool
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			wrote = true
		}
	}
	if !wrote {
		t.Fatalf("geometry change on the suppressed frame did not rewrite quad UVs")
	}

	// The next real frame draws with the refreshed UVs and has nothing left to rewrite.
	rec.Reset()
	if err := b.Draw(&session.Frame{Timestamp: 1}, false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if calls := rec.DrawCalls(); len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1", len(calls))
	}
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			t.Fatalf("follow-up frame rewrote quad UVs again")
		}
	}
}

func TestUpdateCameraImageReuseAndRealloc(t *testing.T) {
	b, rec := newCreated(t)
	img := &session.CameraImage{Pixels: make([]byte, 8*4*4), Width: 8, Height: 4}

	if err := b.UpdateCameraImage(img); err != nil {
		t.Fatalf("UpdateCameraImage: %v", err)
	}
	for _, op := range rec.Ops() {
		if op.Name == "InitBindGroup" {
			t.Fatalf("same-size update rebuilt the bind group")
		}
	}

	rec.Reset()
	rec.UpdateTextureRecreates = true
	if err := b.UpdateCameraImage(img); err != nil {
		t.Fatalf("UpdateCameraImage: %v", err)
	}
	var rebuilt bool
	for _, op := range rec.Ops() {
		if op.Name == "InitBindGroup" {
			rebuilt = true
		}
	}
	if !rebuilt {
		t.Fatalf("texture recreation did not rebuild the bind group")
	}
}
