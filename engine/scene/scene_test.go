package scene

import (
	"errors"
	"strings"
	"testing"

	"github.com/arlab/depthscene/assets"
	"github.com/arlab/depthscene/engine/model"
	"github.com/arlab/depthscene/engine/renderer/renderertest"
	"github.com/arlab/depthscene/engine/session"
)

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

type countingTransform struct{ calls int }

func (c *countingTransform) TransformCoordinates(ndc []float32) []float32 {
	c.calls++
	out := make([]float32, len(ndc))
	for i, v := range ndc {
		out[i] = v*0.5 + 0.5
	}
	return out
}

type stubFrames struct {
	frame *session.Frame
	err   error
}

func (s *stubFrames) CurrentFrame() (*session.Frame, error) { return s.frame, s.err }

type stubAnchors struct{ list []session.Anchor }

func (s *stubAnchors) Anchors() []session.Anchor { return s.list }

type stubFlags struct{ depthMap, occlusion, inpaint bool }

func (f *stubFlags) ShowDepthMap() bool     { return f.depthMap }
func (f *stubFlags) OcclusionEnabled() bool { return f.occlusion }
func (f *stubFlags) InpaintMode() bool      { return f.inpaint }

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

func trackedFrame() *session.Frame {
	return &session.Frame{
		Timestamp:        1,
		View:             identity,
		Projection:       identity,
		ColorCorrection:  [4]float32{1, 1, 1, 1},
		DisplayTransform: &countingTransform{},
	}
}

func newCreated(t *testing.T, frames *stubFrames, anchors *stubAnchors, flags *stubFlags) (Scene, *renderertest.Recorder) {
	t.Helper()
	rec := &renderertest.Recorder{}
	s := NewScene("test", frames, anchors, flags, WithMatrixWorkers(2))
	if err := s.Create(rec, assets.Provider(), testMesh(t), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Reset()
	return s, rec
}

func TestDrawFrameBeforeCreate(t *testing.T) {
	s := NewScene("test", &stubFrames{}, &stubAnchors{}, &stubFlags{})
	if err := s.DrawFrame(); err != ErrNotCreated {
		t.Fatalf("DrawFrame before Create: got %v, want ErrNotCreated", err)
	}
}

func TestFrameProviderErrorPropagates(t *testing.T) {
	wantErr := errors.New("camera unavailable")
	s, rec := newCreated(t, &stubFrames{err: wantErr}, &stubAnchors{}, &stubFlags{})
	err := s.DrawFrame()
	if !errors.Is(err, wantErr) {
		t.Fatalf("DrawFrame: got %v, want wrapped %v", err, wantErr)
	}
	if len(rec.DrawCalls()) != 0 {
		t.Errorf("failed frame still encoded draws")
	}
}

func TestPassOrder(t *testing.T) {
	frames := &stubFrames{frame: trackedFrame()}
	frames.frame.DepthImage = &session.DepthImage{Data: make([]byte, 160*90*2), Width: 160, Height: 90}
	anchors := &stubAnchors{list: []session.Anchor{
		{Pose: identity, State: session.TrackingStateTracking, Color: [4]float32{255, 0, 0, 255}},
	}}
	s, rec := newCreated(t, frames, anchors, &stubFlags{depthMap: true, occlusion: true, inpaint: true})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}

	calls := rec.DrawCalls()
	if len(calls) != 3 {
		t.Fatalf("got %d draw calls, want 3", len(calls))
	}
	wantOrder := []string{"pipeline=background/", "pipeline=object/", "pipeline=inpaint/"}
	for i, want := range wantOrder {
		if !strings.Contains(calls[i].Detail, want) {
			t.Errorf("draw %d = %q, want prefix %s", i, calls[i].Detail, want)
		}
	}
}

func TestEmptyAnchorsBackgroundOnly(t *testing.T) {
	frames := &stubFrames{frame: trackedFrame()}
	s, rec := newCreated(t, frames, &stubAnchors{}, &stubFlags{})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}

	calls := rec.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1 (background only)", len(calls))
	}
	if !strings.Contains(calls[0].Detail, "pipeline=background/camera") {
		t.Errorf("draw %q is not the camera background", calls[0].Detail)
	}
}

func TestAnchorFiltering(t *testing.T) {
	frames := &stubFrames{frame: trackedFrame()}
	anchors := &stubAnchors{list: []session.Anchor{
		{Pose: identity, State: session.TrackingStateTracking},
		{Pose: identity, State: session.TrackingStatePaused},
		{Pose: identity, State: session.TrackingStateTracking},
	}}
	s, rec := newCreated(t, frames, anchors, &stubFlags{})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}

	var objectDraws int
	for _, op := range rec.DrawCalls() {
		if strings.Contains(op.Detail, "pipeline=object/") {
			objectDraws++
		}
	}
	if objectDraws != 2 {
		t.Fatalf("got %d object draws, want 2 (tracked anchors only)", objectDraws)
	}
}

func TestCameraPausedSkips3DPasses(t *testing.T) {
	frames := &stubFrames{frame: trackedFrame()}
	frames.frame.CameraState = session.TrackingStatePaused
	anchors := &stubAnchors{list: []session.Anchor{
		{Pose: identity, State: session.TrackingStateTracking},
	}}
	s, rec := newCreated(t, frames, anchors, &stubFlags{depthMap: true, inpaint: true})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}

	calls := rec.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1 (background still draws)", len(calls))
	}
	if !strings.Contains(calls[0].Detail, "pipeline=background/") {
		t.Errorf("draw %q is not a background pass", calls[0].Detail)
	}
}

func TestDepthUploadFansOut(t *testing.T) {
	frames := &stubFrames{frame: trackedFrame()}
	frames.frame.DepthImage = &session.DepthImage{Data: make([]byte, 160*90*2), Width: 160, Height: 90}
	s, rec := newCreated(t, frames, &stubAnchors{}, &stubFlags{})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}

	labels := map[string]bool{}
	for _, op := range rec.Ops() {
		if op.Name != "UpdateTexture" {
			continue
		}
		for _, want := range []string{"background_depth", "object", "inpaint_depth"} {
			if strings.Contains(op.Detail, "label="+want+" ") {
				labels[want] = true
			}
		}
	}
	if len(labels) != 3 {
		t.Fatalf("depth image reached %d passes, want 3: %v", len(labels), labels)
	}
}

func TestUVTransformDerivedOncePerGeometry(t *testing.T) {
	transform := &countingTransform{}
	frames := &stubFrames{frame: trackedFrame()}
	frames.frame.DisplayTransform = transform
	s, _ := newCreated(t, frames, &stubAnchors{}, &stubFlags{})

	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	first := transform.calls
	if first == 0 {
		t.Fatalf("first frame did not derive the depth UV transform")
	}

	// Unchanged geometry reuses the cached transform.
	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if transform.calls != first {
		t.Fatalf("unchanged frame re-derived the transform: %d -> %d calls", first, transform.calls)
	}

	// A geometry change re-derives it.
	frames.frame.DisplayGeometryChanged = true
	if err := s.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if transform.calls <= first {
		t.Fatalf("geometry change did not re-derive the transform")
	}
}

func TestDisplayUVTransformIdentity(t *testing.T) {
	m, ok := displayUVTransform(&countingTransform{})
	if !ok {
		t.Fatalf("displayUVTransform failed")
	}
	want := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if m != want {
		t.Fatalf("identity display transform gave %v, want %v", m, want)
	}
}
