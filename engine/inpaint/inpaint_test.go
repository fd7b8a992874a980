package inpaint

import (
	"strings"
	"testing"

	"github.com/arlab/depthscene/assets"
	"github.com/arlab/depthscene/engine/renderer/renderertest"
	"github.com/arlab/depthscene/engine/session"
)

type identityTransform struct{}

func (identityTransform) TransformCoordinates(ndc []float32) []float32 {
	out := make([]float32, len(ndc))
	for i, v := range ndc {
		out[i] = v*0.5 + 0.5
	}
	return out
}

func newCreated(t *testing.T, options ...Option) (Renderer, *renderertest.Recorder) {
	t.Helper()
	rec := &renderertest.Recorder{}
	i := NewRenderer(options...)
	if err := i.Create(rec, assets.Provider()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Reset()
	return i, rec
}

func frameWithTransform() *session.Frame {
	return &session.Frame{Timestamp: 1, DisplayTransform: identityTransform{}}
}

func TestDrawBeforeCreate(t *testing.T) {
	i := NewRenderer()
	if err := i.Draw(frameWithTransform(), true, true); err != ErrNotCreated {
		t.Fatalf("Draw before Create: got %v, want ErrNotCreated", err)
	}
}

func TestDrawGatedOnBothFlags(t *testing.T) {
	tests := []struct {
		name         string
		showDepthMap bool
		inpaintMode  bool
		wantDraws    int
	}{
		{"both off", false, false, 0},
		{"depth map only", true, false, 0},
		{"inpaint mode only", false, true, 0},
		{"both on", true, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, rec := newCreated(t)
			if err := i.Draw(frameWithTransform(), tt.showDepthMap, tt.inpaintMode); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if calls := rec.DrawCalls(); len(calls) != tt.wantDraws {
				t.Errorf("got %d draw calls, want %d", len(calls), tt.wantDraws)
			}
		})
	}
}

func TestDrawCountMatchesSubdivision(t *testing.T) {
	const slices = 5
	i, rec := newCreated(t, WithSlices(slices))
	if err := i.Draw(frameWithTransform(), true, true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	calls := rec.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d draw calls, want 1", len(calls))
	}
	// 2 vertices per inserted row plus the 4 corner vertices.
	if want := "count=14"; !strings.Contains(calls[0].Detail, want) {
		t.Errorf("draw call %q does not have draw %s", calls[0].Detail, want)
	}
}

func TestUVRefreshOnce(t *testing.T) {
	i, rec := newCreated(t)

	if err := i.Draw(frameWithTransform(), true, true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	var writes int
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			writes++
		}
	}
	if writes != 1 {
		t.Fatalf("first draw: got %d UV writes, want 1", writes)
	}

	// Subsequent frames never rewrite, even when geometry changes.
	rec.Reset()
	changed := frameWithTransform()
	changed.DisplayGeometryChanged = true
	if err := i.Draw(changed, true, true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			t.Fatalf("one-shot policy rewrote UVs on a later frame")
		}
	}
}

func TestUVRefreshOnGeometryChange(t *testing.T) {
	i, rec := newCreated(t, WithUVRefreshPolicy(UVRefreshOnGeometryChange))

	// No geometry change, no rewrite.
	if err := i.Draw(frameWithTransform(), true, true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			t.Fatalf("unchanged frame rewrote UVs")
		}
	}

	rec.Reset()
	changed := frameWithTransform()
	changed.DisplayGeometryChanged = true
	if err := i.Draw(changed, true, true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	var wrote bool
	for _, op := range rec.Ops() {
		if op.Name == "WriteMeshBuffer" {
			wrote = true
		}
	}
	if !wrote {
		t.Fatalf("geometry change did not rewrite UVs")
	}
}

func TestUpdateDepthImageRebuildOnRealloc(t *testing.T) {
	i, rec := newCreated(t)
	rec.UpdateTextureRecreates = true
	img := &session.DepthImage{Data: make([]byte, 160*90*2), Width: 160, Height: 90}
	if err := i.UpdateDepthImage(img); err != nil {
		t.Fatalf("UpdateDepthImage: %v", err)
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
