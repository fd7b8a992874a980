// Package scene composes the three rendering passes into one frame: the
// camera/depth background, the virtual objects at their tracked anchors, and
// the depth-inpainting overlay. The scene pulls its inputs from the session
// providers once per frame, uploads changed camera and depth images, and
// submits the passes in fixed back-to-front order.
package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/arlab/depthscene/common"
	"github.com/arlab/depthscene/engine/background"
	"github.com/arlab/depthscene/engine/inpaint"
	"github.com/arlab/depthscene/engine/model"
	"github.com/arlab/depthscene/engine/object"
	"github.com/arlab/depthscene/engine/renderer"
	"github.com/arlab/depthscene/engine/session"
)

// Scene drives the per-frame compositing flow. Create must be called once
// before DrawFrame. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Renderer returns the renderer the scene was created with, or nil before
	// Create.
	Renderer() renderer.Renderer

	// Background returns the background pass renderer.
	Background() background.Renderer

	// Object returns the object pass renderer.
	Object() object.Renderer

	// Inpaint returns the inpaint overlay pass renderer.
	Inpaint() inpaint.Renderer

	// Create initializes all three passes on the given renderer: shaders are
	// loaded from the asset provider, pipelines registered, and geometry
	// uploaded. The mesh and optional diffuse texture configure the object
	// pass. Creation is atomic: if any pass fails, the ones already created
	// are released.
	//
	// Parameters:
	//   - r: the renderer to create GPU resources with
	//   - assetProvider: the source for shader assets
	//   - mesh: the virtual object mesh drawn at each anchor
	//   - diffuseTexture: the object's diffuse texture, or nil for plain white
	//
	// Returns:
	//   - error: the first pass creation error
	Create(r renderer.Renderer, assetProvider session.AssetProvider, mesh *model.Mesh, diffuseTexture *common.ImportedTexture) error

	// DrawFrame pulls the current frame and flags from the session providers,
	// uploads changed images, and encodes the background, object, and overlay
	// passes in order. Must be called within a BeginFrame/EndFrame block on
	// the renderer.
	//
	// Returns:
	//   - error: ErrNotCreated before Create, a frame provider error, or the
	//     first pass error
	DrawFrame() error

	// Release frees the GPU resources held by all three passes.
	Release()
}

// anchorDraw is one tracked anchor's pending draw: the pose copied from the
// provider, the model matrix packed from it, and the placement tint.
type anchorDraw struct {
	pose  [16]float32
	model [16]float32
	color [4]float32
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	frames  session.FrameProvider
	anchors session.AnchorProvider
	flags   session.FlagProvider

	r       renderer.Renderer
	created bool

	backgroundPass background.Renderer
	objectPass     object.Renderer
	inpaintPass    inpaint.Renderer

	objectScale   float32
	uvTransformed bool // depth UV transform has been derived from a frame

	// drawPool is reused each frame to avoid per-frame allocations.
	drawPool []anchorDraw

	// matrixPool manages a bounded set of reusable goroutines for the parallel
	// per-anchor matrix packing phase of DrawFrame. Workers persist across
	// frames, avoiding per-frame goroutine spawn/teardown overhead.
	matrixPool    worker.DynamicWorkerPool
	matrixWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene reading from the given session providers. All
// three providers are required and NewScene panics if any of them is nil.
// GPU resources are not allocated until Create is called.
//
// Parameters:
//   - name: the name of the scene
//   - frames: the per-frame input provider (must not be nil)
//   - anchors: the anchor list provider (must not be nil)
//   - flags: the UI toggle provider (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, frames session.FrameProvider, anchors session.AnchorProvider, flags session.FlagProvider, options ...SceneBuilderOption) Scene {
	if frames == nil {
		panic("scene: NewScene requires a non-nil FrameProvider")
	}
	if anchors == nil {
		panic("scene: NewScene requires a non-nil AnchorProvider")
	}
	if flags == nil {
		panic("scene: NewScene requires a non-nil FlagProvider")
	}

	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        false,
		frames:        frames,
		anchors:       anchors,
		flags:         flags,
		objectScale:   1.0,
		matrixWorkers: max(runtime.NumCPU()-1, 1),
		drawPool:      make([]anchorDraw, 0, 8),
	}

	for _, option := range options {
		option(s)
	}

	if s.backgroundPass == nil {
		s.backgroundPass = background.NewRenderer()
	}
	if s.objectPass == nil {
		s.objectPass = object.NewRenderer()
	}
	if s.inpaintPass == nil {
		s.inpaintPass = inpaint.NewRenderer()
	}

	// Initialize the matrix pool after options so WithMatrixWorkers can
	// override the default. Queue size of 256 accommodates typical anchor
	// counts with headroom.
	s.matrixPool = worker.NewDynamicWorkerPool(s.matrixWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Background() background.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backgroundPass
}

func (s *scene) Object() object.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objectPass
}

func (s *scene) Inpaint() inpaint.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inpaintPass
}

func (s *scene) Create(r renderer.Renderer, assetProvider session.AssetProvider, mesh *model.Mesh, diffuseTexture *common.ImportedTexture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backgroundPass.Create(r, assetProvider); err != nil {
		return fmt.Errorf("scene: background pass: %w", err)
	}
	if err := s.objectPass.Create(r, assetProvider, mesh, diffuseTexture); err != nil {
		s.backgroundPass.Release()
		return fmt.Errorf("scene: object pass: %w", err)
	}
	if err := s.inpaintPass.Create(r, assetProvider); err != nil {
		s.backgroundPass.Release()
		s.objectPass.Release()
		return fmt.Errorf("scene: inpaint pass: %w", err)
	}

	s.r = r
	s.created = true
	return nil
}

func (s *scene) DrawFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created {
		return ErrNotCreated
	}

	frame, err := s.frames.CurrentFrame()
	if err != nil {
		return fmt.Errorf("scene: frame provider: %w", err)
	}
	if frame == nil {
		return nil
	}

	showDepthMap := s.flags.ShowDepthMap()
	occlusion := s.flags.OcclusionEnabled()
	inpaintMode := s.flags.InpaintMode()

	// Each depth-sampling pass owns its texture copy, so a new depth image
	// fans out to all of them before anything draws.
	if frame.DepthImage != nil {
		if err := s.backgroundPass.UpdateDepthImage(frame.DepthImage); err != nil {
			return err
		}
		if err := s.objectPass.UpdateDepthImage(frame.DepthImage); err != nil {
			return err
		}
		if err := s.inpaintPass.UpdateDepthImage(frame.DepthImage); err != nil {
			return err
		}
	}
	if frame.CameraImage != nil {
		if err := s.backgroundPass.UpdateCameraImage(frame.CameraImage); err != nil {
			return err
		}
	}

	if err := s.backgroundPass.Draw(frame, showDepthMap); err != nil {
		return err
	}

	// The 3D passes need a tracked camera pose. The background has already
	// drawn, so losing tracking never freezes the screen.
	if frame.CameraState != session.TrackingStateTracking {
		return nil
	}

	if err := s.objectPass.SetUseDepthForOcclusion(occlusion); err != nil {
		return err
	}

	if !s.uvTransformed || frame.DisplayGeometryChanged {
		if m, ok := displayUVTransform(frame.DisplayTransform); ok {
			s.objectPass.SetUVTransform(m)
			s.uvTransformed = true
		}
	}

	if err := s.drawAnchorsLocked(frame); err != nil {
		return err
	}

	return s.inpaintPass.Draw(frame, showDepthMap, inpaintMode)
}

// drawAnchorsLocked packs one model matrix per tracked anchor in parallel on
// the matrix pool, then submits the draws serially in placement order.
// Caller must hold s.mu.
func (s *scene) drawAnchorsLocked(frame *session.Frame) error {
	draws := s.drawPool[:0]
	for _, anchor := range s.anchors.Anchors() {
		if anchor.State != session.TrackingStateTracking {
			continue
		}
		draws = append(draws, anchorDraw{pose: anchor.Pose, color: anchor.Color})
	}
	s.drawPool = draws
	if len(draws) == 0 {
		return nil
	}

	var scaleMatrix [16]float32
	common.ScaleUniform(scaleMatrix[:], s.objectScale)

	// Phase 1: parallel matrix packing. A WaitGroup provides the per-frame
	// barrier since pool.Wait() blocks until workers idle-exit, which is
	// unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for i := range draws {
		wg.Add(1)
		d := &draws[i]
		s.matrixPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				common.Mul4(d.model[:], d.pose[:], scaleMatrix[:])
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: serial submission preserves placement order.
	for i := range draws {
		if err := s.objectPass.DrawModel(draws[i].model, frame.View, frame.Projection, frame.ColorCorrection, draws[i].color); err != nil {
			return err
		}
	}
	return nil
}

// displayUVTransform derives the row-major 3x3 affine transform mapping [0,1]
// screen coordinates to depth texture coordinates. The display transform is
// affine, so pushing the three NDC corner basis points through it recovers
// the full matrix: the transformed origin plus the two transformed axes.
//
// Parameters:
//   - t: the frame's display transform
//
// Returns:
//   - [9]float32: the row-major transform
//   - bool: false when t is nil or returned too few coordinates
func displayUVTransform(t session.CoordinateTransformer) ([9]float32, bool) {
	if t == nil {
		return [9]float32{}, false
	}
	out := t.TransformCoordinates([]float32{-1, -1, 1, -1, -1, 1})
	if len(out) < 6 {
		return [9]float32{}, false
	}
	ox, oy := out[0], out[1]
	return [9]float32{
		out[2] - ox, out[4] - ox, ox,
		out[3] - oy, out[5] - oy, oy,
		0, 0, 1,
	}, true
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.created {
		return
	}
	s.backgroundPass.Release()
	s.objectPass.Release()
	s.inpaintPass.Release()
	s.created = false
}
