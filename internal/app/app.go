// Package app wires the window, renderer, scene and pick backends into the
// interactive viewer and runs its frame loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/objpick/internal/config"
	"github.com/Faultbox/objpick/internal/engine/camera"
	"github.com/Faultbox/objpick/internal/engine/debug"
	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/engine/input"
	"github.com/Faultbox/objpick/internal/engine/lighting"
	"github.com/Faultbox/objpick/internal/engine/renderer"
	"github.com/Faultbox/objpick/internal/engine/window"
	"github.com/Faultbox/objpick/internal/logger"
	"github.com/Faultbox/objpick/internal/manipulator"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/picking/idbuffer"
	"github.com/Faultbox/objpick/internal/picking/raycast"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/internal/selection"
)

// Sphere tessellation for the generated scene.
const (
	sphereSectors = 32
	sphereStacks  = 16
)

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	registry *scene.Registry
	meshes   map[string]gpu.MeshHandle
	bounds   map[string]picking.AABB

	idPicker  *idbuffer.Backend
	rayPicker *raycast.Backend

	gizmo      *manipulator.Manipulator
	controller *selection.Controller
	dumper     *debug.IDDumper

	// cached visible-frame draws, rebuilt when the registry revision moves
	draws     []gpu.DrawCall
	drawsRev  uint64
	wireframe bool
	title     string

	winW, winH   int
	drawW, drawH int
}

// New creates the window and GL context, builds the scene and prepares both
// pick backends. Any failure is a setup error.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logger.Named("app"),
		meshes: make(map[string]gpu.MeshHandle),
		bounds: make(map[string]picking.AABB),
		dumper: debug.NewIDDumper("iddumps", "ids"),
	}

	a.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("backend", cfg.Picking.Backend),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.winW, a.winH = a.window.GetSize()
	a.drawW, a.drawH = a.window.DrawableSize()

	// Renderer comes after the window, since the GL context must exist.
	a.renderer, err = renderer.New(renderer.Config{
		Width:      a.drawW,
		Height:     a.drawH,
		ClearColor: renderer.DefaultClearColor,
		LightDir:   lighting.SunDirection(lighting.DefaultLongitude, lighting.DefaultLatitude),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := a.buildScene(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.prepareBackends(); err != nil {
		a.Close()
		return nil, err
	}

	a.input = input.New()
	a.camera = newCamera(cfg.Camera)
	a.camera.SetViewport(a.drawW, a.drawH)

	a.gizmo = manipulator.New(manipulator.Config{
		AxisLength:    cfg.Manipulator.AxisLength,
		AxisThickness: cfg.Manipulator.AxisThickness,
		DragScale:     cfg.Manipulator.DragScale,
	})

	var active picking.Picker = a.idPicker
	if cfg.Picking.Backend == config.BackendRayCast {
		active = a.rayPicker
	}
	a.controller = selection.New(a.registry, a.gizmo, active, a.camera, selection.Config{
		DragThreshold: cfg.Picking.DragThreshold,
		JitterPixels:  cfg.Manipulator.JitterPixels,
	})
	a.controller.SetViewport(a.drawW, a.drawH)

	a.log.Info("initialized", zap.Int("objects", a.registry.Len()), zap.String("picker", active.Name()))
	return a, nil
}

func newCamera(cfg config.CameraConfig) *camera.OrbitCamera {
	c := camera.NewOrbitCamera()
	c.FOVY = cfg.FOVDegrees * math32.Pi / 180
	c.Near, c.Far = cfg.Near, cfg.Far
	c.Distance = cfg.Distance
	c.RotationX, c.RotationY = cfg.Pitch, cfg.Yaw
	return c
}

func (a *App) buildScene() error {
	sphere := scene.NewSphereMesh(float32(raycast.DefaultRadius), sphereSectors, sphereStacks)
	h, err := a.renderer.UploadMesh(sphere)
	if err != nil {
		return fmt.Errorf("uploading %s mesh: %w", sphere.Name, err)
	}
	a.meshes[sphere.Name] = h
	a.bounds[sphere.Name] = meshBounds(sphere)

	a.registry = scene.NewRegistry()
	err = scene.Populate(a.registry, scene.PopulateOptions{
		Count:  a.cfg.Scene.ObjectCount,
		Seed:   a.cfg.Scene.Seed,
		Spread: a.cfg.Scene.Spread,
	})
	if err != nil {
		return err
	}

	a.rayPicker = raycast.New(a.registry, []*scene.Mesh{sphere}, raycast.Config{
		Radius:          a.cfg.Picking.SphereRadius,
		UseAcceleration: a.cfg.Picking.UseAcceleration,
	})
	a.idPicker = idbuffer.New(a.renderer, a.registry, a.meshes, idbuffer.Config{
		WaitTimeout: a.cfg.Picking.WaitTimeout,
	})
	return nil
}

func (a *App) prepareBackends() error {
	if err := a.idPicker.Prepare(a.drawW, a.drawH); err != nil {
		return fmt.Errorf("preparing %s backend: %w", idbuffer.Name, err)
	}
	if err := a.rayPicker.Prepare(); err != nil {
		return fmt.Errorf("preparing %s backend: %w", raycast.Name, err)
	}
	return nil
}

// Run starts the frame loop.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}

		for _, event := range a.input.Events() {
			if err := a.handleEvent(event); err != nil {
				return err
			}
		}

		a.render()
		a.window.SwapBuffers()
		a.updateTitle()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvent(e input.Event) error {
	ctx := context.Background()

	switch e.Type {
	case input.EventWindowResize:
		return a.resize()

	case input.EventMouseDown:
		if e.Button == input.ButtonLeft {
			a.controller.MouseDown(a.point(e))
		}

	case input.EventMouseMove:
		if e.Held(input.ButtonRight) {
			a.camera.HandleDrag(float32(e.RelX), float32(e.RelY))
			return nil
		}
		a.controller.MouseMove(a.point(e))

	case input.EventMouseUp:
		if e.Button == input.ButtonLeft {
			out := a.controller.MouseUp(ctx, a.point(e))
			a.log.Debug("gesture finished", zap.Int("outcome", int(out)))
		}

	case input.EventMouseWheel:
		a.camera.HandleZoom(e.Wheel)

	case input.EventKeyDown:
		a.handleKey(ctx, e)
	}
	return nil
}

func (a *App) handleKey(ctx context.Context, e input.Event) {
	act, cmd := keyAction(e.Key)
	switch act {
	case actionCommand:
		a.controller.HandleCommand(ctx, cmd)
	case actionSwitchBackend:
		a.switchBackend()
	case actionToggleAcceleration:
		a.toggleAcceleration()
	case actionToggleWireframe:
		a.wireframe = !a.wireframe
	case actionDumpIDs:
		a.dumpIDs(ctx)
	case actionQuit:
		a.running = false
	}
}

func (a *App) switchBackend() {
	var next picking.Picker = a.rayPicker
	if a.controller.Picker() == picking.Picker(a.rayPicker) {
		next = a.idPicker
	} else if err := a.rayPicker.Refit(); err != nil {
		// Objects may have moved while the id backend was active.
		a.log.Warn("refit before switch failed", zap.Error(err))
	}
	a.controller.SetPicker(next)
	a.log.Info("picker switched", zap.String("picker", next.Name()))
}

// toggleAcceleration flips the ray backend between the analytic loop and
// acceleration structure traversal. The top level is refit first so the
// structure matches the current transforms.
func (a *App) toggleAcceleration() {
	if err := a.rayPicker.Refit(); err != nil {
		a.log.Warn("refit before toggle failed", zap.Error(err))
		return
	}
	a.rayPicker.SetUseAcceleration(!a.rayPicker.UsesAcceleration())

	builds, refits := a.rayPicker.Structure().Stats()
	a.log.Info("ray acceleration toggled",
		zap.Bool("enabled", a.rayPicker.UsesAcceleration()),
		zap.Int("top_builds", builds),
		zap.Int("refits", refits))
}

func (a *App) dumpIDs(ctx context.Context) {
	v := picking.ViewOf(a.camera, a.drawW, a.drawH)
	px, w, h, err := a.idPicker.Snapshot(ctx, v)
	if err != nil {
		a.log.Warn("id dump failed", zap.Error(err))
		return
	}
	path, err := a.dumper.Save(px, w, h)
	if err != nil {
		a.log.Warn("id dump failed", zap.Error(err))
		return
	}
	a.log.Info("id buffer saved", zap.String("path", path))
}

func (a *App) resize() error {
	a.winW, a.winH = a.window.GetSize()
	a.drawW, a.drawH = a.window.DrawableSize()

	a.renderer.Resize(a.drawW, a.drawH)
	a.camera.SetViewport(a.drawW, a.drawH)
	a.controller.SetViewport(a.drawW, a.drawH)
	if err := a.idPicker.Resize(a.drawW, a.drawH); err != nil {
		return fmt.Errorf("resizing id target: %w", err)
	}
	return nil
}

func (a *App) point(e input.Event) picking.Point {
	return scalePoint(e.MouseX, e.MouseY, a.winW, a.winH, a.drawW, a.drawH)
}

func (a *App) render() {
	if rev := a.registry.Revision(); a.draws == nil || rev != a.drawsRev {
		a.draws = sceneDraws(a.registry.Objects(), a.meshes)
		a.drawsRev = rev
	}

	a.renderer.Draw(gpu.Pass{
		Kind:       gpu.Shaded,
		ClearColor: renderer.DefaultClearColor,
		ClearDepth: 1,
		View:       a.camera.ViewMatrix(),
		Projection: a.camera.ProjectionMatrix(),
		Draws:      a.draws,
		Wireframe:  a.wireframe,
	})

	viewProj := a.camera.ViewProjection()
	lines := selectionBoxes(a.registry.Objects(), a.bounds)
	lines = append(lines, debug.GizmoLines(a.gizmo.State(), a.gizmo.Config().AxisLength)...)
	a.renderer.DrawLines(lines, viewProj)

	if r, ok := a.controller.Marquee(); ok {
		a.renderer.DrawLines(debug.MarqueeLines(r, a.drawW, a.drawH), ndc)
	}
}

func (a *App) updateTitle() {
	t := windowTitle(a.cfg.Window.Title, pickerLabel(a.controller.Picker()), a.registry, a.gizmo.State())
	if t != a.title {
		a.window.SetTitle(t)
		a.title = t
	}
}

// Close releases GPU resources and the window.
func (a *App) Close() {
	a.log.Info("closing")

	if a.idPicker != nil {
		a.idPicker.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
