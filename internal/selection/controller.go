// Package selection turns raw mouse and key input into picks. It classifies
// each left-button gesture as a click, a marquee drag or a gizmo drag, runs
// the active pick backend, and applies the result to the scene registry and
// the manipulator.
package selection

import (
	"context"
	"errors"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/objpick/internal/logger"
	"github.com/Faultbox/objpick/internal/manipulator"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

// Phase is the controller's gesture state.
type Phase int

const (
	Idle Phase = iota
	PossibleClick
	Dragging
	AxisDrag
)

func (p Phase) String() string {
	switch p {
	case PossibleClick:
		return "possible-click"
	case Dragging:
		return "dragging"
	case AxisDrag:
		return "axis-drag"
	default:
		return "idle"
	}
}

// Outcome reports what a finished gesture did.
type Outcome int

const (
	NoOutcome Outcome = iota
	PointPicked
	RegionPicked
	AxisDragged
)

// Command is a key-triggered action, decoupled from the windowing layer's
// key codes.
type Command int

const (
	PickCenter Command = iota
	ModeTranslate
	ModeRotate
	ModeScale
	ClearSelection
)

// Config holds gesture thresholds in pixels.
type Config struct {
	// DragThreshold is the press-to-cursor distance beyond which a click
	// becomes a marquee drag.
	DragThreshold float32
	// JitterPixels is the per-axis movement below which gizmo drag steps
	// are ignored.
	JitterPixels float32
}

// DefaultConfig returns a 3 pixel drag threshold and 1 pixel jitter gate.
func DefaultConfig() Config {
	return Config{DragThreshold: 3, JitterPixels: 1}
}

// Controller is the selection state machine. All methods must be called from
// the input thread.
type Controller struct {
	registry *scene.Registry
	gizmo    *manipulator.Manipulator
	picker   picking.Picker
	camera   picking.Camera
	cfg      Config
	log      *zap.Logger

	width, height int

	phase   Phase
	press   picking.Point // where the button went down
	cursor  picking.Point // latest cursor position during a gesture
	applied picking.Point // cursor position of the last applied gizmo step
}

// New creates a controller. The viewport must be set before picks resolve.
func New(registry *scene.Registry, gizmo *manipulator.Manipulator, picker picking.Picker, camera picking.Camera, cfg Config) *Controller {
	return &Controller{
		registry: registry,
		gizmo:    gizmo,
		picker:   picker,
		camera:   camera,
		cfg:      cfg,
		log:      logger.Named("selection"),
	}
}

// SetPicker switches the active backend. An in-progress gesture is abandoned.
func (c *Controller) SetPicker(p picking.Picker) {
	c.picker = p
	c.cancelGesture()
}

// Picker returns the active backend.
func (c *Controller) Picker() picking.Picker {
	return c.picker
}

// SetViewport records the framebuffer size used for rays and clamping.
func (c *Controller) SetViewport(width, height int) {
	c.width, c.height = width, height
}

// Phase returns the current gesture phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Marquee returns the rectangle being dragged, for overlay drawing.
func (c *Controller) Marquee() (picking.Region, bool) {
	if c.phase != Dragging {
		return picking.Region{}, false
	}
	return picking.BoundsOf(c.press, c.cursor), true
}

// MouseDown starts a gesture. A press on a gizmo handle starts an axis drag;
// anything else may become a click or a marquee.
func (c *Controller) MouseDown(p picking.Point) {
	c.press, c.cursor, c.applied = p, p, p

	if c.gizmo.Active() {
		if ray, ok := c.ray(p); ok {
			if axis := c.gizmo.Grab(ray); axis != manipulator.AxisNone {
				c.phase = AxisDrag
				c.log.Debug("axis grabbed", zap.Stringer("axis", axis))
				return
			}
		}
	}
	c.phase = PossibleClick
}

// MouseMove advances the gesture with the cursor at p.
func (c *Controller) MouseMove(p picking.Point) {
	c.cursor = p

	switch c.phase {
	case PossibleClick:
		if distance(c.press, p) > c.cfg.DragThreshold {
			c.phase = Dragging
		}
	case AxisDrag:
		dx := float32(p.X - c.applied.X)
		dy := float32(p.Y - c.applied.Y)
		if math32.Abs(dx) <= c.cfg.JitterPixels && math32.Abs(dy) <= c.cfg.JitterPixels {
			return
		}
		ray, ok := c.ray(p)
		if !ok {
			return
		}
		if _, err := c.gizmo.Drag(c.registry, ray); err != nil {
			c.log.Warn("gizmo drag failed", zap.Error(err))
			return
		}
		c.applied = p
	}
}

// MouseUp finishes the gesture. Exactly one of a point pick, a region pick or
// an axis drag completes per gesture.
func (c *Controller) MouseUp(ctx context.Context, p picking.Point) Outcome {
	c.cursor = p
	phase := c.phase
	c.phase = Idle

	switch phase {
	case PossibleClick:
		c.pickPoint(ctx, c.press)
		return PointPicked
	case Dragging:
		rp, ok := c.picker.(picking.RegionPicker)
		if !ok {
			// No rectangle mode: resolve the drag at its release point.
			c.pickPoint(ctx, p)
			return PointPicked
		}
		c.pickRegion(ctx, rp, picking.BoundsOf(c.press, p))
		return RegionPicked
	case AxisDrag:
		c.finishAxisDrag()
		return AxisDragged
	default:
		return NoOutcome
	}
}

// HandleCommand runs a key-triggered action.
func (c *Controller) HandleCommand(ctx context.Context, cmd Command) {
	switch cmd {
	case PickCenter:
		c.pickPoint(ctx, picking.Point{X: c.width / 2, Y: c.height / 2})
	case ModeTranslate:
		c.gizmo.SetMode(manipulator.Translate)
	case ModeRotate:
		c.gizmo.SetMode(manipulator.Rotate)
	case ModeScale:
		c.gizmo.SetMode(manipulator.Scale)
	case ClearSelection:
		c.apply(scene.NewIDSet())
	}
}

func (c *Controller) pickPoint(ctx context.Context, p picking.Point) {
	id, err := c.picker.PickPoint(ctx, p, c.view())
	if err != nil {
		c.pickFailed(err)
		return
	}

	ids := scene.NewIDSet()
	if id != scene.None {
		ids.Add(id)
	}
	c.apply(ids)
}

func (c *Controller) pickRegion(ctx context.Context, rp picking.RegionPicker, r picking.Region) {
	ids, err := rp.PickRegion(ctx, r, c.view())
	if err != nil {
		c.pickFailed(err)
		return
	}
	c.apply(ids)
}

// pickFailed logs a pick error. Selection is left as it was.
func (c *Controller) pickFailed(err error) {
	if errors.Is(err, picking.ErrNotPrepared) {
		c.log.Debug("pick dropped", zap.String("backend", c.picker.Name()))
		return
	}
	c.log.Warn("pick failed", zap.String("backend", c.picker.Name()), zap.Error(err))
}

// apply replaces the selection with ids and re-anchors the gizmo: attached
// to the object when exactly one is selected, detached otherwise.
func (c *Controller) apply(ids scene.IDSet) {
	n := c.registry.ApplySelection(ids)
	c.gizmo.Detach()

	switch n {
	case 0:
		c.log.Info("selection cleared")
	case 1:
		obj, ok := c.registry.Get(c.registry.SelectedID())
		if !ok {
			return
		}
		c.gizmo.Attach(obj.ID, obj.Position())
		c.log.Info("object selected", zap.Uint32("id", uint32(obj.ID)), zap.String("name", obj.Name))
	default:
		c.log.Info("objects selected", zap.Int("count", n))
	}
}

func (c *Controller) finishAxisDrag() {
	c.gizmo.Release()
	if r, ok := c.picker.(picking.Refitter); ok {
		if err := r.Refit(); err != nil && !errors.Is(err, picking.ErrNotPrepared) {
			c.log.Warn("refit after drag failed", zap.Error(err))
		}
	}
	if obj, ok := c.registry.Get(c.gizmo.State().Target); ok {
		p := obj.Position()
		c.log.Debug("axis drag finished",
			zap.Uint32("id", uint32(obj.ID)),
			zap.Float32s("position", []float32{p.X, p.Y, p.Z}))
	}
}

func (c *Controller) cancelGesture() {
	if c.phase == AxisDrag {
		c.finishAxisDrag()
	}
	c.phase = Idle
}

func (c *Controller) view() picking.View {
	return picking.ViewOf(c.camera, c.width, c.height)
}

func (c *Controller) ray(p picking.Point) (picking.Ray, bool) {
	ray, err := picking.ScreenRay(c.view(), float32(p.X), float32(p.Y))
	if err != nil {
		c.log.Debug("no ray for cursor", zap.Error(err))
		return picking.Ray{}, false
	}
	return ray, true
}

func distance(a, b picking.Point) float32 {
	return math.Vec2{X: float32(a.X), Y: float32(a.Y)}.Distance(math.Vec2{X: float32(b.X), Y: float32(b.Y)})
}
