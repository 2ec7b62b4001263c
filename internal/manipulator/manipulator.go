// Package manipulator implements the three-axis gizmo anchored at the single
// selected object: hit-testing a ray against the axis segments and turning
// mouse movement along a held axis into object edits.
package manipulator

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

// parallelEpsilon is the cross-product length under which a ray and an axis
// are treated as parallel.
const parallelEpsilon = 1e-5

// Axis identifies a gizmo handle.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
	AxisZ
)

// Axes lists the handles in hit-test priority order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "none"
	}
}

// Unit returns the world direction of the axis.
func (a Axis) Unit() math.Vec3 {
	switch a {
	case AxisX:
		return math.UnitX
	case AxisY:
		return math.UnitY
	case AxisZ:
		return math.UnitZ
	default:
		return math.Vec3{}
	}
}

// Mode selects what dragging a handle does to the object.
type Mode int

const (
	Translate Mode = iota
	Rotate
	Scale
)

func (m Mode) String() string {
	switch m {
	case Translate:
		return "translate"
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config holds gizmo geometry and drag tuning.
type Config struct {
	AxisLength    float32
	AxisThickness float32
	DragScale     float32
}

// DefaultConfig returns unit-length axes with a 0.05 thickness and a 0.1
// drag scale.
func DefaultConfig() Config {
	return Config{AxisLength: 1, AxisThickness: 0.05, DragScale: 0.1}
}

// Threshold is the maximum ray distance at which an axis is grabbed.
func (c Config) Threshold() float32 {
	return 2 * c.AxisThickness
}

// State is the externally visible gizmo state, used for drawing and status.
type State struct {
	Active   bool
	Target   scene.ID
	Position math.Vec3
	Axis     Axis
	Mode     Mode
}

// Manipulator is the gizmo state machine:
// inactive -> idle (attached) -> axis held -> idle -> inactive.
type Manipulator struct {
	cfg   Config
	state State
}

// New returns an inactive manipulator in translate mode.
func New(cfg Config) *Manipulator {
	return &Manipulator{cfg: cfg}
}

// Config returns the gizmo configuration.
func (m *Manipulator) Config() Config {
	return m.cfg
}

// State returns a copy of the current state.
func (m *Manipulator) State() State {
	return m.state
}

// Active reports whether the gizmo is attached to an object.
func (m *Manipulator) Active() bool {
	return m.state.Active
}

// Attach anchors the gizmo at an object. Any held axis is released.
func (m *Manipulator) Attach(id scene.ID, pos math.Vec3) {
	m.state.Active = true
	m.state.Target = id
	m.state.Position = pos
	m.state.Axis = AxisNone
}

// Detach deactivates the gizmo. The mode is kept.
func (m *Manipulator) Detach() {
	m.state = State{Mode: m.state.Mode}
}

// SetMode switches between translate, rotate and scale.
func (m *Manipulator) SetMode(mode Mode) {
	m.state.Mode = mode
}

// HitTest returns the axis within the grab threshold that is strictly nearer
// to the ray than both other axes, or AxisNone. A tie for nearest selects
// nothing. It does not change state.
func (m *Manipulator) HitTest(ray picking.Ray) Axis {
	if !m.state.Active {
		return AxisNone
	}

	var dist [len(Axes)]float32
	for i, a := range Axes {
		d, ok := SegmentDistance(ray, m.state.Position, a.Unit(), m.cfg.AxisLength)
		if !ok {
			d = math32.MaxFloat32
		}
		dist[i] = d
	}

	threshold := m.cfg.Threshold()
	for i, a := range Axes {
		if dist[i] >= threshold {
			continue
		}
		nearest := true
		for j := range Axes {
			if j != i && dist[j] <= dist[i] {
				nearest = false
				break
			}
		}
		if nearest {
			return a
		}
	}
	return AxisNone
}

// Grab hit-tests the ray and holds the axis it hits, if any.
func (m *Manipulator) Grab(ray picking.Ray) Axis {
	a := m.HitTest(ray)
	m.state.Axis = a
	return a
}

// Holding reports whether an axis is currently held.
func (m *Manipulator) Holding() bool {
	return m.state.Active && m.state.Axis != AxisNone
}

// Release drops the held axis. The gizmo stays attached.
func (m *Manipulator) Release() {
	m.state.Axis = AxisNone
}

// DragDelta returns the signed drag amount for the held axis:
// dot(ray direction, axis) scaled by the drag scale.
func (m *Manipulator) DragDelta(ray picking.Ray) float32 {
	return ray.Direction.Dot(m.state.Axis.Unit()) * m.cfg.DragScale
}

// Drag applies one drag step to the target object in the registry according
// to the mode, and moves the anchor with the object. It returns the delta
// applied; with no axis held it does nothing.
func (m *Manipulator) Drag(reg *scene.Registry, ray picking.Ray) (float32, error) {
	if !m.Holding() {
		return 0, nil
	}

	obj, ok := reg.Get(m.state.Target)
	if !ok {
		return 0, fmt.Errorf("%w: %d", scene.ErrNotFound, m.state.Target)
	}

	delta := m.DragDelta(ray)
	axis := m.state.Axis.Unit()
	anchor := obj.Position()

	var next math.Mat4
	switch m.state.Mode {
	case Rotate:
		next = aboutPoint(anchor, math.RotateAxis(axis, delta)).Mul(obj.Transform)
	case Scale:
		s := math.Vec3{X: 1, Y: 1, Z: 1}.Add(axis.Scale(delta))
		next = aboutPoint(anchor, math.Scale(s)).Mul(obj.Transform)
	default:
		next = obj.Transform.WithTranslation(anchor.Add(axis.Scale(delta)))
	}

	if err := reg.SetTransform(obj.ID, next); err != nil {
		return 0, err
	}
	m.state.Position = next.Translation()
	return delta, nil
}

// aboutPoint conjugates m so that it acts around p instead of the origin.
func aboutPoint(p math.Vec3, m math.Mat4) math.Mat4 {
	return math.Translate(p).Mul(m).Mul(math.Translate(p.Neg()))
}

// SegmentDistance returns the shortest distance between the infinite ray line
// and the axis line through start along unit dir, provided the closest point
// on the axis lies within [0, length]. Parallel lines report no hit.
func SegmentDistance(ray picking.Ray, start, dir math.Vec3, length float32) (float32, bool) {
	cross := ray.Direction.Cross(dir)
	crossLen := cross.Length()
	if crossLen < parallelEpsilon {
		return 0, false
	}

	toRay := ray.Origin.Sub(start)
	dist := math32.Abs(toRay.Dot(cross)) / crossLen

	// Closest-point parameter along the axis.
	b := ray.Direction.Dot(dir)
	t := (ray.Direction.Dot(ray.Direction)*dir.Dot(toRay) - b*ray.Direction.Dot(toRay)) / (crossLen * crossLen)
	if t < 0 || t > length {
		return 0, false
	}
	return dist, true
}
