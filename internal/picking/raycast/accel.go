package raycast

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

// MaskAll makes an instance visible to every query.
const MaskAll uint8 = 0xFF

// ErrNoBottomLevel is returned when an object references a mesh with no
// bottom level built for it.
var ErrNoBottomLevel = errors.New("raycast: no bottom level for mesh")

// BottomLevel indexes one static mesh in its local space. It is built once and
// never modified.
type BottomLevel struct {
	Mesh      string
	Bounds    picking.AABB
	Triangles int
}

// Instance places a bottom level in the world. CustomIndex carries the
// object id so a traversal hit resolves directly to a scene object.
type Instance struct {
	CustomIndex scene.ID
	Mask        uint8
	Transform   math.Mat4
	Bottom      *BottomLevel
	Bounds      picking.AABB // world space
}

// Structure is a two-level acceleration structure: one bottom level per
// distinct mesh and a flat top level of instances in registry order.
type Structure struct {
	bottoms   map[string]*BottomLevel
	instances []Instance
	bounds    picking.AABB

	// pad is the minimum half-extent of an instance box around its origin,
	// so that the box always encloses the pick sphere.
	pad float32

	topBuilds int
	refits    int
}

// NewStructure returns an empty structure whose instance boxes always
// contain a sphere of radius pad around each instance origin.
func NewStructure(pad float32) *Structure {
	return &Structure{
		bottoms: make(map[string]*BottomLevel),
		pad:     pad,
	}
}

// AddBottomLevel builds the bottom level for m. Bottom levels are immutable;
// adding a mesh name twice is an error.
func (s *Structure) AddBottomLevel(m *scene.Mesh) error {
	if _, ok := s.bottoms[m.Name]; ok {
		return fmt.Errorf("raycast: bottom level %q already built", m.Name)
	}
	lo, hi := m.Bounds()
	s.bottoms[m.Name] = &BottomLevel{
		Mesh:      m.Name,
		Bounds:    picking.NewAABB(lo, hi),
		Triangles: m.TriangleCount(),
	}
	return nil
}

// BottomLevel returns the bottom level for a mesh name.
func (s *Structure) BottomLevel(mesh string) (*BottomLevel, bool) {
	b, ok := s.bottoms[mesh]
	return b, ok
}

// BuildTop rebuilds the top level from scratch, one instance per object.
func (s *Structure) BuildTop(objects []scene.Object) error {
	instances := make([]Instance, 0, len(objects))
	for _, obj := range objects {
		bottom, ok := s.bottoms[obj.Mesh]
		if !ok {
			return fmt.Errorf("%w %q (object %d)", ErrNoBottomLevel, obj.Mesh, obj.ID)
		}
		inst := Instance{
			CustomIndex: obj.ID,
			Mask:        MaskAll,
			Bottom:      bottom,
		}
		s.place(&inst, obj.Transform)
		instances = append(instances, inst)
	}

	s.instances = instances
	s.updateBounds()
	s.topBuilds++
	return nil
}

// Refit updates instance transforms in place. If the object list no longer
// matches the instances one to one, the top level is rebuilt instead.
func (s *Structure) Refit(objects []scene.Object) error {
	if !s.matches(objects) {
		return s.BuildTop(objects)
	}
	for i, obj := range objects {
		s.place(&s.instances[i], obj.Transform)
	}
	s.updateBounds()
	s.refits++
	return nil
}

// Traverse visits, in top-level order, every instance whose world box the ray
// enters and whose mask overlaps mask. hit reports the instance's own hit
// distance. The nearest hit wins; an equal distance never replaces an
// earlier hit.
func (s *Structure) Traverse(ray picking.Ray, mask uint8, hit func(*Instance) (float32, bool)) (scene.ID, float32, bool) {
	if len(s.instances) == 0 {
		return scene.None, 0, false
	}
	if _, ok := ray.IntersectAABB(s.bounds); !ok {
		return scene.None, 0, false
	}

	best := scene.None
	var bestT float32
	found := false
	for i := range s.instances {
		inst := &s.instances[i]
		if inst.Mask&mask == 0 {
			continue
		}
		if _, ok := ray.IntersectAABB(inst.Bounds); !ok {
			continue
		}
		t, ok := hit(inst)
		if !ok {
			continue
		}
		if !found || t < bestT {
			best, bestT, found = inst.CustomIndex, t, true
		}
	}
	return best, bestT, found
}

// Instances returns the top level in order.
func (s *Structure) Instances() []Instance {
	return s.instances
}

// Stats reports how often the top level was built and refit.
func (s *Structure) Stats() (builds, refits int) {
	return s.topBuilds, s.refits
}

func (s *Structure) place(inst *Instance, transform math.Mat4) {
	inst.Transform = transform
	box := picking.TransformAABB(inst.Bottom.Bounds, transform)
	center := transform.Translation()
	pad := math.Vec3{X: s.pad, Y: s.pad, Z: s.pad}
	inst.Bounds = box.Union(picking.NewAABB(center.Sub(pad), center.Add(pad)))
}

func (s *Structure) matches(objects []scene.Object) bool {
	if len(objects) != len(s.instances) {
		return false
	}
	for i, obj := range objects {
		inst := s.instances[i]
		if inst.CustomIndex != obj.ID || inst.Bottom.Mesh != obj.Mesh {
			return false
		}
	}
	return true
}

func (s *Structure) updateBounds() {
	if len(s.instances) == 0 {
		s.bounds = picking.AABB{}
		return
	}
	s.bounds = s.instances[0].Bounds
	for _, inst := range s.instances[1:] {
		s.bounds = s.bounds.Union(inst.Bounds)
	}
}
