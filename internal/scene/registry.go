package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Faultbox/objpick/pkg/math"
)

var (
	// ErrInvalidID is returned when an object id is zero or does not fit in 24 bits.
	ErrInvalidID = errors.New("scene: invalid object id")
	// ErrDuplicateID is returned when an id is already registered.
	ErrDuplicateID = errors.New("scene: duplicate object id")
	// ErrNotFound is returned for operations on unknown ids.
	ErrNotFound = errors.New("scene: object not found")
)

// Registry owns every pickable object. Objects are enumerated in insertion
// order. Every mutation that affects rendering bumps the revision, which the
// renderer compares against to decide when the scene pass must be re-recorded.
type Registry struct {
	mu       sync.RWMutex
	objects  []Object
	index    map[ID]int
	revision uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[ID]int)}
}

// Add registers obj. The id must be valid and unused.
func (r *Registry) Add(obj Object) error {
	if !obj.ID.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidID, obj.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[obj.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, obj.ID)
	}
	r.index[obj.ID] = len(r.objects)
	r.objects = append(r.objects, obj)
	r.revision++
	return nil
}

// Get returns a copy of the object with the given id.
func (r *Registry) Get(id ID) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Object{}, false
	}
	return r.objects[i], true
}

// Objects returns a snapshot of all objects in insertion order.
func (r *Registry) Objects() []Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Object, len(r.objects))
	copy(out, r.objects)
	return out
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// Revision returns a counter that changes whenever selection or transforms change.
func (r *Registry) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// ApplySelection clears every selection flag, then sets it for each id in
// ids. Ids that name no object are ignored. It returns the number of objects
// now selected.
func (r *Registry) ApplySelection(ids IDSet) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.objects {
		sel := ids.Has(r.objects[i].ID)
		r.objects[i].Selected = sel
		if sel {
			n++
		}
	}
	r.revision++
	return n
}

// ClearSelection deselects every object.
func (r *Registry) ClearSelection() {
	r.ApplySelection(nil)
}

// Selected returns the ids of selected objects in insertion order.
func (r *Registry) Selected() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []ID
	for _, o := range r.objects {
		if o.Selected {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// SelectedID returns the single selected object, or None when zero or
// several objects are selected.
func (r *Registry) SelectedID() ID {
	ids := r.Selected()
	if len(ids) != 1 {
		return None
	}
	return ids[0]
}

// SetTransform replaces the world transform of an object.
func (r *Registry) SetTransform(id ID, m math.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.objects[i].Transform = m
	r.revision++
	return nil
}

// Translate moves an object by delta in world space.
func (r *Registry) Translate(id ID, delta math.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	t := r.objects[i].Transform
	r.objects[i].Transform = t.WithTranslation(t.Translation().Add(delta))
	r.revision++
	return nil
}
