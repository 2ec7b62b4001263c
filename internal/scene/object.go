// Package scene holds the pickable objects of a scene and their selection
// state. The Registry is passed explicitly to every component that reads or
// mutates objects.
package scene

import (
	"fmt"
	"slices"

	"github.com/Faultbox/objpick/pkg/math"
)

// ID identifies a scene object. Zero is reserved for "no object".
type ID uint32

const (
	// None is the background / no-selection id.
	None ID = 0
	// MaxID is the largest id representable in a 24-bit id color.
	MaxID ID = 1<<24 - 1
)

// Valid reports whether id can name an object.
func (id ID) Valid() bool {
	return id != None && id <= MaxID
}

// Color is a linear RGB triple in [0,1].
type Color [3]float32

// Object is a single pickable scene object.
type Object struct {
	ID          ID
	Name        string
	Mesh        string // geometry key, shared between objects
	Transform   math.Mat4
	BaseColor   Color
	SelectColor Color
	Selected    bool
}

// Position returns the world-space translation of the object.
func (o Object) Position() math.Vec3 {
	return o.Transform.Translation()
}

// DisplayColor returns the color the object is drawn with in the main pass.
func (o Object) DisplayColor() Color {
	if o.Selected {
		return o.SelectColor
	}
	return o.BaseColor
}

func (o Object) String() string {
	return fmt.Sprintf("%s (id %d)", o.Name, o.ID)
}

// IDSet is a set of object ids.
type IDSet map[ID]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id ID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
