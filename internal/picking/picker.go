// Package picking defines the contract shared by the pick backends: screen
// points and regions in, object ids out. It also holds the ray math used to
// turn a screen position into a world-space query.
package picking

import (
	"context"
	"errors"

	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

// ErrNotPrepared is returned by a backend asked to pick before its first
// successful prepare. Callers drop the request.
var ErrNotPrepared = errors.New("picking: backend not prepared")

// Camera is the view state a pick is resolved against.
type Camera interface {
	ViewMatrix() math.Mat4
	ProjectionMatrix() math.Mat4
	Position() math.Vec3
}

// View is a snapshot of the camera and viewport at the time of a pick.
type View struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	Width      int
	Height     int
}

// ViewOf captures cam for a viewport of w x h pixels.
func ViewOf(cam Camera, w, h int) View {
	return View{
		View:       cam.ViewMatrix(),
		Projection: cam.ProjectionMatrix(),
		Eye:        cam.Position(),
		Width:      w,
		Height:     h,
	}
}

// Picker resolves a single screen point to the object under it, or
// scene.None.
type Picker interface {
	Name() string
	PickPoint(ctx context.Context, p Point, v View) (scene.ID, error)
}

// RegionPicker is a Picker that can also resolve a rectangle to every
// object visible anywhere inside it.
type RegionPicker interface {
	Picker
	PickRegion(ctx context.Context, r Region, v View) (scene.IDSet, error)
}

// Refitter is implemented by backends that cache object transforms and must
// be told after objects move.
type Refitter interface {
	Refit() error
}
