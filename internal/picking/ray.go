package picking

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/objpick/pkg/math"
)

// ErrDegenerateView is returned when the camera matrices cannot be inverted
// or the viewport is empty.
var ErrDegenerateView = errors.New("picking: view is not invertible")

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenRay converts pixel coordinates to a world-space ray leaving the
// camera. It inverts exactly the projection and view used for rendering:
// the pixel is mapped to NDC, unprojected to a view-space direction with
// z = -1 and w = 0, then rotated into world space.
func ScreenRay(v View, x, y float32) (Ray, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return Ray{}, ErrDegenerateView
	}
	invProj, ok := v.Projection.Inverse()
	if !ok {
		return Ray{}, ErrDegenerateView
	}
	invView, ok := v.View.Inverse()
	if !ok {
		return Ray{}, ErrDegenerateView
	}

	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*x/float32(v.Width) - 1
	ndcY := 1 - 2*y/float32(v.Height) // Flip Y

	eye := invProj.MulVec4(math.Vec4{ndcX, ndcY, -1, 1})
	eye[2], eye[3] = -1, 0

	dir := invView.MulVec4(eye).XYZ().Normalize()
	return Ray{Origin: v.Eye, Direction: dir}, nil
}

// IntersectSphere runs the analytic ray/sphere test. A sphere whose center
// projects behind the origin (tca < 0) is a miss, which includes the case of
// an origin inside the sphere past its center. The returned t is the near
// root when it is nonnegative, otherwise the far root.
func (r Ray) IntersectSphere(center math.Vec3, radius float32) (t float32, hit bool) {
	l := center.Sub(r.Origin)
	tca := l.Dot(r.Direction)
	if tca < 0 {
		return 0, false
	}

	d2 := l.Dot(l) - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}

	thc := math32.Sqrt(r2 - d2)
	t0, t1 := tca-thc, tca+thc
	if t0 >= 0 {
		return t0, true
	}
	return t1, true
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners, handling swapped components.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y), Z: math32.Min(a.Z, b.Z)},
		Max: math.Vec3{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y), Z: math32.Max(a.Z, b.Z)},
	}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: math.Vec3{X: math32.Min(b.Min.X, o.Min.X), Y: math32.Min(b.Min.Y, o.Min.Y), Z: math32.Min(b.Min.Z, o.Min.Z)},
		Max: math.Vec3{X: math32.Max(b.Max.X, o.Max.X), Y: math32.Max(b.Max.Y, o.Max.Y), Z: math32.Max(b.Max.Z, o.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// TransformAABB transforms a local box by an affine matrix, returning the
// world-space box enclosing all eight transformed corners.
func TransformAABB(local AABB, m math.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		c := local.Min
		if i&1 != 0 {
			c.X = local.Max.X
		}
		if i&2 != 0 {
			c.Y = local.Max.Y
		}
		if i&4 != 0 {
			c.Z = local.Max.Z
		}
		p := m.TransformPoint(c)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out = out.Union(AABB{Min: p, Max: p})
	}
	return out
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	o := r.Origin.Array()
	d := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - o[axis]) / d[axis]
		t2 := (hi[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
