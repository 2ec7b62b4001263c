package picking

import (
	"fmt"
	"image"
)

// Point is a pixel position, origin top-left.
type Point struct {
	X, Y int
}

// Region is a pixel rectangle given by its top-left offset and size.
type Region struct {
	X, Y          int
	Width, Height int
}

// PointRegion returns the 1x1 region covering p.
func PointRegion(p Point) Region {
	return Region{X: p.X, Y: p.Y, Width: 1, Height: 1}
}

// BoundsOf returns the region spanned by two corner points. The region starts
// at the top-left corner and its size is the absolute corner difference, so
// the far row and column are not included.
func BoundsOf(a, b Point) Region {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Rect returns r as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Clamp intersects r with a w x h framebuffer. The result is empty when r
// lies entirely outside it.
func (r Region) Clamp(w, h int) image.Rectangle {
	return r.Rect().Intersect(image.Rect(0, 0, w, h))
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}
