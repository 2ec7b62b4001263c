// Package debug provides overlay geometry for the gizmo, the marquee and
// selection boxes, and an id-buffer dump for inspecting pick passes.
package debug

import (
	"github.com/Faultbox/objpick/internal/manipulator"
	"github.com/Faultbox/objpick/internal/picking"
)

// FloatsPerVertex is the line vertex layout: position xyz, color rgb.
const FloatsPerVertex = 6

// Overlay colors.
var (
	ColorX       = [3]float32{1, 0, 0}
	ColorY       = [3]float32{0, 1, 0}
	ColorZ       = [3]float32{0, 0, 1}
	ColorHeld    = [3]float32{1, 1, 0}
	ColorMarquee = [3]float32{1, 1, 1}
	ColorBounds  = [3]float32{1, 0.85, 0.1}
)

func line(out []float32, a, b [3]float32, c [3]float32) []float32 {
	return append(out,
		a[0], a[1], a[2], c[0], c[1], c[2],
		b[0], b[1], b[2], c[0], c[1], c[2],
	)
}

// GizmoLines returns world-space line vertices for the three gizmo axes. The
// held axis is drawn in the highlight color. An inactive gizmo has no lines.
func GizmoLines(st manipulator.State, length float32) []float32 {
	if !st.Active {
		return nil
	}
	colors := map[manipulator.Axis][3]float32{
		manipulator.AxisX: ColorX,
		manipulator.AxisY: ColorY,
		manipulator.AxisZ: ColorZ,
	}

	origin := st.Position.Array()
	out := make([]float32, 0, 3*2*FloatsPerVertex)
	for _, a := range manipulator.Axes {
		c := colors[a]
		if a == st.Axis {
			c = ColorHeld
		}
		end := st.Position.Add(a.Unit().Scale(length)).Array()
		out = line(out, origin, end, c)
	}
	return out
}

// MarqueeLines returns the outline of a pixel region as line vertices in
// normalized device coordinates for a w x h viewport.
func MarqueeLines(r picking.Region, w, h int) []float32 {
	if w <= 0 || h <= 0 {
		return nil
	}
	ndc := func(x, y int) [3]float32 {
		return [3]float32{
			2*float32(x)/float32(w) - 1,
			1 - 2*float32(y)/float32(h),
			0,
		}
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height

	out := make([]float32, 0, 4*2*FloatsPerVertex)
	out = line(out, ndc(x0, y0), ndc(x1, y0), ColorMarquee)
	out = line(out, ndc(x1, y0), ndc(x1, y1), ColorMarquee)
	out = line(out, ndc(x1, y1), ndc(x0, y1), ColorMarquee)
	out = line(out, ndc(x0, y1), ndc(x0, y0), ColorMarquee)
	return out
}

// BoxLines returns the 12 edges of a world-space box as line vertices.
func BoxLines(box picking.AABB, c [3]float32) []float32 {
	lo, hi := box.Min, box.Max
	corner := func(x, y, z bool) [3]float32 {
		p := lo
		if x {
			p.X = hi.X
		}
		if y {
			p.Y = hi.Y
		}
		if z {
			p.Z = hi.Z
		}
		return p.Array()
	}

	out := make([]float32, 0, 12*2*FloatsPerVertex)
	// Bottom and top faces
	for _, y := range []bool{false, true} {
		out = line(out, corner(false, y, false), corner(true, y, false), c)
		out = line(out, corner(true, y, false), corner(true, y, true), c)
		out = line(out, corner(true, y, true), corner(false, y, true), c)
		out = line(out, corner(false, y, true), corner(false, y, false), c)
	}
	// Vertical edges
	for _, xz := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		out = line(out, corner(xz[0], false, xz[1]), corner(xz[0], true, xz[1]), c)
	}
	return out
}

// VertexCount returns the number of vertices in a line buffer.
func VertexCount(lines []float32) int32 {
	return int32(len(lines) / FloatsPerVertex)
}
