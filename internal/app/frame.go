package app

import (
	"github.com/Faultbox/objpick/internal/engine/debug"
	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

// sceneDraws builds the visible-frame draw list, one shaded draw per object
// in its display color. Objects whose mesh was never uploaded are skipped.
func sceneDraws(objects []scene.Object, meshes map[string]gpu.MeshHandle) []gpu.DrawCall {
	draws := make([]gpu.DrawCall, 0, len(objects))
	for _, obj := range objects {
		h, ok := meshes[obj.Mesh]
		if !ok {
			continue
		}
		draws = append(draws, gpu.DrawCall{
			Mesh:  h,
			Model: obj.Transform,
			Color: [3]float32(obj.DisplayColor()),
		})
	}
	return draws
}

// selectionBoxes returns world-space outlines of every selected object's
// transformed mesh bounds.
func selectionBoxes(objects []scene.Object, bounds map[string]picking.AABB) []float32 {
	var out []float32
	for _, obj := range objects {
		if !obj.Selected {
			continue
		}
		local, ok := bounds[obj.Mesh]
		if !ok {
			continue
		}
		box := picking.TransformAABB(local, obj.Transform)
		out = append(out, debug.BoxLines(box, debug.ColorBounds)...)
	}
	return out
}

// scalePoint converts window coordinates to drawable pixels, which differ on
// high-DPI displays.
func scalePoint(x, y, winW, winH, drawW, drawH int) picking.Point {
	if winW <= 0 || winH <= 0 {
		return picking.Point{X: x, Y: y}
	}
	return picking.Point{X: x * drawW / winW, Y: y * drawH / winH}
}

// meshBounds is the local bounding box of m.
func meshBounds(m *scene.Mesh) picking.AABB {
	lo, hi := m.Bounds()
	return picking.NewAABB(lo, hi)
}

var ndc = math.Identity()
