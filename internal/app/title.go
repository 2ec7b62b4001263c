package app

import (
	"fmt"
	"strings"

	"github.com/Faultbox/objpick/internal/manipulator"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/picking/raycast"
	"github.com/Faultbox/objpick/internal/scene"
)

// pickerLabel names the active backend, marking ray picks that traverse the
// acceleration structure.
func pickerLabel(p picking.Picker) string {
	if rc, ok := p.(*raycast.Backend); ok && rc.UsesAcceleration() {
		return rc.Name() + "+accel"
	}
	return p.Name()
}

// windowTitle renders the info readout: active backend, then either the
// single selected object with the gizmo state or a selection count.
func windowTitle(base, backend string, reg *scene.Registry, gizmo manipulator.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", base, backend)

	selected := reg.Selected()
	switch len(selected) {
	case 0:
		b.WriteString(" | nothing selected")
	case 1:
		obj, ok := reg.Get(selected[0])
		if !ok {
			break
		}
		p := obj.Position()
		fmt.Fprintf(&b, " | %s (id %d) at (%.2f, %.2f, %.2f) | %s", obj.Name, obj.ID, p.X, p.Y, p.Z, gizmo.Mode)
		if gizmo.Axis != manipulator.AxisNone {
			fmt.Fprintf(&b, " %s", gizmo.Axis)
		}
	default:
		fmt.Fprintf(&b, " | %d selected", len(selected))
	}
	return b.String()
}
