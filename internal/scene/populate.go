package scene

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Faultbox/objpick/pkg/math"
)

// highlight is blended into an object's base color to produce its select color.
var highlight = Color{1, 0.85, 0.1}

// PopulateOptions controls the generated sphere field.
type PopulateOptions struct {
	Count  int
	Seed   int64 // 0 uses the current time
	Spread float32
}

// Populate adds opts.Count spheres with ids 1..Count at random positions in
// [-Spread, Spread], depth squeezed by half, with random colors in [0.2, 1].
func Populate(r *Registry, opts PopulateOptions) error {
	seed := uint64(opts.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))

	between := func(lo, hi float32) float32 {
		return lo + rng.Float32()*(hi-lo)
	}

	for i := 1; i <= opts.Count; i++ {
		pos := math.Vec3{
			X: between(-opts.Spread, opts.Spread),
			Y: between(-opts.Spread, opts.Spread),
			Z: between(-opts.Spread, opts.Spread) * 0.5,
		}
		base := Color{between(0.2, 1), between(0.2, 1), between(0.2, 1)}

		obj := Object{
			ID:          ID(i),
			Name:        fmt.Sprintf("Sphere %d", i),
			Mesh:        SphereMesh,
			Transform:   math.Translate(pos),
			BaseColor:   base,
			SelectColor: mix(base, highlight, 0.7),
		}
		if err := r.Add(obj); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	return nil
}

func mix(a, b Color, t float32) Color {
	return Color{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
