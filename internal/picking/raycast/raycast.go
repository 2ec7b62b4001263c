// Package raycast picks objects analytically: a ray from the camera through
// the cursor is tested against a bounding sphere around each object. An
// optional two-level acceleration structure culls instances before the
// sphere test.
package raycast

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/objpick/internal/logger"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
)

// Name identifies this backend in logs and config.
const Name = "raycast"

// DefaultRadius is the bounding sphere radius used when none is configured.
const DefaultRadius = 0.5

// Config holds backend settings.
type Config struct {
	// Radius of the bounding sphere placed at every object's position.
	Radius float32
	// UseAcceleration routes picks through the acceleration structure.
	UseAcceleration bool
}

// Backend is the ray-cast pick backend. It has no rectangle mode.
type Backend struct {
	registry *scene.Registry
	meshes   []*scene.Mesh
	cfg      Config
	accel    *Structure
	prepared bool
	log      *zap.Logger
}

// New creates a backend over the registry. meshes are the static meshes the
// objects reference; their bottom levels are built by Prepare.
func New(registry *scene.Registry, meshes []*scene.Mesh, cfg Config) *Backend {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	return &Backend{
		registry: registry,
		meshes:   meshes,
		cfg:      cfg,
		accel:    NewStructure(cfg.Radius),
		log:      logger.Named("picking." + Name),
	}
}

// Name implements picking.Picker.
func (b *Backend) Name() string {
	return Name
}

// Prepare builds the bottom levels once, then the top level from the current
// object transforms.
func (b *Backend) Prepare() error {
	if !b.prepared {
		for _, m := range b.meshes {
			if err := b.accel.AddBottomLevel(m); err != nil {
				return err
			}
		}
	}
	if err := b.accel.BuildTop(b.registry.Objects()); err != nil {
		return fmt.Errorf("building top level: %w", err)
	}
	b.prepared = true
	b.log.Debug("acceleration structure built",
		zap.Int("bottom_levels", len(b.meshes)),
		zap.Int("instances", len(b.accel.Instances())))
	return nil
}

// Prepared reports whether picks will be served.
func (b *Backend) Prepared() bool {
	return b.prepared
}

// Refit implements picking.Refitter. It must run after objects move and
// before the next accelerated pick.
func (b *Backend) Refit() error {
	if !b.prepared {
		return picking.ErrNotPrepared
	}
	if err := b.accel.Refit(b.registry.Objects()); err != nil {
		return fmt.Errorf("refitting top level: %w", err)
	}
	return nil
}

// SetUseAcceleration switches between the analytic loop and traversal.
func (b *Backend) SetUseAcceleration(on bool) {
	b.cfg.UseAcceleration = on
}

// UsesAcceleration reports the current traversal mode.
func (b *Backend) UsesAcceleration() bool {
	return b.cfg.UseAcceleration
}

// Structure exposes the acceleration structure for inspection.
func (b *Backend) Structure() *Structure {
	return b.accel
}

// PickPoint implements picking.Picker.
func (b *Backend) PickPoint(ctx context.Context, p picking.Point, v picking.View) (scene.ID, error) {
	if !b.prepared {
		return scene.None, picking.ErrNotPrepared
	}
	if err := ctx.Err(); err != nil {
		return scene.None, err
	}

	ray, err := picking.ScreenRay(v, float32(p.X), float32(p.Y))
	if err != nil {
		return scene.None, err
	}
	id, t := b.PickRay(ray)
	if id != scene.None {
		hit := ray.At(t)
		b.log.Debug("ray hit",
			zap.Uint32("id", uint32(id)),
			zap.Float32s("point", []float32{hit.X, hit.Y, hit.Z}),
			zap.Bool("accelerated", b.cfg.UseAcceleration))
	}
	return id, nil
}

// PickRay returns the nearest object whose bounding sphere the ray hits and
// the hit distance. Equal distances resolve to the earlier object.
func (b *Backend) PickRay(ray picking.Ray) (scene.ID, float32) {
	if b.cfg.UseAcceleration {
		id, t, _ := b.accel.Traverse(ray, MaskAll, func(inst *Instance) (float32, bool) {
			return ray.IntersectSphere(inst.Transform.Translation(), b.cfg.Radius)
		})
		return id, t
	}

	best := scene.None
	var bestT float32
	for _, obj := range b.registry.Objects() {
		t, ok := ray.IntersectSphere(obj.Position(), b.cfg.Radius)
		if !ok {
			continue
		}
		if best == scene.None || t < bestT {
			best, bestT = obj.ID, t
		}
	}
	return best, bestT
}
