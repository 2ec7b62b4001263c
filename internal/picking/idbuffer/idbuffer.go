// Package idbuffer picks objects by rendering every object in a flat color
// that encodes its id into an off-screen target, then reading the pixels
// under the query back to the host.
package idbuffer

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/logger"
	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/picking/idcolor"
	"github.com/Faultbox/objpick/internal/scene"
)

// Name identifies this backend in logs and config.
const Name = "idbuffer"

// ErrNotPrepared is returned for picks issued before Prepare succeeded.
var ErrNotPrepared = picking.ErrNotPrepared

// Config holds backend settings.
type Config struct {
	// WaitTimeout bounds each wait for the pick pass to complete.
	WaitTimeout time.Duration
}

// Backend is the ID-buffer pick backend. It is not safe for concurrent picks;
// the frame loop issues them one at a time.
type Backend struct {
	device   gpu.Device
	registry *scene.Registry
	meshes   map[string]gpu.MeshHandle
	cfg      Config
	log      *zap.Logger

	target gpu.Target
}

// New creates a backend drawing the registry's objects with the given mesh
// handles. It allocates nothing until Prepare.
func New(device gpu.Device, registry *scene.Registry, meshes map[string]gpu.MeshHandle, cfg Config) *Backend {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 2 * time.Second
	}
	return &Backend{
		device:   device,
		registry: registry,
		meshes:   meshes,
		cfg:      cfg,
		log:      logger.Named("picking." + Name),
	}
}

// Name implements picking.Picker.
func (b *Backend) Name() string {
	return Name
}

// Prepare allocates the off-screen color and depth target at the viewport
// size. A failure here is a setup error.
func (b *Backend) Prepare(width, height int) error {
	target, err := b.device.AllocateTarget(gpu.TargetDesc{
		Width:  width,
		Height: height,
		Color:  gpu.RGBA8,
		Depth:  gpu.Depth24,
	})
	if err != nil {
		return fmt.Errorf("allocating id target %dx%d: %w", width, height, err)
	}
	if b.target != nil {
		b.target.Destroy()
	}
	b.target = target
	b.log.Debug("id target ready", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Resize matches the target to a new viewport size. Targets that support it
// are resized in place; others are reallocated.
func (b *Backend) Resize(width, height int) error {
	if b.target == nil {
		return b.Prepare(width, height)
	}
	if w, h := b.target.Size(); w == width && h == height {
		return nil
	}
	if rz, ok := b.target.(gpu.Resizer); ok {
		rz.Resize(width, height)
		b.log.Debug("id target resized", zap.Int("width", width), zap.Int("height", height))
		return nil
	}
	return b.Prepare(width, height)
}

// Prepared reports whether picks will be served.
func (b *Backend) Prepared() bool {
	return b.target != nil
}

// Destroy releases the target.
func (b *Backend) Destroy() {
	if b.target != nil {
		b.target.Destroy()
		b.target = nil
	}
}

// PickPoint implements picking.Picker. A point outside the target, or over
// background, returns scene.None.
func (b *Backend) PickPoint(ctx context.Context, p picking.Point, v picking.View) (scene.ID, error) {
	px, err := b.pick(ctx, picking.PointRegion(p), v)
	if err != nil || px == nil {
		return scene.None, err
	}
	return idcolor.DecodePixel(px), nil
}

// PickRegion implements picking.RegionPicker. Every nonzero id that covers at
// least one pixel of the clamped region is returned.
func (b *Backend) PickRegion(ctx context.Context, r picking.Region, v picking.View) (scene.IDSet, error) {
	px, err := b.pick(ctx, r, v)
	if err != nil {
		return nil, err
	}
	ids := scene.NewIDSet()
	idcolor.DecodeRegion(px, ids)
	return ids, nil
}

// pick renders the id pass and reads back the clamped region. A nil slice
// with a nil error means the region fell entirely outside the target.
func (b *Backend) pick(ctx context.Context, r picking.Region, v picking.View) ([]byte, error) {
	if b.target == nil {
		return nil, ErrNotPrepared
	}

	w, h := b.target.Size()
	rect := r.Clamp(w, h)
	if rect.Empty() {
		return nil, nil
	}

	return b.renderAndRead(ctx, v, rect)
}

// Snapshot renders the id pass and reads back the whole target, for the
// debug dump. Pixels are RGBA8, rows top to bottom.
func (b *Backend) Snapshot(ctx context.Context, v picking.View) (pixels []byte, width, height int, err error) {
	if b.target == nil {
		return nil, 0, 0, ErrNotPrepared
	}
	width, height = b.target.Size()
	pixels, err = b.renderAndRead(ctx, v, image.Rect(0, 0, width, height))
	return pixels, width, height, err
}

func (b *Backend) renderAndRead(ctx context.Context, v picking.View, rect image.Rectangle) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.WaitTimeout)
	defer cancel()

	pass, err := b.buildPass(v)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := b.device.SubmitAndWait(ctx, pass); err != nil {
		return nil, fmt.Errorf("id pass: %w", err)
	}
	px, err := b.device.ReadRegion(ctx, b.target, rect)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", rect, err)
	}
	if want := rect.Dx() * rect.Dy() * idcolor.BytesPerPixel; len(px) < want {
		return nil, fmt.Errorf("reading %v: short readback %d < %d bytes", rect, len(px), want)
	}

	b.log.Debug("id pass read back",
		zap.Stringer("rect", rect),
		zap.Int("draws", len(pass.Draws)),
		zap.Duration("elapsed", time.Since(start)))
	return px, nil
}

// buildPass records one flat-color draw per object. The background clears to
// the reserved none color.
func (b *Backend) buildPass(v picking.View) (gpu.Pass, error) {
	objects := b.registry.Objects()
	pass := gpu.Pass{
		Target:     b.target,
		Kind:       gpu.FlatID,
		ClearColor: [4]float32{0, 0, 0, 0},
		ClearDepth: 1,
		View:       v.View,
		Projection: v.Projection,
		Draws:      make([]gpu.DrawCall, 0, len(objects)),
	}

	for _, obj := range objects {
		mesh, ok := b.meshes[obj.Mesh]
		if !ok {
			return gpu.Pass{}, fmt.Errorf("object %d: mesh %q not uploaded", obj.ID, obj.Mesh)
		}
		color, err := idcolor.Encode(obj.ID)
		if err != nil {
			return gpu.Pass{}, fmt.Errorf("object %d: %w", obj.ID, err)
		}
		pass.Draws = append(pass.Draws, gpu.DrawCall{
			Mesh:  mesh,
			Model: obj.Transform,
			Color: color,
		})
	}
	return pass, nil
}
