package idbuffer

import (
	"context"
	"errors"
	"image"

	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/picking/idcolor"
)

type fakeTarget struct {
	w, h      int
	destroyed bool
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }
func (t *fakeTarget) Destroy()         { t.destroyed = true }

func asFake(t gpu.Target) *fakeTarget {
	if rt, ok := t.(*resizableTarget); ok {
		return rt.fakeTarget
	}
	return t.(*fakeTarget)
}

// resizableTarget resizes in place like a GL framebuffer, reallocating the
// device's backing pixels.
type resizableTarget struct {
	*fakeTarget
	dev     *fakeDevice
	resizes int
}

func (t *resizableTarget) Resize(w, h int) {
	t.w, t.h = w, h
	t.dev.pixels = make([]byte, w*h*4)
	t.resizes++
}

// fakeDevice rasterizes each draw as a screen rectangle looked up by the
// draw's quantized color, so tests control exactly which id covers which
// pixel. Later draws overwrite earlier ones.
type fakeDevice struct {
	layout map[uint32]image.Rectangle // id -> covered pixels

	resizable bool // allocate targets that resize in place

	allocErr  error
	submitErr error
	readErr   error

	targets  []*fakeTarget
	pixels   []byte
	passes   []gpu.Pass
	reads    []image.Rectangle
	complete bool // a submitted pass finished and has not been read yet
	calls    []string
	deadline bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{layout: make(map[uint32]image.Rectangle)}
}

func (d *fakeDevice) AllocateTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	d.calls = append(d.calls, "alloc")
	if d.allocErr != nil {
		return nil, d.allocErr
	}
	t := &fakeTarget{w: desc.Width, h: desc.Height}
	d.targets = append(d.targets, t)
	d.pixels = make([]byte, desc.Width*desc.Height*4)
	if d.resizable {
		return &resizableTarget{fakeTarget: t, dev: d}, nil
	}
	return t, nil
}

func (d *fakeDevice) SubmitAndWait(ctx context.Context, pass gpu.Pass) error {
	d.calls = append(d.calls, "submit")
	_, d.deadline = ctx.Deadline()
	d.passes = append(d.passes, pass)
	if d.submitErr != nil {
		return d.submitErr
	}

	t := asFake(pass.Target)
	bg := [4]byte{
		byte(pass.ClearColor[0] * 255), byte(pass.ClearColor[1] * 255),
		byte(pass.ClearColor[2] * 255), byte(pass.ClearColor[3] * 255),
	}
	for i := 0; i < len(d.pixels); i += 4 {
		copy(d.pixels[i:], bg[:])
	}

	for _, draw := range pass.Draws {
		q := func(v float32) byte { return byte(v*255 + 0.5) }
		r, g, b := q(draw.Color[0]), q(draw.Color[1]), q(draw.Color[2])
		id := uint32(idcolor.Decode(r, g, b, 0))
		rect, ok := d.layout[id]
		if !ok {
			continue
		}
		rect = rect.Intersect(image.Rect(0, 0, t.w, t.h))
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				o := (y*t.w + x) * 4
				d.pixels[o], d.pixels[o+1], d.pixels[o+2], d.pixels[o+3] = r, g, b, 255
			}
		}
	}
	d.complete = true
	return nil
}

func (d *fakeDevice) ReadRegion(_ context.Context, target gpu.Target, rect image.Rectangle) ([]byte, error) {
	d.calls = append(d.calls, "read")
	d.reads = append(d.reads, rect)
	if d.readErr != nil {
		return nil, d.readErr
	}
	if !d.complete {
		return nil, errors.New("fake: read before pass completed")
	}
	d.complete = false

	t := asFake(target)
	if !rect.In(image.Rect(0, 0, t.w, t.h)) {
		return nil, errors.New("fake: read out of bounds")
	}
	out := make([]byte, 0, rect.Dx()*rect.Dy()*4)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		o := (y*t.w + rect.Min.X) * 4
		out = append(out, d.pixels[o:o+rect.Dx()*4]...)
	}
	return out, nil
}
