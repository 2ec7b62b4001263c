package renderer

import (
	"context"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/objpick/internal/engine/framebuffer"
	"github.com/Faultbox/objpick/internal/engine/gpu"
)

// ReadRegion copies rect of target into a pixel-pack staging buffer, waits
// for the copy, and returns the bytes with rows top to bottom.
func (r *Renderer) ReadRegion(ctx context.Context, target gpu.Target, rect image.Rectangle) ([]byte, error) {
	fb, ok := target.(*framebuffer.Framebuffer)
	if !ok || fb == nil {
		return nil, fmt.Errorf("read region: target %T is not a framebuffer", target)
	}
	w, h := fb.Size()
	rect = rect.Intersect(image.Rect(0, 0, w, h))
	if rect.Empty() {
		return nil, nil
	}
	size := rect.Dx() * rect.Dy() * 4

	var pbo uint32
	gl.GenBuffers(1, &pbo)
	defer gl.DeleteBuffers(1, &pbo)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
	defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	clearErrors()
	gl.BufferData(gl.PIXEL_PACK_BUFFER, size, nil, gl.STREAM_READ)
	if e := gl.GetError(); e == gl.OUT_OF_MEMORY {
		return nil, fmt.Errorf("%w: %d bytes", gpu.ErrStagingAlloc, size)
	}

	fb.ReadInto(rect)
	if err := fenceAndWait(ctx); err != nil {
		return nil, err
	}

	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, size, gl.MAP_READ_BIT)
	if ptr == nil {
		return nil, fmt.Errorf("%w: map failed", gpu.ErrStagingAlloc)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)

	framebuffer.FlipRows(out, rect.Dx(), rect.Dy())
	return out, nil
}

func clearErrors() {
	for gl.GetError() != gl.NO_ERROR {
	}
}
