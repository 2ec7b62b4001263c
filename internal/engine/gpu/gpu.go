// Package gpu is the contract between the picking code and the rendering
// backend: allocate an off-screen target, submit a pass and block until the
// GPU has finished it, and copy a pixel region back to host memory.
package gpu

import (
	"context"
	"errors"
	"image"

	"github.com/Faultbox/objpick/pkg/math"
)

var (
	// ErrStagingAlloc is returned when a host-visible staging buffer for a
	// readback could not be created or mapped.
	ErrStagingAlloc = errors.New("gpu: staging buffer allocation failed")
	// ErrWaitTimeout is returned when submitted work did not complete before
	// the context deadline.
	ErrWaitTimeout = errors.New("gpu: timed out waiting for completion")
	// ErrTargetAlloc is returned when an off-screen target is incomplete.
	ErrTargetAlloc = errors.New("gpu: render target allocation failed")
)

// ColorFormat is the pixel format of a target's color attachment.
type ColorFormat int

const (
	RGBA8 ColorFormat = iota
)

// DepthFormat is the pixel format of a target's depth attachment.
type DepthFormat int

const (
	DepthNone DepthFormat = iota
	Depth24
)

// TargetDesc describes an off-screen render target.
type TargetDesc struct {
	Width  int
	Height int
	Color  ColorFormat
	Depth  DepthFormat
}

// Target is an allocated off-screen render target. Nil targets in a Pass
// mean the default framebuffer.
type Target interface {
	Size() (width, height int)
	Destroy()
}

// Resizer is implemented by targets that can change size in place, keeping
// their handles.
type Resizer interface {
	Resize(width, height int)
}

// MeshHandle names geometry uploaded to the device.
type MeshHandle uint32

// PassKind selects the shading program for a pass.
type PassKind int

const (
	// Shaded draws lit geometry in each draw's color.
	Shaded PassKind = iota
	// FlatID draws unlit geometry in each draw's exact color, for id buffers.
	FlatID
)

// DrawCall is one mesh draw with its per-draw constants.
type DrawCall struct {
	Mesh  MeshHandle
	Model math.Mat4
	Color [3]float32
}

// Pass is a self-contained command sequence against one target.
type Pass struct {
	Target     Target
	Kind       PassKind
	ClearColor [4]float32
	ClearDepth float32
	View       math.Mat4
	Projection math.Mat4
	Draws      []DrawCall
	Wireframe  bool
}

// Device is the rendering backend as seen by the pick backends.
type Device interface {
	// AllocateTarget creates an off-screen color+depth target.
	AllocateTarget(desc TargetDesc) (Target, error)
	// SubmitAndWait records pass, submits it with its own completion signal
	// and blocks until the GPU has finished it or ctx is done.
	SubmitAndWait(ctx context.Context, pass Pass) error
	// ReadRegion copies the RGBA8 pixels of rect (top-left origin) to host
	// memory, rows top to bottom.
	ReadRegion(ctx context.Context, target Target, rect image.Rectangle) ([]byte, error)
}
