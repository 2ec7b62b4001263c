// Package renderer provides the OpenGL implementation of gpu.Device along
// with the on-screen frame and overlay drawing.
package renderer

import (
	"context"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/objpick/internal/engine/framebuffer"
	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/engine/renderer/shaders"
	"github.com/Faultbox/objpick/internal/engine/shader"
	"github.com/Faultbox/objpick/internal/logger"
	"github.com/Faultbox/objpick/pkg/math"
)

// lineStride is the float count per overlay vertex: position then color.
const lineStride = 6

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
	// LightDir points towards the light for the shaded pass.
	LightDir math.Vec3
}

// DefaultClearColor is the dark blue-gray background of the visible frame.
var DefaultClearColor = [4]float32{0.1, 0.1, 0.15, 1.0}

type meshProgram struct {
	id         uint32
	model      int32
	view       int32
	projection int32
	color      int32
	lightDir   int32 // -1 in programs without lighting
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	shaded meshProgram
	flat   meshProgram

	lineProgram  uint32
	lineViewProj int32
	lineVAO      uint32
	lineVBO      uint32
	lineCap      int

	meshes map[gpu.MeshHandle]*meshBuffers
	nextID gpu.MeshHandle
}

var (
	_ gpu.Device  = (*Renderer)(nil)
	_ gpu.Resizer = (*framebuffer.Framebuffer)(nil)
)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		meshes: make(map[gpu.MeshHandle]*meshBuffers),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	if r.shaded, err = newMeshProgram(shaders.SceneVertexShader, shaders.SceneFragmentShader); err != nil {
		return nil, fmt.Errorf("scene program: %w", err)
	}
	if r.flat, err = newMeshProgram(shaders.SceneVertexShader, shaders.IDFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("id program: %w", err)
	}
	if r.lineProgram, err = shader.CompileProgram(shaders.LinesVertexShader, shaders.LinesFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("line program: %w", err)
	}
	r.lineViewProj = shader.MustGetUniform(r.lineProgram, "uViewProj")
	r.createLineBuffers()

	return r, nil
}

func newMeshProgram(vert, frag string) (meshProgram, error) {
	id, err := shader.CompileProgram(vert, frag)
	if err != nil {
		return meshProgram{}, err
	}
	return meshProgram{
		id:         id,
		model:      shader.MustGetUniform(id, "uModel"),
		view:       shader.MustGetUniform(id, "uView"),
		projection: shader.MustGetUniform(id, "uProjection"),
		color:      shader.MustGetUniform(id, "uColor"),
		lightDir:   shader.GetUniform(id, "uLightDir"),
	}, nil
}

func (r *Renderer) createLineBuffers() {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)

	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, lineStride*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, lineStride*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for h := range r.meshes {
		r.releaseMesh(h)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	for _, p := range []uint32{r.shaded.id, r.flat.id, r.lineProgram} {
		if p != 0 {
			gl.DeleteProgram(p)
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AllocateTarget creates an off-screen framebuffer.
func (r *Renderer) AllocateTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	if desc.Color != gpu.RGBA8 {
		return nil, fmt.Errorf("%w: unsupported color format %d", gpu.ErrTargetAlloc, desc.Color)
	}
	fb, err := framebuffer.New(desc.Width, desc.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrTargetAlloc, err)
	}
	r.log.Debug("target allocated", zap.Int("width", desc.Width), zap.Int("height", desc.Height))
	return fb, nil
}

// Draw records pass without waiting for it. Used for the visible frame.
func (r *Renderer) Draw(pass gpu.Pass) {
	r.record(pass)
}

// SubmitAndWait records pass, fences it and blocks until the fence signals or
// ctx is done.
func (r *Renderer) SubmitAndWait(ctx context.Context, pass gpu.Pass) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", gpu.ErrWaitTimeout, err)
	}
	r.record(pass)
	return fenceAndWait(ctx)
}

func (r *Renderer) record(pass gpu.Pass) {
	restore := r.bindTarget(pass.Target)
	defer restore()

	c := pass.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.ClearDepth(float64(pass.ClearDepth))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	prog := r.shaded
	if pass.Kind == gpu.FlatID {
		// Exact bytes only: no dithering or blending may touch id colors.
		gl.Disable(gl.DITHER)
		gl.Disable(gl.BLEND)
		prog = r.flat
	}
	if pass.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.UseProgram(prog.id)
	gl.UniformMatrix4fv(prog.view, 1, false, pass.View.Ptr())
	gl.UniformMatrix4fv(prog.projection, 1, false, pass.Projection.Ptr())
	if prog.lightDir >= 0 {
		l := r.config.LightDir
		gl.Uniform3f(prog.lightDir, l.X, l.Y, l.Z)
	}

	for i := range pass.Draws {
		d := &pass.Draws[i]
		mb, ok := r.meshes[d.Mesh]
		if !ok {
			r.log.Warn("draw with unknown mesh", zap.Uint32("mesh", uint32(d.Mesh)))
			continue
		}
		gl.UniformMatrix4fv(prog.model, 1, false, d.Model.Ptr())
		gl.Uniform3f(prog.color, d.Color[0], d.Color[1], d.Color[2])
		mb.draw()
	}

	if pass.Kind == gpu.FlatID {
		gl.Enable(gl.DITHER)
	}
	gl.UseProgram(0)
}

// bindTarget makes t the draw target and returns a function restoring the
// previous binding. A nil target is the window framebuffer.
func (r *Renderer) bindTarget(t gpu.Target) func() {
	if fb, ok := t.(*framebuffer.Framebuffer); ok && fb != nil {
		return fb.BindWithViewport()
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	return func() {}
}

// DrawLines draws overlay line vertices (position, color interleaved) to the
// window framebuffer on top of the scene. viewProj maps positions to clip
// space; pass math.Identity() for vertices already in NDC.
func (r *Renderer) DrawLines(vertices []float32, viewProj math.Mat4) {
	if len(vertices) < 2*lineStride {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	size := len(vertices) * 4
	if size > r.lineCap {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)
		r.lineCap = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&vertices[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.lineViewProj, 1, false, viewProj.Ptr())
	gl.BindVertexArray(r.lineVAO)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/lineStride))
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Enable(gl.DEPTH_TEST)
}
