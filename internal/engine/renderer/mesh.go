package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/objpick/internal/engine/gpu"
	"github.com/Faultbox/objpick/internal/scene"
)

type meshBuffers struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func (m *meshBuffers) draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// UploadMesh copies m into GPU buffers and returns its handle.
func (r *Renderer) UploadMesh(m *scene.Mesh) (gpu.MeshHandle, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return 0, fmt.Errorf("mesh %q is empty", m.Name)
	}

	mb := &meshBuffers{indexCount: int32(len(m.Indices))}
	stride := int32(unsafe.Sizeof(scene.Vertex{}))

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.nextID++
	h := r.nextID
	r.meshes[h] = mb

	r.log.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("triangles", m.TriangleCount()),
		zap.Uint32("handle", uint32(h)),
	)
	return h, nil
}

func (r *Renderer) releaseMesh(h gpu.MeshHandle) {
	mb, ok := r.meshes[h]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &mb.vao)
	gl.DeleteBuffers(1, &mb.vbo)
	gl.DeleteBuffers(1, &mb.ebo)
	delete(r.meshes, h)
}
