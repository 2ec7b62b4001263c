package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/objpick/pkg/math"
)

// SphereMesh is the geometry key shared by every generated sphere.
const SphereMesh = "sphere"

// Vertex is an interleaved position/normal pair.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh is static indexed triangle geometry.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// NewSphereMesh builds a UV sphere centered at the origin. Poles are single
// triangles; every other band is a quad split into two triangles.
func NewSphereMesh(radius float32, sectors, stacks int) *Mesh {
	m := &Mesh{Name: SphereMesh}

	sectorStep := 2 * math32.Pi / float32(sectors)
	stackStep := math32.Pi / float32(stacks)

	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*stackStep
		xy := radius * math32.Cos(stackAngle)
		z := radius * math32.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sin, cos := math32.Sincos(float32(j) * sectorStep)
			x, y := xy*cos, xy*sin
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{x, y, z},
				Normal:   [3]float32{x / radius, y / radius, z / radius},
			})
		}
	}

	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors) + 1

		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {
			if i != 0 {
				m.Indices = append(m.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				m.Indices = append(m.Indices, k1+1, k2, k2+1)
			}
		}
	}

	return m
}

// Bounds returns the local-space axis-aligned bounds of the mesh.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo = math.Vec3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32}
	hi = lo.Neg()
	for _, v := range m.Vertices {
		p := math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]}
		lo = math.Vec3{X: math32.Min(lo.X, p.X), Y: math32.Min(lo.Y, p.Y), Z: math32.Min(lo.Z, p.Z)}
		hi = math.Vec3{X: math32.Max(hi.X, p.X), Y: math32.Max(hi.Y, p.Y), Z: math32.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
