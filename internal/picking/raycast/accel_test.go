package raycast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/objpick/internal/picking"
	"github.com/Faultbox/objpick/internal/scene"
	"github.com/Faultbox/objpick/pkg/math"
)

func sphereObjects(positions ...math.Vec3) []scene.Object {
	objs := make([]scene.Object, len(positions))
	for i, p := range positions {
		objs[i] = scene.Object{ID: scene.ID(i + 1), Mesh: scene.SphereMesh, Transform: math.Translate(p)}
	}
	return objs
}

func newStructure(t *testing.T) *Structure {
	t.Helper()
	s := NewStructure(0.5)
	require.NoError(t, s.AddBottomLevel(scene.NewSphereMesh(0.5, 8, 4)))
	return s
}

func TestBottomLevelsAreImmutable(t *testing.T) {
	s := newStructure(t)

	err := s.AddBottomLevel(scene.NewSphereMesh(1, 8, 4))
	assert.Error(t, err)

	bl, ok := s.BottomLevel(scene.SphereMesh)
	require.True(t, ok)
	assert.InDelta(t, 0.5, bl.Bounds.Max.Z, 1e-6, "first build is kept")
	assert.Equal(t, 8*2+8*2*2, bl.Triangles)
}

func TestBuildTopCarriesIDs(t *testing.T) {
	s := newStructure(t)
	require.NoError(t, s.BuildTop(sphereObjects(math.Vec3{X: 1}, math.Vec3{Y: 2})))

	insts := s.Instances()
	require.Len(t, insts, 2)
	assert.Equal(t, scene.ID(1), insts[0].CustomIndex)
	assert.Equal(t, scene.ID(2), insts[1].CustomIndex)
	assert.Equal(t, MaskAll, insts[0].Mask)
	assert.True(t, insts[1].Bounds.Center().ApproxEqual(math.Vec3{Y: 2}, 1e-6))

	builds, refits := s.Stats()
	assert.Equal(t, 1, builds)
	assert.Zero(t, refits)
}

func TestBuildTopMissingBottomLevel(t *testing.T) {
	s := newStructure(t)
	objs := sphereObjects(math.Vec3{})
	objs[0].Mesh = "teapot"

	assert.ErrorIs(t, s.BuildTop(objs), ErrNoBottomLevel)
}

func TestRefitInPlaceOrRebuild(t *testing.T) {
	s := newStructure(t)
	objs := sphereObjects(math.Vec3{}, math.Vec3{X: 5})
	require.NoError(t, s.BuildTop(objs))

	objs[1].Transform = math.Translate(math.Vec3{X: -5})
	require.NoError(t, s.Refit(objs))
	assert.True(t, s.Instances()[1].Bounds.Center().ApproxEqual(math.Vec3{X: -5}, 1e-6))
	builds, refits := s.Stats()
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, refits)

	// A different object list forces a rebuild.
	require.NoError(t, s.Refit(sphereObjects(math.Vec3{}, math.Vec3{}, math.Vec3{})))
	builds, _ = s.Stats()
	assert.Equal(t, 2, builds)
	assert.Len(t, s.Instances(), 3)
}

func TestInstanceBoundsEncloseLargerPickSphere(t *testing.T) {
	s := NewStructure(2)
	require.NoError(t, s.AddBottomLevel(scene.NewSphereMesh(0.5, 8, 4)))
	require.NoError(t, s.BuildTop(sphereObjects(math.Vec3{})))

	b := s.Instances()[0].Bounds
	assert.InDelta(t, -2, b.Min.X, 1e-6)
	assert.InDelta(t, 2, b.Max.Z, 1e-6)
}

func TestTraverseMaskAndEmpty(t *testing.T) {
	s := newStructure(t)
	ray := picking.Ray{Origin: math.Vec3{Z: -10}, Direction: math.UnitZ}
	always := func(*Instance) (float32, bool) { return 1, true }

	_, _, ok := s.Traverse(ray, MaskAll, always)
	assert.False(t, ok, "empty top level")

	require.NoError(t, s.BuildTop(sphereObjects(math.Vec3{})))
	s.instances[0].Mask = 0x01

	_, _, ok = s.Traverse(ray, 0x02, always)
	assert.False(t, ok)

	id, _, ok := s.Traverse(ray, 0x01, always)
	assert.True(t, ok)
	assert.Equal(t, scene.ID(1), id)
}

func TestTraverseCullsByBounds(t *testing.T) {
	s := newStructure(t)
	require.NoError(t, s.BuildTop(sphereObjects(math.Vec3{}, math.Vec3{X: 10})))

	var visited []scene.ID
	ray := picking.Ray{Origin: math.Vec3{Z: -10}, Direction: math.UnitZ}
	s.Traverse(ray, MaskAll, func(inst *Instance) (float32, bool) {
		visited = append(visited, inst.CustomIndex)
		return 0, false
	})
	assert.Equal(t, []scene.ID{1}, visited)
}
