package components

import (
	"math"
	"testing"

	"raycar/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestWheelMeshLiesAlongAxle(t *testing.T) {
	obj := engine.NewGameObject("wheel")
	r := NewMeshRenderer(MeshWheel, rl.DarkGray, rl.Vector3{X: 0.5, Y: 0.3})
	obj.AddComponent(r)

	// The cylinder runs from y=0 to y=width before the offset.
	m := r.Matrix()
	assertVec(t, rl.Vector3{X: 0.15}, rl.Vector3Transform(rl.Vector3{}, m))
	assertVec(t, rl.Vector3{X: -0.15}, rl.Vector3Transform(rl.Vector3{Y: 0.3}, m))
}

func TestMeshFollowsObjectPose(t *testing.T) {
	obj := engine.NewGameObject("chassis")
	obj.Transform.Position = rl.Vector3{X: 1, Y: 2, Z: 3}
	obj.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math.Pi/2)
	r := NewMeshRenderer(MeshCube, rl.Red, rl.Vector3{X: 2, Y: 1, Z: 4})
	obj.AddComponent(r)

	// Local +Z front face ends up along world +X.
	got := rl.Vector3Transform(rl.Vector3{Z: 2}, r.Matrix())
	assertVec(t, rl.Vector3{X: 3, Y: 2, Z: 3}, got)
}

func TestDrawSkipsUnloaded(t *testing.T) {
	obj := engine.NewGameObject("ghost")
	r := NewMeshRenderer(MeshSphere, rl.Blue, rl.Vector3{X: 1})
	obj.AddComponent(r)
	assert.NotPanics(t, r.Draw)
	assert.NotPanics(t, r.Unload)
}
