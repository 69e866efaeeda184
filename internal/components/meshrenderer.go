package components

import (
	"raycar/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type MeshType int

const (
	MeshCube MeshType = iota
	MeshSphere
	MeshPlane
	MeshWheel // cylinder lying along the X axis
)

// MeshRenderer draws a generated mesh with the object's full world pose.
// The model is built in Start, once a GL context exists.
type MeshRenderer struct {
	engine.BaseComponent
	MeshType  MeshType
	Color     rl.Color
	Size      rl.Vector3 // box extents; X is the radius for spheres and wheels, Y the wheel width
	Wireframe bool

	model  rl.Model
	loaded bool
}

func NewMeshRenderer(meshType MeshType, color rl.Color, size rl.Vector3) *MeshRenderer {
	return &MeshRenderer{
		MeshType: meshType,
		Color:    color,
		Size:     size,
	}
}

func (m *MeshRenderer) Start() {
	if m.loaded {
		return
	}
	var mesh rl.Mesh
	switch m.MeshType {
	case MeshCube:
		mesh = rl.GenMeshCube(m.Size.X, m.Size.Y, m.Size.Z)
	case MeshSphere:
		mesh = rl.GenMeshSphere(m.Size.X, 16, 16)
	case MeshPlane:
		mesh = rl.GenMeshPlane(m.Size.X, m.Size.Z, 8, 8)
	case MeshWheel:
		mesh = rl.GenMeshCylinder(m.Size.X, m.Size.Y, 24)
	}
	m.model = rl.LoadModelFromMesh(mesh)
	m.loaded = true
}

// meshOffset places the generated mesh in the object's local frame.
func (m *MeshRenderer) meshOffset() rl.Matrix {
	if m.MeshType != MeshWheel {
		return rl.MatrixIdentity()
	}
	// Cylinders are generated upward from the origin.
	center := rl.MatrixTranslate(0, -m.Size.Y/2, 0)
	return rl.MatrixMultiply(center, rl.MatrixRotateZ(rl.Pi/2))
}

// Matrix is the combined mesh-to-world transform.
func (m *MeshRenderer) Matrix() rl.Matrix {
	g := m.GetGameObject()
	if g == nil {
		return m.meshOffset()
	}
	return rl.MatrixMultiply(m.meshOffset(), g.WorldMatrix())
}

func (m *MeshRenderer) Draw() {
	g := m.GetGameObject()
	if g == nil || !g.Active || !m.loaded {
		return
	}

	m.model.Transform = m.Matrix()
	rl.DrawModel(m.model, rl.Vector3Zero(), 1.0, m.Color)
	if m.Wireframe {
		rl.DrawModelWires(m.model, rl.Vector3Zero(), 1.0, rl.Black)
	}
}

func (m *MeshRenderer) Unload() {
	if m.loaded {
		rl.UnloadModel(m.model)
		m.loaded = false
	}
}
