package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type BodyType int

const (
	Dynamic   BodyType = iota // integrated, pushed by contacts
	Static                    // never moves (ground, walls)
	Kinematic                 // moved by velocity or directly by the caller, ignores forces
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	}
	return "unknown"
}

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapePlane // infinite plane through the body origin, normal is local +Y
)

type Shape struct {
	Kind        ShapeKind
	HalfExtents rl.Vector3
	Radius      float32
}

func Box(halfExtents rl.Vector3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: halfExtents}
}

func Sphere(radius float32) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func Plane() Shape {
	return Shape{Kind: ShapePlane}
}

// localInertia returns the principal moments for a solid shape of the given mass.
func (s Shape) localInertia(mass float32) rl.Vector3 {
	switch s.Kind {
	case ShapeBox:
		x, y, z := 2*s.HalfExtents.X, 2*s.HalfExtents.Y, 2*s.HalfExtents.Z
		return rl.Vector3{
			X: mass / 12 * (y*y + z*z),
			Y: mass / 12 * (x*x + z*z),
			Z: mass / 12 * (x*x + y*y),
		}
	case ShapeSphere:
		i := 2.0 / 5.0 * mass * s.Radius * s.Radius
		return rl.Vector3{X: i, Y: i, Z: i}
	}
	return rl.Vector3{}
}

// Default collision filter: group 1, collides with everything.
const (
	DefaultCollisionGroup uint32 = 1
	DefaultCollisionMask  uint32 = 0xFFFFFFFF
)

type Body struct {
	Name     string
	Type     BodyType
	Shape    Shape
	Material *Material

	Mass       float32
	invMass    float32
	invInertia rl.Vector3 // local principal axes

	Position        rl.Vector3
	Rotation        rl.Quaternion
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // radians per second, world frame

	// Accumulated this step, cleared after integration.
	Force  rl.Vector3
	Torque rl.Vector3

	LinearDamping  float32 // fraction of velocity lost per second
	AngularDamping float32

	// A group of 0 disables all collisions and ray hits for the body.
	CollisionGroup uint32
	CollisionMask  uint32

	world *World
}

// NewBody creates a body at the origin. Mass is ignored for static and
// kinematic bodies.
func NewBody(name string, typ BodyType, shape Shape, mass float32) *Body {
	b := &Body{
		Name:           name,
		Type:           typ,
		Shape:          shape,
		Rotation:       rl.QuaternionIdentity(),
		LinearDamping:  0.01,
		AngularDamping: 0.01,
		CollisionGroup: DefaultCollisionGroup,
		CollisionMask:  DefaultCollisionMask,
	}
	b.SetMass(mass)
	return b
}

// SetMass updates mass and the derived inverse inertia.
func (b *Body) SetMass(mass float32) {
	b.Mass = mass
	b.invMass = 0
	b.invInertia = rl.Vector3{}
	if b.Type != Dynamic {
		b.Mass = 0
		return
	}
	if mass <= 0 {
		return
	}
	b.invMass = 1 / mass
	inertia := b.Shape.localInertia(mass)
	b.invInertia = rl.Vector3{X: invOrZero(inertia.X), Y: invOrZero(inertia.Y), Z: invOrZero(inertia.Z)}
}

func (b *Body) InvMass() float32 {
	return b.invMass
}

// World returns the world the body is registered with, or nil.
func (b *Body) World() *World {
	return b.world
}

func (b *Body) PointToWorld(local rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.Position, rl.Vector3RotateByQuaternion(local, b.Rotation))
}

func (b *Body) PointToLocal(world rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(world, b.Position), rl.QuaternionInvert(b.Rotation))
}

func (b *Body) VectorToWorld(local rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(local, b.Rotation)
}

func (b *Body) VectorToLocal(world rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(world, rl.QuaternionInvert(b.Rotation))
}

// VelocityAt returns the velocity of the body material at a world point.
func (b *Body) VelocityAt(worldPoint rl.Vector3) rl.Vector3 {
	r := rl.Vector3Subtract(worldPoint, b.Position)
	return rl.Vector3Add(b.Velocity, rl.Vector3CrossProduct(b.AngularVelocity, r))
}

// ApplyForce accumulates a world-space force at a world point. It takes
// effect at the next integration.
func (b *Body) ApplyForce(force, worldPoint rl.Vector3) {
	if b.Type != Dynamic {
		return
	}
	r := rl.Vector3Subtract(worldPoint, b.Position)
	b.Force = rl.Vector3Add(b.Force, force)
	b.Torque = rl.Vector3Add(b.Torque, rl.Vector3CrossProduct(r, force))
}

// ApplyImpulse changes velocities immediately.
func (b *Body) ApplyImpulse(impulse, worldPoint rl.Vector3) {
	if b.Type != Dynamic {
		return
	}
	r := rl.Vector3Subtract(worldPoint, b.Position)
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, b.invMass))
	b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, b.applyInvInertia(rl.Vector3CrossProduct(r, impulse)))
}

// applyInvInertia multiplies a world vector by the world inverse inertia tensor.
func (b *Body) applyInvInertia(v rl.Vector3) rl.Vector3 {
	local := b.VectorToLocal(v)
	local = rl.Vector3{
		X: local.X * b.invInertia.X,
		Y: local.Y * b.invInertia.Y,
		Z: local.Z * b.invInertia.Z,
	}
	return b.VectorToWorld(local)
}

func (b *Body) integrate(dt float32, gravity rl.Vector3) {
	if b.Type == Static {
		return
	}
	if b.Type == Dynamic {
		accel := rl.Vector3Add(gravity, rl.Vector3Scale(b.Force, b.invMass))
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(accel, dt))
		b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, rl.Vector3Scale(b.applyInvInertia(b.Torque), dt))

		b.Velocity = rl.Vector3Scale(b.Velocity, dampingFactor(b.LinearDamping, dt))
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, dampingFactor(b.AngularDamping, dt))
	}

	b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, dt))

	// q' = q + dt/2 * (w, 0) * q
	w := b.AngularVelocity
	spin := rl.QuaternionMultiply(rl.Quaternion{X: w.X, Y: w.Y, Z: w.Z, W: 0}, b.Rotation)
	half := dt * 0.5
	b.Rotation = rl.QuaternionNormalize(rl.Quaternion{
		X: b.Rotation.X + spin.X*half,
		Y: b.Rotation.Y + spin.Y*half,
		Z: b.Rotation.Z + spin.Z*half,
		W: b.Rotation.W + spin.W*half,
	})

	b.Force = rl.Vector3{}
	b.Torque = rl.Vector3{}
}

// Bounds returns the world AABB. Planes are unbounded and report ok=false.
func (b *Body) Bounds() (AABB, bool) {
	switch b.Shape.Kind {
	case ShapeSphere:
		r := b.Shape.Radius
		return NewAABBFromCenter(b.Position, rl.Vector3{X: 2 * r, Y: 2 * r, Z: 2 * r}), true
	case ShapeBox:
		obb := NewOBB(b.Position, b.Shape.HalfExtents, b.Rotation)
		return obb.Bounds(), true
	}
	return AABB{}, false
}

func dampingFactor(damping, dt float32) float32 {
	if damping <= 0 {
		return 1
	}
	return float32(math.Pow(float64(1-clamp(damping, 0, 1)), float64(dt)))
}

func invOrZero(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
