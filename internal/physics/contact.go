package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// Penetration allowed before positional correction kicks in.
	contactSlop float32 = 0.005
	// Approach speed below which contacts do not bounce.
	restitutionThreshold float32 = 1.0
	maxBaumgarte         float32 = 0.8
)

// Contact is a single point where dynamic body A touches static or
// kinematic body B. Normal points from B toward A.
type Contact struct {
	A, B   *Body
	Point  rl.Vector3
	Normal rl.Vector3
	Depth  float32

	material       *ContactMaterial
	bounce         float32
	normalImpulse  float32
	tangentImpulse rl.Vector3
}

func canCollide(a, b *Body) bool {
	if a.CollisionGroup == 0 || b.CollisionGroup == 0 {
		return false
	}
	return a.CollisionGroup&b.CollisionMask != 0 && b.CollisionGroup&a.CollisionMask != 0
}

// findContacts gathers dynamic-versus-static/kinematic contacts.
// Dynamic pairs are not resolved.
func (w *World) findContacts(out []Contact) []Contact {
	for _, a := range w.bodies {
		if a.Type != Dynamic {
			continue
		}
		aBounds, aBounded := a.Bounds()
		for _, b := range w.bodies {
			if b.Type == Dynamic || !canCollide(a, b) {
				continue
			}
			if bBounds, ok := b.Bounds(); ok && aBounded && !aBounds.Intersects(bBounds) {
				continue
			}
			out = collide(out, a, b)
		}
	}
	return out
}

func collide(out []Contact, a, b *Body) []Contact {
	switch a.Shape.Kind {
	case ShapeBox:
		obb := NewOBB(a.Position, a.Shape.HalfExtents, a.Rotation)
		if b.Shape.Kind == ShapeBox && !obb.IntersectsOBB(NewOBB(b.Position, b.Shape.HalfExtents, b.Rotation)) {
			return out
		}
		for _, corner := range obb.Corners() {
			if c, ok := pointContact(corner, b); ok {
				c.A, c.B = a, b
				out = append(out, c)
			}
		}
	case ShapeSphere:
		if c, ok := sphereContact(a.Position, a.Shape.Radius, b); ok {
			c.A, c.B = a, b
			out = append(out, c)
		}
	}
	return out
}

// pointContact tests a single point of a dynamic box against b.
func pointContact(p rl.Vector3, b *Body) (Contact, bool) {
	switch b.Shape.Kind {
	case ShapePlane:
		n := b.VectorToWorld(rl.Vector3{Y: 1})
		height := rl.Vector3DotProduct(rl.Vector3Subtract(p, b.Position), n)
		if !(height < 0) {
			return Contact{}, false
		}
		return Contact{Point: p, Normal: n, Depth: -height}, true
	case ShapeBox:
		obb := NewOBB(b.Position, b.Shape.HalfExtents, b.Rotation)
		n, depth, inside := obb.Penetration(p)
		if !inside {
			return Contact{}, false
		}
		return Contact{Point: p, Normal: n, Depth: depth}, true
	case ShapeSphere:
		d := rl.Vector3Subtract(p, b.Position)
		dist := rl.Vector3Length(d)
		if dist >= b.Shape.Radius || dist < 1e-6 {
			return Contact{}, false
		}
		return Contact{Point: p, Normal: rl.Vector3Scale(d, 1/dist), Depth: b.Shape.Radius - dist}, true
	}
	return Contact{}, false
}

func sphereContact(center rl.Vector3, radius float32, b *Body) (Contact, bool) {
	switch b.Shape.Kind {
	case ShapePlane:
		n := b.VectorToWorld(rl.Vector3{Y: 1})
		height := rl.Vector3DotProduct(rl.Vector3Subtract(center, b.Position), n)
		if !(height < radius) {
			return Contact{}, false
		}
		point := rl.Vector3Subtract(center, rl.Vector3Scale(n, height))
		return Contact{Point: point, Normal: n, Depth: radius - height}, true
	case ShapeBox:
		obb := NewOBB(b.Position, b.Shape.HalfExtents, b.Rotation)
		closest := ClosestPointOnOBB(obb, center)
		d := rl.Vector3Subtract(center, closest)
		dist := rl.Vector3Length(d)
		if !(dist < radius) {
			return Contact{}, false
		}
		if dist < 1e-6 {
			n, depth, _ := obb.Penetration(center)
			return Contact{Point: center, Normal: n, Depth: radius + depth}, true
		}
		return Contact{Point: closest, Normal: rl.Vector3Scale(d, 1/dist), Depth: radius - dist}, true
	case ShapeSphere:
		d := rl.Vector3Subtract(center, b.Position)
		dist := rl.Vector3Length(d)
		sum := radius + b.Shape.Radius
		if dist >= sum || dist < 1e-6 {
			return Contact{}, false
		}
		n := rl.Vector3Scale(d, 1/dist)
		point := rl.Vector3Add(b.Position, rl.Vector3Scale(n, b.Shape.Radius))
		return Contact{Point: point, Normal: n, Depth: sum - dist}, true
	}
	return Contact{}, false
}

// solveContacts runs sequential impulses on velocities, then pushes each
// body out along its deepest contact.
func (w *World) solveContacts(contacts []Contact, dt float32) {
	if len(contacts) == 0 {
		return
	}

	for i := range contacts {
		c := &contacts[i]
		c.material = w.ContactMaterialFor(c.A.Material, c.B.Material)
		vn := rl.Vector3DotProduct(relativeVelocity(c), c.Normal)
		if vn < -restitutionThreshold {
			c.bounce = -c.material.Restitution * vn
		}
	}

	iterations := w.SolverIterations
	if iterations < 1 {
		iterations = 1
	}
	for it := 0; it < iterations; it++ {
		for i := range contacts {
			solveContact(&contacts[i])
		}
	}

	deepest := make(map[*Body]*Contact)
	for i := range contacts {
		c := &contacts[i]
		if d, ok := deepest[c.A]; !ok || c.Depth > d.Depth {
			deepest[c.A] = c
		}
	}
	for body, c := range deepest {
		beta := clamp(c.material.ContactEquationStiffness*dt*dt, 0, maxBaumgarte)
		correction := (c.Depth - contactSlop) * beta
		if correction > 0 {
			body.Position = rl.Vector3Add(body.Position, rl.Vector3Scale(c.Normal, correction))
		}
	}
}

func relativeVelocity(c *Contact) rl.Vector3 {
	return rl.Vector3Subtract(c.A.VelocityAt(c.Point), c.B.VelocityAt(c.Point))
}

func solveContact(c *Contact) {
	a := c.A
	r := rl.Vector3Subtract(c.Point, a.Position)

	vrel := relativeVelocity(c)
	vn := rl.Vector3DotProduct(vrel, c.Normal)
	k := effectiveMass(a, r, c.Normal)
	if k <= 0 {
		return
	}
	lambda := (c.bounce - vn) / k
	accumulated := c.normalImpulse + lambda
	if accumulated < 0 {
		accumulated = 0
	}
	lambda = accumulated - c.normalImpulse
	c.normalImpulse = accumulated
	a.ApplyImpulse(rl.Vector3Scale(c.Normal, lambda), c.Point)

	// Friction, limited by the friction cone.
	vrel = relativeVelocity(c)
	vn = rl.Vector3DotProduct(vrel, c.Normal)
	vt := rl.Vector3Subtract(vrel, rl.Vector3Scale(c.Normal, vn))
	speed := rl.Vector3Length(vt)
	if speed < 1e-6 {
		return
	}
	tangent := rl.Vector3Scale(vt, 1/speed)
	kt := effectiveMass(a, r, tangent)
	if kt <= 0 {
		return
	}
	candidate := rl.Vector3Add(c.tangentImpulse, rl.Vector3Scale(tangent, -speed/kt))
	maxFriction := c.material.Friction * c.normalImpulse
	if l := rl.Vector3Length(candidate); l > maxFriction {
		if l > 0 {
			candidate = rl.Vector3Scale(candidate, maxFriction/l)
		}
	}
	delta := rl.Vector3Subtract(candidate, c.tangentImpulse)
	c.tangentImpulse = candidate
	a.ApplyImpulse(delta, c.Point)
}
