package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Body     *Body
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// RayOptions filters the bodies a ray may hit.
type RayOptions struct {
	Skip *Body  // typically the body casting the ray
	Mask uint32 // 0 means every collision group
}

func (o RayOptions) accepts(b *Body) bool {
	if b == o.Skip || b.CollisionGroup == 0 {
		return false
	}
	return o.Mask == 0 || b.CollisionGroup&o.Mask != 0
}

// RaycastClosest returns the nearest hit along direction within maxDistance.
// Bodies are tested in registration order; ties keep the earlier body.
func (w *World) RaycastClosest(origin, direction rl.Vector3, maxDistance float32, opts RayOptions) (RaycastHit, bool) {
	length := rl.Vector3Length(direction)
	if length < 1e-8 || maxDistance <= 0 || !IsFiniteVector(origin) || !IsFiniteVector(direction) {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Scale(direction, 1/length)

	segment := NewAABBFromSegment(origin, rl.Vector3Add(origin, rl.Vector3Scale(direction, maxDistance)))

	var closestHit RaycastHit
	closestHit.Distance = maxDistance
	hit := false

	for _, body := range w.bodies {
		if !opts.accepts(body) {
			continue
		}
		if bounds, ok := body.Bounds(); ok && !bounds.Intersects(segment) {
			continue
		}

		var hitInfo RaycastHit
		var ok bool
		switch body.Shape.Kind {
		case ShapePlane:
			hitInfo, ok = raycastPlane(origin, direction, body, maxDistance)
		case ShapeBox:
			hitInfo, ok = raycastBox(origin, direction, body, maxDistance)
		case ShapeSphere:
			hitInfo, ok = raycastSphere(origin, direction, body, maxDistance)
		}
		if ok && (!hit || hitInfo.Distance < closestHit.Distance) {
			closestHit = hitInfo
			closestHit.Body = body
			hit = true
		}
	}

	return closestHit, hit
}

// raycastPlane only hits the front face.
func raycastPlane(origin, direction rl.Vector3, body *Body, maxDistance float32) (RaycastHit, bool) {
	normal := body.VectorToWorld(rl.Vector3{Y: 1})
	denom := rl.Vector3DotProduct(normal, direction)
	if denom > -1e-8 {
		return RaycastHit{}, false
	}
	height := rl.Vector3DotProduct(rl.Vector3Subtract(origin, body.Position), normal)
	if height < 0 {
		return RaycastHit{}, false
	}
	t := -height / denom
	if t > maxDistance {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

// raycastBox runs the slab test in the box's local frame. A ray starting
// inside the box hits at distance zero facing back along the ray.
func raycastBox(origin, direction rl.Vector3, body *Body, maxDistance float32) (RaycastHit, bool) {
	o := body.PointToLocal(origin)
	d := body.VectorToLocal(direction)
	h := body.Shape.HalfExtents

	tmin := float32(-1e30)
	tmax := float32(1e30)
	var nearAxis int
	var nearSign float32

	slab := func(axis int, o, d, h float32) bool {
		if absf(d) < 1e-8 {
			return o >= -h && o <= h
		}
		t1 := (-h - o) / d
		t2 := (h - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			nearAxis = axis
			nearSign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !slab(0, o.X, d.X, h.X) || !slab(1, o.Y, d.Y, h.Y) || !slab(2, o.Z, d.Z, h.Z) {
		return RaycastHit{}, false
	}
	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	if tmin < 0 {
		return RaycastHit{Point: origin, Normal: rl.Vector3Negate(direction), Distance: 0}, true
	}

	var localNormal rl.Vector3
	switch nearAxis {
	case 0:
		localNormal.X = nearSign
	case 1:
		localNormal.Y = nearSign
	default:
		localNormal.Z = nearSign
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, tmin))
	return RaycastHit{Point: point, Normal: body.VectorToWorld(localNormal), Distance: tmin}, true
}

func raycastSphere(origin, direction rl.Vector3, body *Body, maxDistance float32) (RaycastHit, bool) {
	center := body.Position
	radius := body.Shape.Radius

	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	root := sqrtf(discriminant)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
