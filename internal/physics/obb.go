package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// NewOBB creates an OBB from center, half extents and orientation.
func NewOBB(center, halfSize rl.Vector3, rotation rl.Quaternion) OBB {
	return OBB{
		Center:   center,
		HalfSize: halfSize,
		Axes: [3]rl.Vector3{
			rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, rotation),
			rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, rotation),
			rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, rotation),
		},
	}
}

func (o OBB) half(i int) float32 {
	switch i {
	case 0:
		return o.HalfSize.X
	case 1:
		return o.HalfSize.Y
	}
	return o.HalfSize.Z
}

// Corners returns the eight world-space vertices.
func (o OBB) Corners() [8]rl.Vector3 {
	var corners [8]rl.Vector3
	for i := 0; i < 8; i++ {
		sx, sy, sz := float32(-1), float32(-1), float32(-1)
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&4 != 0 {
			sz = 1
		}
		c := o.Center
		c = rl.Vector3Add(c, rl.Vector3Scale(o.Axes[0], sx*o.HalfSize.X))
		c = rl.Vector3Add(c, rl.Vector3Scale(o.Axes[1], sy*o.HalfSize.Y))
		c = rl.Vector3Add(c, rl.Vector3Scale(o.Axes[2], sz*o.HalfSize.Z))
		corners[i] = c
	}
	return corners
}

// Bounds returns the world AABB enclosing the box.
func (o OBB) Bounds() AABB {
	var extent rl.Vector3
	for i := 0; i < 3; i++ {
		h := o.half(i)
		extent.X += absf(o.Axes[i].X) * h
		extent.Y += absf(o.Axes[i].Y) * h
		extent.Z += absf(o.Axes[i].Z) * h
	}
	return AABB{
		Min: rl.Vector3Subtract(o.Center, extent),
		Max: rl.Vector3Add(o.Center, extent),
	}
}

// IntersectsOBB tests if two OBBs intersect using the Separating Axis Theorem
func (a OBB) IntersectsOBB(b OBB) bool {
	t := rl.Vector3Subtract(b.Center, a.Center)

	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, a.Axes[i], t) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, b.Axes[i], t) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := rl.Vector3CrossProduct(a.Axes[i], b.Axes[j])
			// Skip near-zero axes (parallel edges)
			if rl.Vector3Length(axis) > 0.0001 {
				if !overlapOnAxis(a, b, rl.Vector3Normalize(axis), t) {
					return false
				}
			}
		}
	}
	return true
}

// overlapOnAxis checks if two OBBs overlap when projected onto a given axis
func overlapOnAxis(a, b OBB, axis, t rl.Vector3) bool {
	aProjection := a.projectedRadius(axis)
	bProjection := b.projectedRadius(axis)
	distance := absf(rl.Vector3DotProduct(t, axis))
	return distance <= aProjection+bProjection
}

func (o OBB) projectedRadius(axis rl.Vector3) float32 {
	return o.HalfSize.X*absf(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*absf(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*absf(rl.Vector3DotProduct(o.Axes[2], axis))
}

// Penetration reports whether point lies inside the box and, if so, the
// outward face normal of the nearest face and the depth below it.
func (o OBB) Penetration(point rl.Vector3) (normal rl.Vector3, depth float32, inside bool) {
	local := rl.Vector3Subtract(point, o.Center)
	depth = -1
	for i := 0; i < 3; i++ {
		d := rl.Vector3DotProduct(local, o.Axes[i])
		h := o.half(i)
		if d > h || d < -h {
			return rl.Vector3{}, 0, false
		}
		if pos := h - d; depth < 0 || pos < depth {
			depth = pos
			normal = o.Axes[i]
		}
		if neg := h + d; neg < depth {
			depth = neg
			normal = rl.Vector3Negate(o.Axes[i])
		}
	}
	return normal, depth, true
}

// ClosestPointOnOBB returns the closest point on (or in) the OBB to the given point
func ClosestPointOnOBB(o OBB, point rl.Vector3) rl.Vector3 {
	local := rl.Vector3Subtract(point, o.Center)
	result := o.Center
	for i := 0; i < 3; i++ {
		h := o.half(i)
		d := clamp(rl.Vector3DotProduct(local, o.Axes[i]), -h, h)
		result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[i], d))
	}
	return result
}
