package grove

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the set of points p with Normal·p + D = 0. Points with a positive
// distance are on the inner side.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the clip planes of a view-projection matrix.
// ok is false when the matrix is degenerate (non-finite or with a collapsed
// plane), in which case the frustum must not be used.
func FrustumFromMatrix(m mgl32.Mat4) (f Frustum, ok bool) {
	if !isFiniteMat(m) {
		return f, false
	}
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	raw := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i, v := range raw {
		n := v.Vec3()
		l := n.Len()
		if !(l > 1e-6) || math.IsInf(float64(l), 0) {
			return Frustum{}, false
		}
		f[i] = Plane{Normal: n.Mul(1 / l), D: v[3] / l}
	}
	return f, true
}

// IntersectsAABB reports whether any part of b lies inside the frustum. It
// tests the box corner farthest along each plane normal, so it may keep boxes
// near frustum corners that are actually outside; it never drops a visible one.
func (f *Frustum) IntersectsAABB(b AABB) bool {
	for i := range f {
		pl := &f[i]
		var p mgl32.Vec3
		for a := 0; a < 3; a++ {
			if pl.Normal[a] >= 0 {
				p[a] = b.Max[a]
			} else {
				p[a] = b.Min[a]
			}
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside or on the frustum.
func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for i := range f {
		if f[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}
