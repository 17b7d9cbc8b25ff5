package grove

import "github.com/go-gl/mathgl/mgl32"

// EnvironmentSampler reports normalized terrain masks at a world position.
// ok is false when the sampler has no data for p.
type EnvironmentSampler interface {
	TrySample(p mgl32.Vec3) (slope01, moisture01 float32, ok bool)
}

// Ground answers downward ray casts used to snap placements to a surface.
type Ground interface {
	CastDown(origin mgl32.Vec3, maxDistance float32) (point, normal mgl32.Vec3, ok bool)
}

// Exclusion is a region where nothing may be placed, such as a water body.
type Exclusion interface {
	Contains(p mgl32.Vec3) bool
}

// EnvironmentFunc adapts a function to EnvironmentSampler.
type EnvironmentFunc func(p mgl32.Vec3) (slope01, moisture01 float32, ok bool)

// TrySample calls f(p).
func (f EnvironmentFunc) TrySample(p mgl32.Vec3) (float32, float32, bool) { return f(p) }

// GroundFunc adapts a function to Ground.
type GroundFunc func(origin mgl32.Vec3, maxDistance float32) (point, normal mgl32.Vec3, ok bool)

// CastDown calls f(origin, maxDistance).
func (f GroundFunc) CastDown(origin mgl32.Vec3, maxDistance float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	return f(origin, maxDistance)
}

// ExclusionFunc adapts a predicate to Exclusion.
type ExclusionFunc func(p mgl32.Vec3) bool

// Contains calls f(p).
func (f ExclusionFunc) Contains(p mgl32.Vec3) bool { return f(p) }

// FlatGround is an infinite horizontal plane at Height.
type FlatGround struct {
	Height float32
}

// CastDown hits the plane when it lies within maxDistance below origin.
func (g FlatGround) CastDown(origin mgl32.Vec3, maxDistance float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	d := origin[1] - g.Height
	if d < 0 || d > maxDistance {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return mgl32.Vec3{origin[0], g.Height, origin[2]}, Up, true
}

// CircleExclusion excludes a vertical cylinder of Radius around Center on X/Z.
type CircleExclusion struct {
	Center mgl32.Vec3
	Radius float32
}

// Contains reports whether p is within Radius of Center on the ground plane.
func (c CircleExclusion) Contains(p mgl32.Vec3) bool {
	dx := p[0] - c.Center[0]
	dz := p[2] - c.Center[2]
	return dx*dx+dz*dz <= c.Radius*c.Radius
}

// WaterLevel excludes every position at or below Level, limited to Bounds on
// X/Z when Bounds is non-empty.
type WaterLevel struct {
	Level  float32
	Bounds AABB
}

// Contains reports whether p is submerged.
func (w WaterLevel) Contains(p mgl32.Vec3) bool {
	if p[1] > w.Level {
		return false
	}
	if w.Bounds.IsEmpty() || w.Bounds.Size() == (mgl32.Vec3{}) {
		return true
	}
	return p[0] >= w.Bounds.Min[0] && p[0] <= w.Bounds.Max[0] &&
		p[2] >= w.Bounds.Min[2] && p[2] <= w.Bounds.Max[2]
}
