package grove

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Up is the world up axis. The ground plane is X/Z.
var Up = mgl32.Vec3{0, 1, 0}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// NewAABB returns the box spanning center ± size/2.
func NewAABB(center, size mgl32.Vec3) AABB {
	h := size.Mul(0.5)
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

// emptyAABB returns an inverted box that any Encapsulate call will replace.
func emptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box. Points on a face are inside.
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Intersects reports whether b and other overlap. Touching boxes intersect.
func (b AABB) Intersects(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Encapsulate grows the box so it contains p.
func (b AABB) Encapsulate(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return b.Encapsulate(other.Min).Encapsulate(other.Max)
}

// Expand grows every face outward by amount.
func (b AABB) Expand(amount float32) AABB {
	d := mgl32.Vec3{amount, amount, amount}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// IsEmpty reports whether the box is inverted on any axis.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float32
}

// Lerp interpolates between Min and Max.
func (r Range) Lerp(t float32) float32 {
	return r.Min + (r.Max-r.Min)*t
}

// Sample draws a value in [Min, Max] from rng.
func (r Range) Sample(rng *rand.Rand) float32 {
	return r.Lerp(float32(rng.Float64()))
}

// ShadowMode selects how a batch participates in shadow rendering.
type ShadowMode uint8

const (
	ShadowOn          ShadowMode = iota // casts shadows
	ShadowOff                           // never casts shadows
	ShadowTwoSided                      // casts from both faces (thin geometry)
	ShadowOnlyShadows                   // invisible in the main pass, shadow pass only
)

// Pass identifies the kind of render pass a camera drives.
type Pass uint8

const (
	PassMain   Pass = iota // regular color pass
	PassShadow             // shadow-map pass; distance and facing caps are exempt by default
)

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
