package grove

import "github.com/go-gl/mathgl/mgl32"

// CullSettings configures per-camera batch culling. Settings are read during
// evaluation; change them between frames only.
type CullSettings struct {
	// Enabled turns all culling tests on. When false every batch is drawn.
	Enabled bool
	// MaxViewDistance culls batches whose bounds center is farther than this
	// from the camera. Non-positive means unlimited.
	MaxViewDistance float32
	// CategoryMaxDistance adds per-category caps. The effective cap is the
	// smaller of the global and category caps when both are positive.
	CategoryMaxDistance map[Category]float32

	// FacingCull culls batches whose direction from the camera makes a dot
	// product with the camera forward below FacingDotMin.
	FacingCull   bool
	FacingDotMin float32

	// DistanceInShadowPass and FacingInShadowPass apply those tests to
	// shadow-pass cameras too. Frustum culling always applies.
	DistanceInShadowPass bool
	FacingInShadowPass   bool
}

// DefaultCullSettings returns culling at 300 units with tree leaves capped at
// 80 and grass at 120. Facing culling is off.
func DefaultCullSettings() CullSettings {
	return CullSettings{
		Enabled:         true,
		MaxViewDistance: 300,
		CategoryMaxDistance: map[Category]float32{
			CategoryTreeLeaves: 80,
			CategoryGrass:      120,
		},
		FacingDotMin: 0,
	}
}

// EffectiveDistance returns the distance cap for a category, or a
// non-positive value when the category is unlimited.
func (s *CullSettings) EffectiveDistance(c Category) float32 {
	global := s.MaxViewDistance
	cat := s.CategoryMaxDistance[c]
	switch {
	case global > 0 && cat > 0:
		return min(global, cat)
	case global > 0:
		return global
	case cat > 0:
		return cat
	}
	return -1
}

// CullReason records why a batch was not drawn.
type CullReason uint8

const (
	CullNone     CullReason = iota // visible
	CullFrustum                    // outside the view frustum or the camera is degenerate
	CullDistance                   // beyond the effective distance cap
	CullFacing                     // behind the facing threshold
	CullMissing                    // mesh or material no longer resolves
)

var cullReasonNames = [...]string{"none", "frustum", "distance", "facing", "missing"}

func (r CullReason) String() string {
	if int(r) < len(cullReasonNames) {
		return cullReasonNames[r]
	}
	return "unknown"
}

// cameraView is an immutable snapshot of the camera state needed to cull.
type cameraView struct {
	name    string
	pass    Pass
	pos     mgl32.Vec3
	forward mgl32.Vec3
	frustum Frustum
	valid   bool
}

func snapshotCamera(c *Camera) cameraView {
	f, ok := c.Frustum()
	return cameraView{
		name:    c.Name,
		pass:    c.Pass,
		pos:     c.Position,
		forward: c.Forward(),
		frustum: f,
		valid:   ok,
	}
}

// facingFallback is the direction used when a batch center coincides with
// the camera position.
var facingFallback = mgl32.Vec3{0, 0, 1}

// cullBatch runs the frustum, distance and facing tests in that order and
// returns the first failing reason. A degenerate camera culls everything, even
// with culling disabled.
func (s *CullSettings) cullBatch(v *cameraView, b *InstanceBatch) CullReason {
	if !v.valid {
		return CullFrustum
	}
	if !s.Enabled {
		return CullNone
	}
	if !v.frustum.IntersectsAABB(b.Bounds) {
		return CullFrustum
	}
	shadow := v.pass == PassShadow
	to := b.Bounds.Center().Sub(v.pos)
	lenSq := to.Dot(to)

	if !shadow || s.DistanceInShadowPass {
		if limit := s.EffectiveDistance(b.Category); limit > 0 && lenSq > limit*limit {
			return CullDistance
		}
	}

	if s.FacingCull && (!shadow || s.FacingInShadowPass) {
		dir := facingFallback
		if lenSq > 1e-6 {
			dir = to.Normalize()
		}
		if v.forward.Dot(dir) < s.FacingDotMin {
			return CullFacing
		}
	}
	return CullNone
}
