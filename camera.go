package grove

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// moveAnim holds active move-to tweens for the camera position.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// cameraParams is the subset of camera state the cached matrices depend on.
type cameraParams struct {
	pos                   mgl32.Vec3
	yaw, pitch            float32
	fov, aspect, near, fr float32
}

// Camera is a perspective camera driving one render pass.
type Camera struct {
	// Name identifies the camera in stats and for Hub.TargetCamera.
	Name string
	// Position is the eye position in world space.
	Position mgl32.Vec3
	// Yaw and Pitch orient the camera in degrees. Yaw 0 looks down +Z and
	// grows towards +X; positive pitch looks up.
	Yaw, Pitch float32
	// FOV is the vertical field of view in degrees.
	FOV float32
	// Aspect is width / height.
	Aspect float32
	// Near and Far are the clip distances.
	Near, Far float32
	// Pass selects main or shadow-pass culling rules.
	Pass Pass
	// Enabled cameras are evaluated by Hub.DrawFrame.
	Enabled bool

	cached   cameraParams
	viewProj mgl32.Mat4
	frustum  Frustum
	valid    bool
	primed   bool

	move *moveAnim
}

// NewCamera creates an enabled main-pass camera with a 60 degree field of view
// and clip range [0.3, 1000].
func NewCamera(name string, aspect float32) *Camera {
	return &Camera{
		Name:    name,
		FOV:     60,
		Aspect:  aspect,
		Near:    0.3,
		Far:     1000,
		Enabled: true,
	}
}

// NewShadowCamera creates a camera for a shadow pass.
func NewShadowCamera(name string, aspect float32) *Camera {
	c := NewCamera(name, aspect)
	c.Pass = PassShadow
	return c
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return forwardFromYawPitch(c.Yaw, c.Pitch)
}

// LookAt turns the camera towards target. Looking at its own position is a
// no-op.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() < 1e-6 {
		return
	}
	c.Yaw, c.Pitch = yawPitchFromDir(d)
}

// MoveTo animates the camera position to target over duration seconds.
// A nil easeFn uses ease.InOutQuad.
func (c *Camera) MoveTo(target mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.InOutQuad
	}
	a := &moveAnim{}
	for i := 0; i < 3; i++ {
		a.tweens[i] = gween.New(c.Position[i], target[i], duration, easeFn)
	}
	c.move = a
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool { return c.move != nil }

// StopMoving cancels an active MoveTo animation, leaving the camera where it is.
func (c *Camera) StopMoving() { c.move = nil }

// Update advances the MoveTo animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.move == nil {
		return
	}
	all := true
	for i := 0; i < 3; i++ {
		if c.move.done[i] {
			continue
		}
		v, done := c.move.tweens[i].Update(dt)
		c.Position[i] = v
		c.move.done[i] = done
		all = all && done
	}
	if all {
		c.move = nil
	}
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	fwd := c.Forward()
	up := Up
	if math.Abs(float64(fwd.Dot(Up))) > 0.999 {
		// Looking straight up or down: use the yaw heading as up.
		up = forwardFromYawPitch(c.Yaw, 0)
	}
	return mgl32.LookAtV(c.Position, c.Position.Add(fwd), up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Valid reports whether the camera parameters describe a usable frustum.
func (c *Camera) Valid() bool {
	finite := func(v float32) bool {
		return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
	}
	for _, v := range c.Position {
		if !finite(v) {
			return false
		}
	}
	return finite(c.Yaw) && finite(c.Pitch) &&
		c.FOV > 0 && c.FOV < 180 &&
		c.Aspect > 0 && finite(c.Aspect) &&
		c.Near > 0 && c.Far > c.Near && finite(c.Far)
}

// ViewProjection returns the cached projection × view matrix, recomputing it
// when a camera parameter changed.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.refresh()
	return c.viewProj
}

// Frustum returns the clip planes of the camera. ok is false for a degenerate
// camera.
func (c *Camera) Frustum() (Frustum, bool) {
	c.refresh()
	return c.frustum, c.valid
}

func (c *Camera) params() cameraParams {
	return cameraParams{
		pos: c.Position, yaw: c.Yaw, pitch: c.Pitch,
		fov: c.FOV, aspect: c.Aspect, near: c.Near, fr: c.Far,
	}
}

func (c *Camera) refresh() {
	p := c.params()
	if c.primed && p == c.cached {
		return
	}
	c.cached = p
	c.primed = true
	c.valid = false
	c.frustum = Frustum{}
	if !c.Valid() {
		c.viewProj = mgl32.Mat4{}
		return
	}
	c.viewProj = c.Projection().Mul4(c.View())
	c.frustum, c.valid = FrustumFromMatrix(c.viewProj)
}
