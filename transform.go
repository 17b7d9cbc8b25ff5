package grove

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// identityTransform is the identity instance matrix.
var identityTransform = mgl32.Ident4()

// composeTRS builds an instance matrix from a translation, Euler rotation in
// degrees and a per-axis scale.
//
// Composition order:
//
//	Scale -> RotateZ(tiltZ) -> RotateX(tiltX) -> RotateY(yaw) -> Translate
func composeTRS(pos mgl32.Vec3, yawDeg, tiltXDeg, tiltZDeg float32, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(pos[0], pos[1], pos[2])
	if yawDeg != 0 {
		m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(yawDeg)))
	}
	if tiltXDeg != 0 {
		m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(tiltXDeg)))
	}
	if tiltZDeg != 0 {
		m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(tiltZDeg)))
	}
	return m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// translationOf returns the instance origin stored in m.
func translationOf(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// maxScaleOf returns the largest axis scale encoded in m, measured as the
// length of its basis columns.
func maxScaleOf(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return max(sx, sy, sz)
}

// isFiniteMat reports whether every element of m is a finite number.
func isFiniteMat(m mgl32.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// forwardFromYawPitch returns the unit view direction for yaw and pitch in
// degrees. Yaw 0 looks down +Z and grows towards +X; positive pitch looks up.
func forwardFromYawPitch(yawDeg, pitchDeg float32) mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(yawDeg))
	pitch := float64(mgl32.DegToRad(pitchDeg))
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	return mgl32.Vec3{float32(sy * cp), float32(sp), float32(cy * cp)}
}

// yawPitchFromDir is the inverse of forwardFromYawPitch. A zero vector yields
// (0, 0).
func yawPitchFromDir(d mgl32.Vec3) (yawDeg, pitchDeg float32) {
	l := d.Len()
	if l < 1e-6 {
		return 0, 0
	}
	d = d.Mul(1 / l)
	yaw := math.Atan2(float64(d[0]), float64(d[2]))
	pitch := math.Asin(float64(max(-1, min(1, d[1]))))
	return mgl32.RadToDeg(float32(yaw)), mgl32.RadToDeg(float32(pitch))
}
