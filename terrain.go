package grove

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// TerrainConfig configures a procedural heightfield.
type TerrainConfig struct {
	Seed        int64
	Origin      mgl32.Vec3 // minimum corner; heights are added to Origin.Y
	Size        [2]float32 // X/Z extent
	Resolution  int        // samples per side
	HeightScale float32

	BaseScale   float32 // frequency of the first octave
	Octaves     int
	Persistence float32
	Lacunarity  float32

	WarpStrength float32
	WarpScale    float32

	SlopeBoost    float32 // multiplies the normalized slope before clamping
	MoistureBlend float32 // 0 uses inverse slope, 1 uses low-frequency noise
	MoistureScale float32
}

// DefaultTerrainConfig returns a 200×200 terrain of rolling hills up to 25
// units high.
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		Seed:          1234,
		Size:          [2]float32{200, 200},
		Resolution:    129,
		HeightScale:   25,
		BaseScale:     0.008,
		Octaves:       5,
		Persistence:   0.5,
		Lacunarity:    2,
		WarpStrength:  8,
		WarpScale:     0.02,
		SlopeBoost:    1,
		MoistureBlend: 0.4,
		MoistureScale: 0.006,
	}
}

// Terrain is a sampled heightfield with precomputed slope and moisture masks.
// It implements EnvironmentSampler and Ground. It is immutable after
// construction and safe for concurrent reads.
type Terrain struct {
	cfg      TerrainConfig
	res      int
	step     [2]float32
	heights  []float32
	slope    []float32
	moisture []float32
}

// NewTerrain samples the heightfield and its masks.
func NewTerrain(cfg TerrainConfig) *Terrain {
	res := max(2, cfg.Resolution)
	t := &Terrain{
		cfg:      cfg,
		res:      res,
		heights:  make([]float32, res*res),
		slope:    make([]float32, res*res),
		moisture: make([]float32, res*res),
	}
	t.step = [2]float32{cfg.Size[0] / float32(res-1), cfg.Size[1] / float32(res-1)}

	n := newNoiseField(cfg.Seed)
	warp := newNoiseField(cfg.Seed + 1)
	wet := newNoiseField(cfg.Seed + 2)

	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			wx := float32(x) * t.step[0]
			wz := float32(z) * t.step[1]
			if cfg.WarpStrength != 0 {
				dx := (warp.at(wx*cfg.WarpScale, wz*cfg.WarpScale) - 0.5) * 2 * cfg.WarpStrength
				dz := (warp.at((wx+17.3)*cfg.WarpScale, (wz-9.1)*cfg.WarpScale) - 0.5) * 2 * cfg.WarpStrength
				wx, wz = wx+dx, wz+dz
			}
			t.heights[z*res+x] = n.fbm(wx, wz, cfg.BaseScale, cfg.Octaves, cfg.Persistence, cfg.Lacunarity) * cfg.HeightScale
		}
	}

	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			dhx, dhz := t.gradient(x, z)
			s := float32(math.Atan(math.Sqrt(float64(dhx*dhx+dhz*dhz)))) / (math.Pi / 2)
			s = clamp01(clamp01(s) * cfg.SlopeBoost)
			wx := float32(x) * t.step[0]
			wz := float32(z) * t.step[1]
			m := wet.at(wx*cfg.MoistureScale+123.4, wz*cfg.MoistureScale-77.7)
			t.slope[z*res+x] = s
			t.moisture[z*res+x] = clamp01(lerp(1-s, m, cfg.MoistureBlend))
		}
	}
	return t
}

// gradient returns the height derivatives at a sample by central differences.
func (t *Terrain) gradient(x, z int) (dhx, dhz float32) {
	x0, x1 := max(0, x-1), min(t.res-1, x+1)
	z0, z1 := max(0, z-1), min(t.res-1, z+1)
	dhx = (t.heights[z*t.res+x1] - t.heights[z*t.res+x0]) / (float32(x1-x0) * t.step[0])
	dhz = (t.heights[z1*t.res+x] - t.heights[z0*t.res+x]) / (float32(z1-z0) * t.step[1])
	return dhx, dhz
}

// Bounds returns the world box of the terrain.
func (t *Terrain) Bounds() AABB {
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, h := range t.heights {
		lo = min(lo, h)
		hi = max(hi, h)
	}
	o := t.cfg.Origin
	return AABB{
		Min: mgl32.Vec3{o[0], o[1] + lo, o[2]},
		Max: mgl32.Vec3{o[0] + t.cfg.Size[0], o[1] + hi, o[2] + t.cfg.Size[1]},
	}
}

// uv maps p to fractional sample coordinates. ok is false outside the terrain.
func (t *Terrain) uv(p mgl32.Vec3) (u, v float32, ok bool) {
	u = (p[0] - t.cfg.Origin[0]) / t.step[0]
	v = (p[2] - t.cfg.Origin[2]) / t.step[1]
	last := float32(t.res - 1)
	if !(u >= 0 && u <= last && v >= 0 && v <= last) {
		return 0, 0, false
	}
	return u, v, true
}

// bilinear samples a per-vertex field at fractional coordinates.
func (t *Terrain) bilinear(field []float32, u, v float32) float32 {
	x0 := min(int(u), t.res-2)
	z0 := min(int(v), t.res-2)
	fx, fz := u-float32(x0), v-float32(z0)
	a := field[z0*t.res+x0]
	b := field[z0*t.res+x0+1]
	c := field[(z0+1)*t.res+x0]
	d := field[(z0+1)*t.res+x0+1]
	return lerp(lerp(a, b, fx), lerp(c, d, fx), fz)
}

// HeightAt returns the world height at p's X/Z. ok is false outside the
// terrain.
func (t *Terrain) HeightAt(p mgl32.Vec3) (float32, bool) {
	u, v, ok := t.uv(p)
	if !ok {
		return 0, false
	}
	return t.cfg.Origin[1] + t.bilinear(t.heights, u, v), true
}

// TrySample implements EnvironmentSampler.
func (t *Terrain) TrySample(p mgl32.Vec3) (slope01, moisture01 float32, ok bool) {
	u, v, ok := t.uv(p)
	if !ok {
		return 0, 0, false
	}
	return t.bilinear(t.slope, u, v), t.bilinear(t.moisture, u, v), true
}

// CastDown implements Ground. The ray hits when the surface below origin is
// within maxDistance.
func (t *Terrain) CastDown(origin mgl32.Vec3, maxDistance float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	u, v, ok := t.uv(origin)
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	h := t.cfg.Origin[1] + t.bilinear(t.heights, u, v)
	d := origin[1] - h
	if d < 0 || d > maxDistance {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	x := clampInt(int(u+0.5), 0, t.res-1)
	z := clampInt(int(v+0.5), 0, t.res-1)
	dhx, dhz := t.gradient(x, z)
	normal := mgl32.Vec3{-dhx, 1, -dhz}.Normalize()
	return mgl32.Vec3{origin[0], h, origin[2]}, normal, true
}

// noiseField is seeded 2D OpenSimplex noise normalized to [0, 1].
type noiseField struct {
	src opensimplex.Noise
}

func newNoiseField(seed int64) noiseField {
	return noiseField{src: opensimplex.NewNormalized(seed)}
}

func (n noiseField) at(x, z float32) float32 {
	return clamp01(float32(n.src.Eval2(float64(x), float64(z))))
}

// fbm sums octaves of noise and normalizes the result to [0, 1].
func (n noiseField) fbm(x, z, scale float32, octaves int, persistence, lacunarity float32) float32 {
	var total, norm float32
	amp, freq := float32(1), float32(1)
	for range max(1, octaves) {
		total += n.at(x*scale*freq, z*scale*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}
