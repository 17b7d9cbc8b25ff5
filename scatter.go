package grove

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// SlopeMode selects which side of SlopeLimit is rejected.
type SlopeMode uint8

const (
	SlopeMax SlopeMode = iota // reject slopes above the limit (trees, grass, foliage)
	SlopeMin                  // reject slopes below the limit (rocks)
)

// AcceptanceMode selects how moisture turns into a spawn probability.
type AcceptanceMode uint8

const (
	AcceptMoisture     AcceptanceMode = iota // p = max(MinProbability, lerp(1, m, Bias))
	AcceptDryness                            // p = max(MinProbability, lerp(1, 1-m, Bias))
	AcceptMoistureBand                       // reject when |m-BandCenter| > BandWidth/2, else p = 1
	AcceptAlways                             // p = 1
)

// Rejection reasons counted by ScatterStats.
type Rejection uint8

const (
	RejectSpacing     Rejection = iota // too close to an accepted placement
	RejectSlope                        // slope outside the allowed side of the limit
	RejectProbability                  // lost the moisture/dryness acceptance draw
	RejectMoisture                     // moisture outside the band
	RejectExcluded                     // inside an exclusion region

	rejectionCount
)

var rejectionNames = [rejectionCount]string{"spacing", "slope", "probability", "moisture", "excluded"}

func (r Rejection) String() string {
	if r < rejectionCount {
		return rejectionNames[r]
	}
	return "unknown"
}

// ScatterConfig holds the settings of one category's scatter run.
type ScatterConfig struct {
	Category   Category
	SeedOffset int64 // added to the world seed

	Origin     mgl32.Vec3 // center of the scatter rectangle
	AreaSize   [2]float32 // X/Z extent of the scatter rectangle
	Count      int        // target number of placements
	MinSpacing float32    // minimum X/Z distance between placements
	Effort     int        // attempt budget multiplier (K); attempts <= Count*Effort

	Snap           bool    // snap to the ground via Ground.CastDown
	RayStartHeight float32 // ray origin height above the candidate
	RayMaxDistance float32

	SlopeMode  SlopeMode
	SlopeLimit float32

	Acceptance      AcceptanceMode
	Bias            float32 // 0 ignores moisture, 1 uses it as the probability directly
	MinProbability  float32 // probability floor for AcceptMoisture and AcceptDryness
	BandCenter      float32
	BandWidth       float32
	NeutralMoisture float32 // moisture used when the environment has no data
	FlatWhenNoData  bool    // use slope 0 instead of the ground normal when there is no data

	Variants   int     // number of mesh variants to choose from
	Families   int     // variants are split into this many contiguous families; 0 or 1 means one per variant
	VariantMix float32 // probability of the environment-weighted family choice

	Scale       Range // uniform scale
	NonUniform  bool  // use WidthRange on X/Z and HeightRange on Y instead of Scale
	WidthRange  Range
	HeightRange Range
	YawRange    Range   // degrees
	Tilt        float32 // max tilt from vertical on X and Z, degrees

	NearRadius float32 // placements within this distance of Origin are near-field
}

// Placement is one accepted candidate.
type Placement struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees around Up
	TiltX    float32 // degrees
	TiltZ    float32 // degrees
	Scale    mgl32.Vec3
	Variant  int
	Near     bool // within NearRadius; materialized individually instead of instanced
	Slope    float32
	Moisture float32
}

// Matrix returns the instance transform of the placement.
func (p Placement) Matrix() mgl32.Mat4 {
	return composeTRS(p.Position, p.Yaw, p.TiltX, p.TiltZ, p.Scale)
}

// MaxScale returns the largest axis scale.
func (p Placement) MaxScale() float32 {
	return max(p.Scale[0], p.Scale[1], p.Scale[2])
}

// ScatterStats reports how a scatter run spent its attempt budget.
type ScatterStats struct {
	Target   int
	Attempts int
	Accepted int
	Near     int
	NoData   int // candidates sampled without environment data
	Missed   int // snap requested but the ground ray found nothing
	Rejected [rejectionCount]int
}

// Shortfall returns how many placements the run failed to produce.
func (s ScatterStats) Shortfall() int {
	return max(0, s.Target-s.Accepted)
}

// RejectedBy returns the number of candidates rejected for reason r.
func (s ScatterStats) RejectedBy(r Rejection) int {
	if r >= rejectionCount {
		return 0
	}
	return s.Rejected[r]
}

// ScatterResult is the output of one scatter run.
type ScatterResult struct {
	Placements []Placement
	Stats      ScatterStats
}

// ScatterEngine performs constrained rejection sampling for one category.
// Collaborators may be nil: without an Environment every candidate uses the
// no-data fallback; without Ground nothing is snapped.
type ScatterEngine struct {
	Config      ScatterConfig
	Environment EnvironmentSampler
	Ground      Ground
	Exclusions  []Exclusion
}

// NewScatterEngine creates an engine for cfg with the given collaborators.
func NewScatterEngine(cfg ScatterConfig, env EnvironmentSampler, ground Ground, exclusions ...Exclusion) *ScatterEngine {
	return &ScatterEngine{Config: cfg, Environment: env, Ground: ground, Exclusions: exclusions}
}

// newRand returns the generator for a run. Equal seeds give equal streams.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// Run scatters placements for worldSeed. The result depends only on the seed,
// the config and the collaborators' answers.
//
// Each attempt consumes random draws in a fixed order: X, Z, the acceptance
// draw (moisture and dryness modes only), then for accepted candidates the
// family mix draw, family, member, scale, yaw and tilt.
func (e *ScatterEngine) Run(worldSeed int64) ScatterResult {
	cfg := e.Config
	rng := newRand(worldSeed + cfg.SeedOffset)

	target := max(0, cfg.Count)
	effort := max(1, cfg.Effort)
	maxAttempts := target * effort

	res := ScatterResult{Stats: ScatterStats{Target: target}}
	if target == 0 {
		return res
	}
	res.Placements = make([]Placement, 0, target)

	halfX := cfg.AreaSize[0] * 0.5
	halfZ := cfg.AreaSize[1] * 0.5
	spacing := newSpacingIndex(-halfX, -halfZ, cfg.MinSpacing)
	stats := &res.Stats

	for stats.Accepted < target && stats.Attempts < maxAttempts {
		stats.Attempts++

		lx := float32(rng.Float64()-0.5) * cfg.AreaSize[0]
		lz := float32(rng.Float64()-0.5) * cfg.AreaSize[1]

		if spacing.conflicts(lx, lz) {
			stats.Rejected[RejectSpacing]++
			continue
		}

		pos := cfg.Origin.Add(mgl32.Vec3{lx, 0, lz})
		normal := Up
		if cfg.Snap && e.Ground != nil {
			from := pos.Add(mgl32.Vec3{0, cfg.RayStartHeight, 0})
			if hit, n, ok := e.Ground.CastDown(from, cfg.RayMaxDistance); ok {
				pos = hit
				normal = n
			} else {
				stats.Missed++
			}
		}

		slope, moisture, ok := float32(0), cfg.NeutralMoisture, false
		if e.Environment != nil {
			slope, moisture, ok = e.Environment.TrySample(pos)
		}
		if !ok {
			stats.NoData++
			moisture = cfg.NeutralMoisture
			if cfg.FlatWhenNoData {
				slope = 0
			} else {
				slope = 1 - clamp01(normal.Dot(Up))
			}
		}

		if !slopeAllowed(cfg.SlopeMode, cfg.SlopeLimit, slope) {
			stats.Rejected[RejectSlope]++
			continue
		}

		switch cfg.Acceptance {
		case AcceptMoisture, AcceptDryness:
			p := spawnProbability(cfg, moisture)
			if rng.Float64() > float64(p) {
				stats.Rejected[RejectProbability]++
				continue
			}
		case AcceptMoistureBand:
			if abs32(moisture-cfg.BandCenter) > cfg.BandWidth*0.5 {
				stats.Rejected[RejectMoisture]++
				continue
			}
		}

		if e.excluded(pos) {
			stats.Rejected[RejectExcluded]++
			continue
		}

		spacing.insert(lx, lz)

		pl := Placement{
			Position: pos,
			Variant:  chooseVariant(rng, cfg, slope, moisture),
			Slope:    slope,
			Moisture: moisture,
		}
		if cfg.NonUniform {
			w := cfg.WidthRange.Sample(rng)
			h := cfg.HeightRange.Sample(rng)
			pl.Scale = mgl32.Vec3{w, h, w}
		} else {
			s := cfg.Scale.Sample(rng)
			pl.Scale = mgl32.Vec3{s, s, s}
		}
		pl.Yaw = cfg.YawRange.Sample(rng)
		if cfg.Tilt > 0 {
			pl.TiltX = float32(rng.Float64()-0.5) * cfg.Tilt * 2
			pl.TiltZ = float32(rng.Float64()-0.5) * cfg.Tilt * 2
		}
		if pos.Sub(cfg.Origin).Len() <= cfg.NearRadius {
			pl.Near = true
			stats.Near++
		}

		res.Placements = append(res.Placements, pl)
		stats.Accepted++
	}
	return res
}

func (e *ScatterEngine) excluded(p mgl32.Vec3) bool {
	for _, ex := range e.Exclusions {
		if ex != nil && ex.Contains(p) {
			return true
		}
	}
	return false
}

func slopeAllowed(mode SlopeMode, limit, slope float32) bool {
	if mode == SlopeMin {
		return slope >= limit
	}
	return slope <= limit
}

// spawnProbability maps moisture to an acceptance probability for the
// moisture and dryness modes.
func spawnProbability(cfg ScatterConfig, moisture float32) float32 {
	m := clamp01(moisture)
	if cfg.Acceptance == AcceptDryness {
		m = 1 - m
	}
	return max(cfg.MinProbability, lerp(1, m, cfg.Bias))
}

// chooseVariant picks a family either by environment weight (with probability
// VariantMix) or uniformly, then a member uniformly within the family. Family
// f owns variants [f*n/families, (f+1)*n/families), so every variant belongs
// to exactly one family.
func chooseVariant(rng *rand.Rand, cfg ScatterConfig, slope, moisture float32) int {
	n := max(1, cfg.Variants)
	families := n
	if cfg.Families > 1 && cfg.Families < n {
		families = cfg.Families
	}

	mixed := cfg.VariantMix > 0 && rng.Float64() < float64(cfg.VariantMix)
	var family int
	switch {
	case families == 1:
		family = 0
	case mixed:
		w := clamp01(moisture)*0.7 + (1-clamp01(slope))*0.3
		family = clampInt(int(math.Floor(float64(w*float32(families-1)))), 0, families-1)
	default:
		family = rng.IntN(families)
	}
	lo := family * n / families
	hi := (family + 1) * n / families
	if hi-lo == 1 {
		return lo
	}
	return lo + rng.IntN(hi-lo)
}

// DefaultTreeConfig returns the tree settings: 600 trees over 160×160 with
// 3.2 spacing, avoiding slopes above 0.6 and favouring moist ground.
func DefaultTreeConfig() ScatterConfig {
	return ScatterConfig{
		Category:        CategoryTreeWood,
		SeedOffset:      11,
		AreaSize:        [2]float32{160, 160},
		Count:           600,
		MinSpacing:      3.2,
		Effort:          40,
		Snap:            true,
		RayStartHeight:  50,
		RayMaxDistance:  200,
		SlopeMode:       SlopeMax,
		SlopeLimit:      0.6,
		Acceptance:      AcceptMoisture,
		Bias:            0.65,
		NeutralMoisture: 1,
		Variants:        6,
		Scale:           Range{Min: 0.9, Max: 1.35},
		YawRange:        Range{Min: 0, Max: 360},
		NearRadius:      28,
	}
}

// DefaultRockConfig returns the rock settings: 1200 rocks that prefer steep,
// dry ground.
func DefaultRockConfig() ScatterConfig {
	return ScatterConfig{
		Category:        CategoryRock,
		SeedOffset:      22,
		AreaSize:        [2]float32{160, 160},
		Count:           1200,
		MinSpacing:      1.8,
		Effort:          40,
		Snap:            true,
		RayStartHeight:  50,
		RayMaxDistance:  200,
		SlopeMode:       SlopeMin,
		SlopeLimit:      0.25,
		Acceptance:      AcceptDryness,
		Bias:            0.6,
		NeutralMoisture: 0.5,
		Variants:        6,
		Scale:           Range{Min: 0.8, Max: 1.6},
		YawRange:        Range{Min: 0, Max: 360},
		NearRadius:      25,
	}
}

// DefaultGrassConfig returns the grass settings: 12000 thin blades with a
// probability floor so dry ground keeps some cover.
func DefaultGrassConfig() ScatterConfig {
	return ScatterConfig{
		Category:        CategoryGrass,
		SeedOffset:      33,
		AreaSize:        [2]float32{160, 160},
		Count:           12000,
		MinSpacing:      0.6,
		Effort:          25,
		Snap:            true,
		RayStartHeight:  50,
		RayMaxDistance:  200,
		SlopeMode:       SlopeMax,
		SlopeLimit:      0.55,
		Acceptance:      AcceptMoisture,
		Bias:            0.8,
		MinProbability:  0.12,
		NeutralMoisture: 1,
		FlatWhenNoData:  true,
		Variants:        1,
		NonUniform:      true,
		WidthRange:      Range{Min: 0.04, Max: 0.07},
		HeightRange:     Range{Min: 0.6, Max: 1.2},
		YawRange:        Range{Min: 0, Max: 360},
	}
}

// DefaultFoliageConfig returns the plant settings: 800 plants in a moisture
// band, two families of four variants, slightly tilted.
func DefaultFoliageConfig() ScatterConfig {
	return ScatterConfig{
		Category:        CategoryFoliageBranches,
		SeedOffset:      44,
		AreaSize:        [2]float32{160, 160},
		Count:           800,
		MinSpacing:      0.8,
		Effort:          30,
		Snap:            true,
		RayStartHeight:  50,
		RayMaxDistance:  200,
		SlopeMode:       SlopeMax,
		SlopeLimit:      0.7,
		Acceptance:      AcceptMoistureBand,
		BandCenter:      0.5,
		BandWidth:       0.3,
		NeutralMoisture: 0.5,
		Variants:        8,
		Families:        2,
		VariantMix:      0.5,
		Scale:           Range{Min: 0.7, Max: 1.3},
		YawRange:        Range{Min: 0, Max: 360},
		Tilt:            5,
		NearRadius:      15,
	}
}
