package grove

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Preset is a complete world description loaded from YAML. Keys missing from
// the document keep the values of DefaultPreset.
type Preset struct {
	Name    string         `yaml:"name"`
	Seed    int64          `yaml:"seed"`
	Area    AreaPreset     `yaml:"area"`
	Grid    GridPreset     `yaml:"grid"`
	Terrain TerrainPreset  `yaml:"terrain"`
	Biome   Biome          `yaml:"biome"`
	Trees   CategoryPreset `yaml:"trees"`
	Rocks   CategoryPreset `yaml:"rocks"`
	Grass   CategoryPreset `yaml:"grass"`
	Foliage CategoryPreset `yaml:"foliage"`
	Culling CullPreset     `yaml:"culling"`
}

// AreaPreset is the world rectangle. Origin is its minimum corner.
type AreaPreset struct {
	Origin [3]float32 `yaml:"origin"`
	Size   [2]float32 `yaml:"size"`
	MinY   float32    `yaml:"min_y"`
	MaxY   float32    `yaml:"max_y"`
}

// GridPreset configures the chunk grid.
type GridPreset struct {
	Enabled bool `yaml:"enabled"`
	DimsX   int  `yaml:"dims_x"`
	DimsZ   int  `yaml:"dims_z"`
}

// TerrainPreset configures the procedural terrain built when the caller does
// not supply an environment.
type TerrainPreset struct {
	Enabled     bool    `yaml:"enabled"`
	Resolution  int     `yaml:"resolution"`
	HeightScale float32 `yaml:"height_scale"`
	WaterLevel  float32 `yaml:"water_level"`
	Water       bool    `yaml:"water"`
}

// Biome overrides per-category acceptance rules and scales every count.
type Biome struct {
	GlobalDensity     float32 `yaml:"global_density"`
	TreeMaxSlope      float32 `yaml:"tree_max_slope"`
	TreeMoistureBias  float32 `yaml:"tree_moisture_bias"`
	RockMinSlope      float32 `yaml:"rock_min_slope"`
	RockDrynessBias   float32 `yaml:"rock_dryness_bias"`
	GrassMaxSlope     float32 `yaml:"grass_max_slope"`
	GrassMoistureBias float32 `yaml:"grass_moisture_bias"`
	GrassMinSpawnProb float32 `yaml:"grass_min_spawn_prob"`
}

// DefaultBiome returns neutral density with the stock acceptance rules.
func DefaultBiome() Biome {
	return Biome{
		GlobalDensity:     1,
		TreeMaxSlope:      0.6,
		TreeMoistureBias:  0.65,
		RockMinSlope:      0.25,
		RockDrynessBias:   0.6,
		GrassMaxSlope:     0.55,
		GrassMoistureBias: 0.8,
		GrassMinSpawnProb: 0.12,
	}
}

// CategoryPreset holds the per-category knobs exposed in presets.
type CategoryPreset struct {
	Enabled    bool    `yaml:"enabled"`
	Count      int     `yaml:"count"`
	MinSpacing float32 `yaml:"min_spacing"`
	Effort     int     `yaml:"effort"`
	NearRadius float32 `yaml:"near_radius"`
	Variants   int     `yaml:"variants"`
}

func categoryPresetOf(cfg ScatterConfig) CategoryPreset {
	return CategoryPreset{
		Enabled:    true,
		Count:      cfg.Count,
		MinSpacing: cfg.MinSpacing,
		Effort:     cfg.Effort,
		NearRadius: cfg.NearRadius,
		Variants:   cfg.Variants,
	}
}

// CullPreset mirrors CullSettings with category names as keys.
type CullPreset struct {
	Enabled             bool               `yaml:"enabled"`
	MaxViewDistance     float32            `yaml:"max_view_distance"`
	CategoryMaxDistance map[string]float32 `yaml:"category_max_distance"`
	FacingCull          bool               `yaml:"facing_cull"`
	FacingDotMin        float32            `yaml:"facing_dot_min"`
	ShadowDistance      bool               `yaml:"shadow_distance"`
	ShadowFacing        bool               `yaml:"shadow_facing"`
}

// DefaultPreset returns a 160×160 world with every category enabled.
func DefaultPreset() Preset {
	cull := DefaultCullSettings()
	caps := make(map[string]float32, len(cull.CategoryMaxDistance))
	for c, d := range cull.CategoryMaxDistance {
		caps[c.String()] = d
	}
	return Preset{
		Name: "default",
		Seed: 12345,
		Area: AreaPreset{
			Origin: [3]float32{-80, 0, -80},
			Size:   [2]float32{160, 160},
			MinY:   -10,
			MaxY:   60,
		},
		Grid: GridPreset{Enabled: true, DimsX: 12, DimsZ: 12},
		Terrain: TerrainPreset{
			Enabled:     true,
			Resolution:  129,
			HeightScale: 25,
			WaterLevel:  4,
			Water:       true,
		},
		Biome:   DefaultBiome(),
		Trees:   categoryPresetOf(DefaultTreeConfig()),
		Rocks:   categoryPresetOf(DefaultRockConfig()),
		Grass:   categoryPresetOf(DefaultGrassConfig()),
		Foliage: categoryPresetOf(DefaultFoliageConfig()),
		Culling: CullPreset{
			Enabled:             cull.Enabled,
			MaxViewDistance:     cull.MaxViewDistance,
			CategoryMaxDistance: caps,
			FacingDotMin:        cull.FacingDotMin,
		},
	}
}

// LoadPreset reads and validates a YAML preset.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset decodes a YAML preset over DefaultPreset and validates it.
func ParsePreset(data []byte) (Preset, error) {
	p := DefaultPreset()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Marshal encodes the preset as YAML.
func (p *Preset) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate reports the first invalid setting, naming its YAML key.
func (p *Preset) Validate() error {
	if !(p.Area.Size[0] > 0) || !(p.Area.Size[1] > 0) {
		return fmt.Errorf("area.size must be positive")
	}
	if p.Area.MaxY <= p.Area.MinY {
		return fmt.Errorf("area.max_y must be greater than area.min_y")
	}
	if p.Grid.Enabled && (p.Grid.DimsX < 1 || p.Grid.DimsZ < 1) {
		return fmt.Errorf("grid dims must be at least 1x1")
	}
	if p.Terrain.Enabled && p.Terrain.Resolution < 2 {
		return fmt.Errorf("terrain.resolution must be at least 2")
	}
	if p.Biome.GlobalDensity < 0.1 || p.Biome.GlobalDensity > 3 {
		return fmt.Errorf("biome.global_density must be within [0.1, 3]")
	}
	unit := []struct {
		key string
		v   float32
	}{
		{"biome.tree_max_slope", p.Biome.TreeMaxSlope},
		{"biome.tree_moisture_bias", p.Biome.TreeMoistureBias},
		{"biome.rock_min_slope", p.Biome.RockMinSlope},
		{"biome.rock_dryness_bias", p.Biome.RockDrynessBias},
		{"biome.grass_max_slope", p.Biome.GrassMaxSlope},
		{"biome.grass_moisture_bias", p.Biome.GrassMoistureBias},
		{"biome.grass_min_spawn_prob", p.Biome.GrassMinSpawnProb},
	}
	for _, u := range unit {
		if u.v < 0 || u.v > 1 {
			return fmt.Errorf("%s must be within [0, 1]", u.key)
		}
	}
	for _, c := range p.categories() {
		if err := c.preset.validate(c.key); err != nil {
			return err
		}
	}
	for name, d := range p.Culling.CategoryMaxDistance {
		if _, err := ParseCategory(name); err != nil {
			return fmt.Errorf("culling.category_max_distance: unknown category %q", name)
		}
		if d < 0 {
			return fmt.Errorf("culling.category_max_distance.%s cannot be negative", name)
		}
	}
	if p.Culling.FacingDotMin < -1 || p.Culling.FacingDotMin > 1 {
		return fmt.Errorf("culling.facing_dot_min must be within [-1, 1]")
	}
	return nil
}

func (c *CategoryPreset) validate(key string) error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.Count < 0:
		return fmt.Errorf("%s.count cannot be negative", key)
	case c.MinSpacing < 0:
		return fmt.Errorf("%s.min_spacing cannot be negative", key)
	case c.Effort < 1:
		return fmt.Errorf("%s.effort must be at least 1", key)
	case c.NearRadius < 0:
		return fmt.Errorf("%s.near_radius cannot be negative", key)
	case c.Variants < 1:
		return fmt.Errorf("%s.variants must be at least 1", key)
	}
	return nil
}

type presetCategory struct {
	key    string
	preset *CategoryPreset
	base   func() ScatterConfig
}

func (p *Preset) categories() []presetCategory {
	return []presetCategory{
		{"trees", &p.Trees, DefaultTreeConfig},
		{"rocks", &p.Rocks, DefaultRockConfig},
		{"grass", &p.Grass, DefaultGrassConfig},
		{"foliage", &p.Foliage, DefaultFoliageConfig},
	}
}

// Center returns the world-space center of the area at Origin height.
func (p *Preset) Center() mgl32.Vec3 {
	o := p.Area.Origin
	return mgl32.Vec3{o[0] + p.Area.Size[0]*0.5, o[1], o[2] + p.Area.Size[1]*0.5}
}

// WorldBounds returns the area box spanning MinY to MaxY.
func (p *Preset) WorldBounds() AABB {
	o := p.Area.Origin
	return AABB{
		Min: mgl32.Vec3{o[0], p.Area.MinY, o[2]},
		Max: mgl32.Vec3{o[0] + p.Area.Size[0], p.Area.MaxY, o[2] + p.Area.Size[1]},
	}
}

// ScatterConfigs returns the scatter settings of every enabled category with
// the area, biome and density applied, in tree, rock, grass, foliage order.
func (p *Preset) ScatterConfigs() []ScatterConfig {
	var out []ScatterConfig
	for _, c := range p.categories() {
		if !c.preset.Enabled {
			continue
		}
		cfg := c.base()
		cfg.Origin = p.Center()
		cfg.AreaSize = p.Area.Size
		cfg.Count = int(math.Round(float64(float32(c.preset.Count) * p.Biome.GlobalDensity)))
		cfg.MinSpacing = c.preset.MinSpacing
		cfg.Effort = c.preset.Effort
		cfg.NearRadius = c.preset.NearRadius
		cfg.Variants = c.preset.Variants
		p.Biome.apply(&cfg)
		out = append(out, cfg)
	}
	return out
}

// apply overrides the acceptance rules of cfg's category.
func (b Biome) apply(cfg *ScatterConfig) {
	switch cfg.Category {
	case CategoryTreeWood:
		cfg.SlopeLimit = b.TreeMaxSlope
		cfg.Bias = b.TreeMoistureBias
	case CategoryRock:
		cfg.SlopeLimit = b.RockMinSlope
		cfg.Bias = b.RockDrynessBias
	case CategoryGrass:
		cfg.SlopeLimit = b.GrassMaxSlope
		cfg.Bias = b.GrassMoistureBias
		cfg.MinProbability = b.GrassMinSpawnProb
	case CategoryFoliageBranches:
		cfg.SlopeLimit = min(cfg.SlopeLimit, b.GrassMaxSlope*1.2)
	}
}

// CullSettings converts the culling section. Unknown category names were
// rejected by Validate and are ignored here.
func (p *Preset) CullSettings() CullSettings {
	s := CullSettings{
		Enabled:              p.Culling.Enabled,
		MaxViewDistance:      p.Culling.MaxViewDistance,
		CategoryMaxDistance:  make(map[Category]float32, len(p.Culling.CategoryMaxDistance)),
		FacingCull:           p.Culling.FacingCull,
		FacingDotMin:         p.Culling.FacingDotMin,
		DistanceInShadowPass: p.Culling.ShadowDistance,
		FacingInShadowPass:   p.Culling.ShadowFacing,
	}
	for name, d := range p.Culling.CategoryMaxDistance {
		if c, err := ParseCategory(name); err == nil {
			s.CategoryMaxDistance[c] = d
		}
	}
	return s
}

// TerrainConfig returns the terrain settings covering the area.
func (p *Preset) TerrainConfig() TerrainConfig {
	cfg := DefaultTerrainConfig()
	cfg.Seed = p.Seed
	cfg.Origin = mgl32.Vec3(p.Area.Origin)
	cfg.Size = p.Area.Size
	cfg.Resolution = p.Terrain.Resolution
	cfg.HeightScale = p.Terrain.HeightScale
	return cfg
}
