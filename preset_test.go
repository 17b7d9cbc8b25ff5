package grove

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPresetValid(t *testing.T) {
	p := DefaultPreset()
	if err := p.Validate(); err != nil {
		t.Fatalf("DefaultPreset invalid: %v", err)
	}
	if p.Trees.Count != 600 || p.Rocks.Count != 1200 || p.Grass.Count != 12000 || p.Foliage.Count != 800 {
		t.Errorf("default counts = %d/%d/%d/%d", p.Trees.Count, p.Rocks.Count, p.Grass.Count, p.Foliage.Count)
	}
	if len(p.ScatterConfigs()) != 4 {
		t.Errorf("ScatterConfigs() = %d, want 4", len(p.ScatterConfigs()))
	}
}

func TestParsePresetOverridesDefaults(t *testing.T) {
	p, err := ParsePreset([]byte(`
name: small
seed: 7
biome:
  global_density: 0.5
  tree_max_slope: 0.4
trees:
  count: 101
rocks:
  enabled: false
`))
	if err != nil {
		t.Fatalf("ParsePreset: %v", err)
	}
	if p.Name != "small" || p.Seed != 7 {
		t.Errorf("name/seed = %q/%d", p.Name, p.Seed)
	}
	if p.Grass.Count != 12000 || p.Trees.MinSpacing != 3.2 {
		t.Error("keys missing from the document lost their defaults")
	}

	cfgs := p.ScatterConfigs()
	if len(cfgs) != 3 {
		t.Fatalf("got %d configs, want 3 with rocks disabled", len(cfgs))
	}
	want := []struct {
		category Category
		count    int
	}{
		{CategoryTreeWood, 51}, // round(101 * 0.5)
		{CategoryGrass, 6000},
		{CategoryFoliageBranches, 400},
	}
	for i, w := range want {
		if cfgs[i].Category != w.category || cfgs[i].Count != w.count {
			t.Errorf("config %d = %v x%d, want %v x%d", i, cfgs[i].Category, cfgs[i].Count, w.category, w.count)
		}
	}
	assertNear(t, "tree slope", cfgs[0].SlopeLimit, 0.4)
	assertNear(t, "tree bias", cfgs[0].Bias, 0.65)
}

func TestBiomeApply(t *testing.T) {
	b := DefaultBiome()
	b.GrassMaxSlope = 0.5
	b.GrassMinSpawnProb = 0.3
	b.RockDrynessBias = 0.9

	rock := DefaultRockConfig()
	b.apply(&rock)
	assertNear(t, "rock min slope", rock.SlopeLimit, 0.25)
	assertNear(t, "rock bias", rock.Bias, 0.9)

	grass := DefaultGrassConfig()
	b.apply(&grass)
	assertNear(t, "grass slope", grass.SlopeLimit, 0.5)
	assertNear(t, "grass floor", grass.MinProbability, 0.3)

	foliage := DefaultFoliageConfig()
	b.apply(&foliage)
	assertNear(t, "foliage slope", foliage.SlopeLimit, 0.6) // min(0.7, 0.5*1.2)

	b.GrassMaxSlope = 0.9
	foliage = DefaultFoliageConfig()
	b.apply(&foliage)
	assertNear(t, "foliage slope keeps own limit", foliage.SlopeLimit, 0.7)
}

func TestPresetAreaPlacement(t *testing.T) {
	p := DefaultPreset()
	p.Area.Origin = [3]float32{10, 2, 20}
	p.Area.Size = [2]float32{40, 60}
	assertVec(t, "center", p.Center(), [3]float32{30, 2, 50})
	b := p.WorldBounds()
	assertVec(t, "min", b.Min, [3]float32{10, p.Area.MinY, 20})
	assertVec(t, "max", b.Max, [3]float32{50, p.Area.MaxY, 80})
	for _, cfg := range p.ScatterConfigs() {
		if cfg.Origin != p.Center() || cfg.AreaSize != p.Area.Size {
			t.Errorf("%v scatter area = %v %v", cfg.Category, cfg.Origin, cfg.AreaSize)
		}
	}
}

func TestPresetValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		key  string
	}{
		{"zero area", "area: {size: [0, 10]}", "area.size"},
		{"inverted height", "area: {min_y: 5, max_y: 5}", "area.max_y"},
		{"grid dims", "grid: {dims_x: 0}", "grid dims"},
		{"terrain resolution", "terrain: {resolution: 1}", "terrain.resolution"},
		{"density too high", "biome: {global_density: 4}", "biome.global_density"},
		{"density too low", "biome: {global_density: 0.05}", "biome.global_density"},
		{"slope out of range", "biome: {rock_min_slope: 1.5}", "biome.rock_min_slope"},
		{"spawn floor", "biome: {grass_min_spawn_prob: -0.1}", "biome.grass_min_spawn_prob"},
		{"negative count", "trees: {count: -1}", "trees.count"},
		{"zero effort", "grass: {effort: 0}", "grass.effort"},
		{"negative spacing", "foliage: {min_spacing: -2}", "foliage.min_spacing"},
		{"no variants", "rocks: {variants: 0}", "rocks.variants"},
		{"unknown cull category", "culling: {category_max_distance: {shrub: 10}}", "shrub"},
		{"negative cull distance", "culling: {category_max_distance: {rock: -1}}", "category_max_distance.rock"},
		{"facing dot", "culling: {facing_dot_min: 2}", "culling.facing_dot_min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePreset([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %q", err, tt.key)
			}
		})
	}
}

func TestPresetDisabledCategorySkipsValidation(t *testing.T) {
	if _, err := ParsePreset([]byte("trees: {enabled: false, effort: 0}")); err != nil {
		t.Errorf("disabled category validated: %v", err)
	}
}

func TestParsePresetSyntaxError(t *testing.T) {
	if _, err := ParsePreset([]byte("seed: [unterminated")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestPresetCullSettings(t *testing.T) {
	p, err := ParsePreset([]byte(`
culling:
  max_view_distance: 200
  category_max_distance:
    grass: 50
  facing_cull: true
  facing_dot_min: -0.2
  shadow_distance: true
`))
	if err != nil {
		t.Fatal(err)
	}
	s := p.CullSettings()
	if !s.Enabled || !s.FacingCull || !s.DistanceInShadowPass || s.FacingInShadowPass {
		t.Errorf("flags = %+v", s)
	}
	assertNear(t, "facing dot", s.FacingDotMin, -0.2)
	assertNear(t, "grass cap", s.EffectiveDistance(CategoryGrass), 50)
	assertNear(t, "rock cap", s.EffectiveDistance(CategoryRock), 200)
}

func TestLoadPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	if err := os.WriteFile(path, []byte("seed: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if p.Seed != 99 {
		t.Errorf("seed = %d", p.Seed)
	}
	if _, err := LoadPreset(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestPresetMarshalReparses(t *testing.T) {
	p := DefaultPreset()
	p.Seed = 4242
	p.Rocks.Enabled = false
	data, err := p.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	q, err := ParsePreset(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if q.Seed != 4242 || q.Rocks.Enabled || q.Grid.DimsX != p.Grid.DimsX {
		t.Errorf("reparsed preset = %+v", q)
	}
}

func TestPresetTerrainConfig(t *testing.T) {
	p := DefaultPreset()
	p.Seed = 5
	p.Terrain.Resolution = 33
	tc := p.TerrainConfig()
	if tc.Seed != 5 || tc.Resolution != 33 || tc.Size != p.Area.Size {
		t.Errorf("TerrainConfig = %+v", tc)
	}
	assertVec(t, "origin", tc.Origin, p.Area.Origin)
}
