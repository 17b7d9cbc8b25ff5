package grove

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldEnv supplies what a World cannot generate itself. Every field is
// optional except Meshes, which needs a set for each enabled category keyed
// by CategoryTreeWood, CategoryRock, CategoryGrass and
// CategoryFoliageBranches. Without Environment and Ground the preset's
// terrain is used.
type WorldEnv struct {
	Environment EnvironmentSampler
	Ground      Ground
	Exclusions  []Exclusion
	Resources   *Resources
	Meshes      map[Category]MeshSet
}

// World owns the fields of a preset and the hub that culls and draws them.
type World struct {
	Preset Preset
	Env    WorldEnv
	// Parallel rebuilds fields concurrently. The environment, ground and
	// exclusions must then be safe for concurrent reads.
	Parallel bool

	hub         *Hub
	fields      map[Category]*Field
	order       []*Field
	grid        *SpatialGrid
	terrain     *Terrain
	generations int
	debug       bool
}

// NewWorld validates p and creates a world with an empty hub. Nothing is
// placed until Generate.
func NewWorld(p Preset, env WorldEnv) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("grove: invalid preset: %w", err)
	}
	hub := NewHub()
	hub.Settings = p.CullSettings()
	hub.Resources = env.Resources
	return &World{
		Preset: p,
		Env:    env,
		hub:    hub,
		fields: make(map[Category]*Field),
	}, nil
}

func (w *World) stages() *StageRunner {
	return (&StageRunner{}).
		Add(TerrainStage{}).
		Add(GridStage{}).
		Add(ScatterStage{Parallel: w.Parallel})
}

// SetDebugMode enables debug output for the hub and scatter shortfalls.
func (w *World) SetDebugMode(enabled bool) {
	w.debug = enabled
	w.hub.SetDebugMode(enabled)
	for _, f := range w.fields {
		f.debug = enabled
	}
}

// Hub returns the world's culling hub.
func (w *World) Hub() *Hub { return w.hub }

// Grid returns the chunk grid of the last generation, or nil.
func (w *World) Grid() *SpatialGrid { return w.grid }

// Terrain returns the generated terrain, or nil when the environment was
// supplied or the terrain is disabled.
func (w *World) Terrain() *Terrain { return w.terrain }

// Generations returns how many times Generate has succeeded.
func (w *World) Generations() int { return w.generations }

// Stages returns the generation stage names in run order.
func (w *World) Stages() []string {
	return w.stages().Stages()
}

// Generate runs every stage with the preset seed, registers new fields with
// the hub and refreshes the hub exactly once.
func (w *World) Generate() error {
	return w.GenerateSeed(w.Preset.Seed)
}

// GenerateSeed is Generate with an explicit seed.
func (w *World) GenerateSeed(seed int64) error {
	ctx := &WorldContext{
		Preset: &w.Preset,
		Env:    w.Env,
		Seed:   seed,
		Bounds: w.Preset.WorldBounds(),
		world:  w,
	}
	ctx.Env.Exclusions = slices.Clone(w.Env.Exclusions)

	if err := w.stages().Run(ctx); err != nil {
		return err
	}
	w.grid = ctx.Grid
	w.terrain = ctx.Terrain

	// Fields of categories disabled since the last run are dropped.
	for c, f := range w.fields {
		if !slices.Contains(ctx.Fields, f) {
			f.Clear()
			delete(w.fields, c)
			w.hub.Unregister(f)
		}
	}
	for _, f := range ctx.Fields {
		f.debug = w.debug
		w.hub.RegisterGroup(w.Preset.Name, f)
	}
	w.order = ctx.Fields
	w.hub.RefreshAll()
	w.generations++
	return nil
}

// Clear empties every field and refreshes the hub.
func (w *World) Clear() {
	for _, f := range w.order {
		f.Clear()
	}
	w.hub.RefreshAll()
}

// Fields returns the fields of the last generation in tree, rock, grass,
// foliage order.
func (w *World) Fields() []*Field { return slices.Clone(w.order) }

// Field returns the field of a category, keyed like WorldEnv.Meshes.
func (w *World) Field(c Category) (*Field, bool) {
	f, ok := w.fields[c]
	return f, ok
}

// NearField returns the near-field placements of every field by category.
func (w *World) NearField() map[Category][]Placement {
	out := make(map[Category][]Placement, len(w.order))
	for _, f := range w.order {
		out[f.Engine.Config.Category] = f.NearField()
	}
	return out
}

// ScatterStats returns the scatter statistics of every field by category.
func (w *World) ScatterStats() map[Category]ScatterStats {
	out := make(map[Category]ScatterStats, len(w.order))
	for _, f := range w.order {
		out[f.Engine.Config.Category] = f.Stats()
	}
	return out
}

// placeholder shapes: local bounds, slot colors.
var placeholderShapes = []struct {
	category Category
	name     string
	bounds   AABB
	colors   []Color
}{
	{CategoryTreeWood, "tree", AABB{Min: mgl32.Vec3{-1.5, 0, -1.5}, Max: mgl32.Vec3{1.5, 8, 1.5}},
		[]Color{{0.45, 0.3, 0.18, 1}, {0.2, 0.5, 0.2, 1}}},
	{CategoryRock, "rock", AABB{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 1.2, 1}},
		[]Color{{0.5, 0.5, 0.52, 1}}},
	{CategoryGrass, "grass", AABB{Min: mgl32.Vec3{-0.5, 0, -0.5}, Max: mgl32.Vec3{0.5, 1, 0.5}},
		[]Color{{0.45, 0.7, 0.3, 1}}},
	{CategoryFoliageBranches, "plant", AABB{Min: mgl32.Vec3{-0.6, 0, -0.6}, Max: mgl32.Vec3{0.6, 1.2, 0.6}},
		[]Color{{0.35, 0.45, 0.2, 1}, {0.3, 0.65, 0.35, 1}}},
}

// RegisterPlaceholderMeshes creates stand-in meshes and materials in res for
// every category of p, with as many variants as the preset asks for. It is
// meant for tools and previews that have no real assets.
func RegisterPlaceholderMeshes(res *Resources, p *Preset) map[Category]MeshSet {
	variants := map[Category]int{
		CategoryTreeWood:        p.Trees.Variants,
		CategoryRock:            p.Rocks.Variants,
		CategoryGrass:           p.Grass.Variants,
		CategoryFoliageBranches: p.Foliage.Variants,
	}
	out := make(map[Category]MeshSet, len(placeholderShapes))
	for _, s := range placeholderShapes {
		var set MeshSet
		for i, c := range s.colors {
			set.Materials = append(set.Materials, res.CreateMaterial(MaterialInfo{
				Name:  fmt.Sprintf("%s-slot%d", s.name, i),
				Color: c,
			}))
		}
		for i := range max(1, variants[s.category]) {
			set.Variants = append(set.Variants, res.CreateMesh(MeshInfo{
				Name:      fmt.Sprintf("%s-%d", s.name, i),
				Bounds:    s.bounds,
				Submeshes: len(s.colors),
			}))
		}
		out[s.category] = set
	}
	return out
}
