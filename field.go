package grove

import (
	"fmt"
	"slices"
)

// Field is the batch source of one scatter category. Rebuild scatters the
// category's placements and groups the far-field ones into instanced
// batches; near-field placements are kept aside for individual
// materialization (typically with colliders).
type Field struct {
	Name    string
	Engine  *ScatterEngine
	Builder BatchBuilder
	Meshes  MeshSet
	Enabled bool

	debug      bool
	placements []Placement
	near       []Placement
	batches    []InstanceBatch
	stats      ScatterStats
	built      bool
}

// NewField creates an enabled field. When builder has no slots, the default
// slots of cfg.Category are filled in from meshes.Materials.
func NewField(name string, cfg ScatterConfig, meshes MeshSet, builder BatchBuilder) *Field {
	if len(builder.Slots) == 0 {
		builder.Slots = DefaultSlots(cfg.Category, meshes.Materials)
	}
	if cfg.Variants <= 0 {
		cfg.Variants = len(meshes.Variants)
	}
	return &Field{
		Name:    name,
		Engine:  NewScatterEngine(cfg, nil, nil),
		Builder: builder,
		Meshes:  meshes,
		Enabled: true,
	}
}

// DefaultSlots returns the material slots a category draws with. Trees draw
// wood on submesh 0 and leaves on submesh 1; foliage draws branches and
// leaves the same way, with leaves not casting shadows. Grass neither casts
// nor receives shadows. Slots without a material in materials are omitted.
func DefaultSlots(c Category, materials []MaterialHandle) []MaterialSlot {
	var slots []MaterialSlot
	switch c {
	case CategoryTreeWood, CategoryTreeLeaves:
		slots = []MaterialSlot{
			{Submesh: 0, Category: CategoryTreeWood, Shadow: ShadowOn, ReceiveShadows: true},
			{Submesh: 1, Category: CategoryTreeLeaves, Shadow: ShadowOn, ReceiveShadows: true},
		}
	case CategoryFoliageBranches, CategoryFoliageLeaves:
		slots = []MaterialSlot{
			{Submesh: 0, Category: CategoryFoliageBranches, Shadow: ShadowOn, ReceiveShadows: true},
			{Submesh: 1, Category: CategoryFoliageLeaves, Shadow: ShadowOff, ReceiveShadows: true},
		}
	case CategoryGrass:
		slots = []MaterialSlot{{Category: CategoryGrass, Shadow: ShadowOff}}
	default:
		slots = []MaterialSlot{{Category: c, Shadow: ShadowOn, ReceiveShadows: true}}
	}
	out := slots[:0]
	for _, s := range slots {
		if s.Submesh < len(materials) {
			s.Material = materials[s.Submesh]
			out = append(out, s)
		}
	}
	return out
}

// DefaultBuilder returns the batching policy of a category. Grass and foliage
// are dense and chunked by grid cell; trees and rocks are grouped by variant
// only.
func DefaultBuilder(c Category, grid *SpatialGrid, res *Resources) BatchBuilder {
	bb := BatchBuilder{Grid: grid, Resources: res}
	switch c {
	case CategoryGrass:
		bb.Chunked = grid != nil
		bb.Padding = 0.5
	case CategoryFoliageBranches, CategoryFoliageLeaves:
		bb.Chunked = grid != nil
		bb.Padding = 1
	}
	return bb
}

// Rebuild scatters with worldSeed and regenerates the batches. The previous
// result is kept when the mesh set does not resolve.
func (f *Field) Rebuild(worldSeed int64) error {
	if f.Engine == nil {
		return fmt.Errorf("grove: field %q has no scatter engine", f.Name)
	}
	if res := f.Builder.Resources; res != nil {
		if err := f.Meshes.Validate(res); err != nil {
			return fmt.Errorf("grove: field %q: %w", f.Name, err)
		}
	} else if len(f.Meshes.Variants) == 0 {
		return fmt.Errorf("grove: field %q has no mesh variants", f.Name)
	}

	run := f.Engine.Run(worldSeed)
	debugShortfall(f.debug, f.Engine.Config.Category, run.Stats)

	f.placements = run.Placements
	f.stats = run.Stats
	f.near = f.near[:0]
	for _, p := range run.Placements {
		if p.Near {
			f.near = append(f.near, p)
		}
	}
	f.batches = f.Builder.Build(f.Meshes.Variants, run.Placements)
	f.built = true
	return nil
}

// Clear drops every placement and batch.
func (f *Field) Clear() {
	f.placements = nil
	f.near = nil
	f.batches = nil
	f.stats = ScatterStats{}
	f.built = false
}

// Built reports whether Rebuild has succeeded since the last Clear.
func (f *Field) Built() bool { return f.built }

// Batches implements Source.
func (f *Field) Batches() []InstanceBatch { return f.batches }

// Active implements ActiveSource.
func (f *Field) Active() bool { return f.Enabled }

// Placements returns every placement of the last rebuild, near-field
// included.
func (f *Field) Placements() []Placement { return f.placements }

// NearField returns a copy of the placements within the engine's near radius.
func (f *Field) NearField() []Placement { return slices.Clone(f.near) }

// Stats returns the scatter statistics of the last rebuild.
func (f *Field) Stats() ScatterStats { return f.stats }

// Instances returns the total number of instanced transforms across batches.
func (f *Field) Instances() int {
	n := 0
	for i := range f.batches {
		n += len(f.batches[i].Matrices)
	}
	return n
}
