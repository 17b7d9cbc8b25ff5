package grove

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorldContext is the state shared by the stages of one generation.
type WorldContext struct {
	Preset *Preset
	Env    WorldEnv
	Seed   int64
	Bounds AABB

	// Filled in by stages.
	Terrain *Terrain
	Grid    *SpatialGrid
	Fields  []*Field

	world *World
}

// Stage is one step of world generation.
type Stage interface {
	Name() string
	Run(ctx *WorldContext) error
}

// StageRunner runs stages in the order they were added.
type StageRunner struct {
	stages []Stage
}

// Add appends s. Nil stages are ignored.
func (r *StageRunner) Add(s Stage) *StageRunner {
	if s != nil {
		r.stages = append(r.stages, s)
	}
	return r
}

// Stages returns the stage names in run order.
func (r *StageRunner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage and stops at the first error.
func (r *StageRunner) Run(ctx *WorldContext) error {
	for _, s := range r.stages {
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return nil
}

// TerrainStage builds the procedural terrain when the preset enables it and
// the caller supplied neither an environment nor a ground. The terrain then
// serves as both, and water becomes an exclusion.
type TerrainStage struct{}

func (TerrainStage) Name() string { return "terrain" }

func (TerrainStage) Run(ctx *WorldContext) error {
	p := ctx.Preset
	if !p.Terrain.Enabled || ctx.Env.Environment != nil || ctx.Env.Ground != nil {
		return nil
	}
	tc := p.TerrainConfig()
	tc.Seed = ctx.Seed
	ctx.Terrain = NewTerrain(tc)
	ctx.Env.Environment = ctx.Terrain
	ctx.Env.Ground = ctx.Terrain
	if p.Terrain.Water {
		ctx.Env.Exclusions = append(ctx.Env.Exclusions, WaterLevel{
			Level:  p.Area.Origin[1] + p.Terrain.WaterLevel,
			Bounds: ctx.Bounds,
		})
	}
	return nil
}

// GridStage builds the chunk grid over the preset area.
type GridStage struct{}

func (GridStage) Name() string { return "grid" }

func (GridStage) Run(ctx *WorldContext) error {
	p := ctx.Preset
	if !p.Grid.Enabled {
		ctx.Grid = nil
		return nil
	}
	g, err := NewSpatialGrid(ctx.Bounds.Min, p.Area.Size[0], p.Area.Size[1], p.Grid.DimsX, p.Grid.DimsZ, ctx.Bounds)
	if err != nil {
		return err
	}
	ctx.Grid = g
	return nil
}

// ScatterStage rebuilds one field per enabled category. With Parallel set,
// fields are rebuilt concurrently; each field owns its generator, so the
// result is the same either way, but the environment, ground and exclusions
// must then be safe for concurrent reads.
type ScatterStage struct {
	Parallel bool
}

func (ScatterStage) Name() string { return "scatter" }

func (s ScatterStage) Run(ctx *WorldContext) error {
	cfgs := ctx.Preset.ScatterConfigs()
	for _, cfg := range cfgs {
		if len(ctx.Env.Meshes[cfg.Category].Variants) == 0 {
			return fmt.Errorf("no meshes for category %s", cfg.Category)
		}
	}
	fields := make([]*Field, 0, len(cfgs))
	for _, cfg := range cfgs {
		meshes := ctx.Env.Meshes[cfg.Category]
		cfg.Variants = min(cfg.Variants, len(meshes.Variants))
		f := ctx.field(cfg, meshes)
		f.Engine.Environment = ctx.Env.Environment
		f.Engine.Ground = ctx.Env.Ground
		f.Engine.Exclusions = ctx.Env.Exclusions
		fields = append(fields, f)
	}

	if !s.Parallel {
		for _, f := range fields {
			if err := f.Rebuild(ctx.Seed); err != nil {
				return err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, f := range fields {
			g.Go(func() error { return f.Rebuild(ctx.Seed) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	ctx.Fields = fields
	return nil
}

// field returns the world's field for cfg's category, creating it on first
// use, and resets its engine config and builder to the current settings.
func (ctx *WorldContext) field(cfg ScatterConfig, meshes MeshSet) *Field {
	builder := DefaultBuilder(cfg.Category, ctx.Grid, ctx.Env.Resources)
	builder.Slots = DefaultSlots(cfg.Category, meshes.Materials)

	var f *Field
	if ctx.world != nil {
		f = ctx.world.fields[cfg.Category]
	}
	if f == nil {
		f = NewField(cfg.Category.String(), cfg, meshes, builder)
		if ctx.world != nil {
			ctx.world.fields[cfg.Category] = f
		}
	}
	f.Engine.Config = cfg
	f.Builder = builder
	f.Meshes = meshes
	return f
}
