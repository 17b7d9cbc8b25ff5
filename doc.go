// Package grove scatters decorative objects (trees, rocks, grass, foliage) over
// a bounded terrain area, packs them into hardware-instancing batches and culls
// those batches per camera every frame.
//
// # Quick start
//
// The simplest way to get started is [NewWorld], which wires a [Hub], a
// [SpatialGrid] and one [Field] per category from a [Preset]:
//
//	preset := grove.DefaultPreset()
//	world, err := grove.NewWorld(preset, grove.WorldEnv{
//		Environment: masks,
//		Ground:      terrain,
//		Resources:   res,
//		Meshes:      meshes,
//	})
//	if err != nil {
//		return err
//	}
//	if err := world.Generate(); err != nil {
//		return err
//	}
//
//	// once per frame
//	world.Hub().DrawFrame([]*grove.Camera{cam, sun}, renderer)
//
// # Pipeline
//
// A rebuild flows top-down. The grid is built once per world generation, every
// [Field] runs its [ScatterEngine] and [BatchBuilder], and the hub re-collects
// its sources exactly once. Rendering flows only through the hub:
// [Hub.BeginFrame] applies a pending re-collection, [Hub.EvaluateAndDraw] runs
// the frustum, distance and facing tests for one camera and submits one
// instanced draw per surviving batch, and [Hub.EndFrame] publishes the
// [FrameStats].
//
// # Determinism
//
// Every scatter run owns a seeded generator derived from the world seed and a
// fixed per-category offset. Given the same preset and collaborators, two runs
// produce identical placements, batches and bounds.
//
// # Collaborators
//
// Terrain masks, ground ray casts, exclusion regions (water bodies) and mesh
// generation live outside grove. They plug in through [EnvironmentSampler],
// [Ground], [Exclusion] and the integer handles of [Resources].
//
// The [PreviewRenderer] draws a top-down view of submitted batches with
// [Ebitengine]; adapters for [Donburi] and Prometheus live in grove/ecs and
// grove/metrics.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package grove
