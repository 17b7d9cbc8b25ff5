// Package ecs adapts grove to a [Donburi] world.
//
// Batches can live on ECS entities: [AddBatch] or [SpawnField] attach an
// [grove.InstanceBatch] to an entity, and a [Source] registered with a
// [grove.Hub] collects every batch entity that is not tagged [Hidden].
// Near-field placements become individual entities through [SpawnNearField]
// so gameplay systems can attach colliders to them.
//
// Frame statistics are bridged the other way. Register a [StatsObserver] with
// the hub and subscribe to [FrameStatsEvent] in your systems.
//
// Usage:
//
//	src := ecs.NewSource(world)
//	hub.Register(src)
//	hub.AddObserver(ecs.NewStatsObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
