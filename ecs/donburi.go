package ecs

import (
	"github.com/phanxgames/grove"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// BatchComponent holds one instanced batch per entity.
var BatchComponent = donburi.NewComponentType[grove.InstanceBatch]()

// NearObject is a placement close enough to the area center to be
// materialized as its own entity.
type NearObject struct {
	Category  grove.Category
	Placement grove.Placement
}

// NearComponent holds a materialized near-field placement.
var NearComponent = donburi.NewComponentType[NearObject]()

// Hidden excludes a batch entity from collection.
var Hidden = donburi.NewTag()

// FrameStatsEvent is the Donburi event type for completed hub frames.
var FrameStatsEvent = events.NewEventType[grove.FrameStats]()

// Source is a grove.Source over every batch entity of a world.
type Source struct {
	// Enabled reports the source as active to the hub. A disabled source is
	// skipped unless Hub.IncludeInactive is set.
	Enabled bool

	world donburi.World
	query *donburi.Query
}

// NewSource creates an enabled source over world.
func NewSource(world donburi.World) *Source {
	return &Source{
		Enabled: true,
		world:   world,
		query: donburi.NewQuery(filter.And(
			filter.Contains(BatchComponent),
			filter.Not(filter.Contains(Hidden)),
		)),
	}
}

// Batches returns a fresh copy of every visible batch component. Call
// Hub.NotifyDirty after adding, hiding or removing batch entities.
func (s *Source) Batches() []grove.InstanceBatch {
	out := make([]grove.InstanceBatch, 0, s.query.Count(s.world))
	s.query.Each(s.world, func(e *donburi.Entry) {
		out = append(out, *BatchComponent.Get(e))
	})
	return out
}

// Active implements grove.ActiveSource.
func (s *Source) Active() bool { return s.Enabled }

// AddBatch creates an entity holding b.
func AddBatch(world donburi.World, b grove.InstanceBatch) donburi.Entity {
	e := world.Create(BatchComponent)
	BatchComponent.SetValue(world.Entry(e), b)
	return e
}

// SpawnField creates one batch entity per batch of f.
func SpawnField(world donburi.World, f *grove.Field) []donburi.Entity {
	batches := f.Batches()
	out := make([]donburi.Entity, 0, len(batches))
	for _, b := range batches {
		out = append(out, AddBatch(world, b))
	}
	return out
}

// SpawnNearField creates one entity per near-field placement of f.
func SpawnNearField(world donburi.World, f *grove.Field) []donburi.Entity {
	near := f.NearField()
	c := f.Engine.Config.Category
	out := make([]donburi.Entity, 0, len(near))
	for _, p := range near {
		e := world.Create(NearComponent)
		NearComponent.SetValue(world.Entry(e), NearObject{Category: c, Placement: p})
		out = append(out, e)
	}
	return out
}

// SetHidden tags or untags a batch entity. Invalid entities are ignored.
func SetHidden(world donburi.World, e donburi.Entity, hidden bool) {
	if !world.Valid(e) {
		return
	}
	entry := world.Entry(e)
	switch has := entry.HasComponent(Hidden); {
	case hidden && !has:
		entry.AddComponent(Hidden)
	case !hidden && has:
		entry.RemoveComponent(Hidden)
	}
}

// Clear removes every batch and near-field entity from world and returns how
// many were removed.
func Clear(world donburi.World) int {
	q := donburi.NewQuery(filter.Or(
		filter.Contains(BatchComponent),
		filter.Contains(NearComponent),
	))
	var doomed []donburi.Entity
	q.Each(world, func(e *donburi.Entry) {
		doomed = append(doomed, e.Entity())
	})
	for _, e := range doomed {
		world.Remove(e)
	}
	return len(doomed)
}

// StatsObserver publishes every completed hub frame as a FrameStatsEvent.
// Events are queued until FrameStatsEvent.ProcessEvents runs.
type StatsObserver struct {
	world donburi.World
}

// NewStatsObserver creates an observer publishing into world.
func NewStatsObserver(world donburi.World) *StatsObserver {
	return &StatsObserver{world: world}
}

// ObserveFrame implements grove.StatsObserver.
func (o *StatsObserver) ObserveFrame(stats grove.FrameStats) {
	FrameStatsEvent.Publish(o.world, stats)
}

var (
	_ grove.ActiveSource  = (*Source)(nil)
	_ grove.StatsObserver = (*StatsObserver)(nil)
)
