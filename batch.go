package grove

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxInstancesPerBatch is the largest number of transforms submitted in one
// instanced draw.
const MaxInstancesPerBatch = 1023

// InstanceBatch is one instanced draw: a mesh slot drawn with one material at
// up to MaxInstancesPerBatch transforms.
type InstanceBatch struct {
	Mesh           MeshHandle
	Submesh        int
	Material       MaterialHandle
	Matrices       []mgl32.Mat4
	Bounds         AABB // contains every instance origin padded by mesh extent × scale
	Layer          int
	Shadow         ShadowMode
	ReceiveShadows bool
	Category       Category

	Cell    CellID // grid cell the instances came from when Chunked
	Chunked bool
}

// Count returns the number of instances in the batch.
func (b *InstanceBatch) Count() int { return len(b.Matrices) }

// MaterialSlot describes how one submesh of a mesh is drawn.
type MaterialSlot struct {
	Submesh        int
	Material       MaterialHandle
	Category       Category
	Shadow         ShadowMode
	ReceiveShadows bool
}

// BatchBuilder groups placements by mesh variant (and optionally by grid cell),
// slices each group into batches of at most Limit instances and computes their
// bounds. Every group yields one batch list per material slot.
type BatchBuilder struct {
	Limit     int          // per-batch instance cap; 0 means MaxInstancesPerBatch
	Grid      *SpatialGrid // required for Chunked
	Chunked   bool         // additionally group by grid cell
	Padding   float32      // added to every face of the computed bounds
	Layer     int
	Resources *Resources // resolves mesh extents; nil treats every mesh as a point
	Slots     []MaterialSlot
}

// groupKey groups placements that can share one instanced draw.
type groupKey struct {
	variant int
	cell    CellID
}

type group struct {
	key       groupKey
	matrices  []mgl32.Mat4
	maxScales []float32
}

// Build converts far-field placements into batches. variants maps a
// placement's Variant index to its mesh; placements with an out-of-range
// variant or the Near flag are skipped. Groups are emitted in order of first
// appearance, so the output is deterministic for a given input.
func (bb *BatchBuilder) Build(variants []MeshHandle, placements []Placement) []InstanceBatch {
	limit := bb.limit()
	chunked := bb.Chunked && bb.Grid != nil

	var groups []*group
	index := make(map[groupKey]int)
	for i := range placements {
		p := &placements[i]
		if p.Near || p.Variant < 0 || p.Variant >= len(variants) {
			continue
		}
		k := groupKey{variant: p.Variant}
		if chunked {
			k.cell = bb.Grid.CellIDAt(p.Position)
		}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, &group{key: k})
		}
		g := groups[gi]
		g.matrices = append(g.matrices, p.Matrix())
		g.maxScales = append(g.maxScales, p.MaxScale())
	}

	slots := bb.Slots
	if len(slots) == 0 {
		slots = []MaterialSlot{{}}
	}

	var out []InstanceBatch
	for _, slot := range slots {
		for _, g := range groups {
			mesh := variants[g.key.variant]
			extent := bb.meshExtent(mesh)
			for lo := 0; lo < len(g.matrices); lo += limit {
				hi := min(lo+limit, len(g.matrices))
				mats := g.matrices[lo:hi:hi]
				b := InstanceBatch{
					Mesh:           mesh,
					Submesh:        slot.Submesh,
					Material:       slot.Material,
					Matrices:       mats,
					Layer:          bb.Layer,
					Shadow:         slot.Shadow,
					ReceiveShadows: slot.ReceiveShadows,
					Category:       slot.Category,
				}
				b.Bounds = instanceBounds(mats, g.maxScales[lo:hi], extent, bb.Padding)
				if chunked {
					b.Cell = g.key.cell
					b.Chunked = true
					b.Bounds = b.Bounds.Union(bb.Grid.BoundsOf(g.key.cell).Expand(bb.Padding))
				}
				out = append(out, b)
			}
		}
	}
	return out
}

func (bb *BatchBuilder) limit() int {
	if bb.Limit <= 0 || bb.Limit > MaxInstancesPerBatch {
		return MaxInstancesPerBatch
	}
	return bb.Limit
}

func (bb *BatchBuilder) meshExtent(h MeshHandle) float32 {
	if bb.Resources == nil {
		return 0
	}
	info, ok := bb.Resources.Mesh(h)
	if !ok {
		return 0
	}
	return info.Extent()
}

// instanceBounds returns the box around the instance origins grown on every
// face by extent × max(1, largest scale) + padding.
func instanceBounds(mats []mgl32.Mat4, maxScales []float32, extent, padding float32) AABB {
	b := emptyAABB()
	var scale float32 = 1
	for i, m := range mats {
		b = b.Encapsulate(translationOf(m))
		if maxScales[i] > scale {
			scale = maxScales[i]
		}
	}
	return b.Expand(extent*scale + padding)
}

// SliceMatrices splits transforms into consecutive runs of at most limit.
// A non-positive limit means MaxInstancesPerBatch. No run is empty.
func SliceMatrices(mats []mgl32.Mat4, limit int) [][]mgl32.Mat4 {
	if limit <= 0 {
		limit = MaxInstancesPerBatch
	}
	var out [][]mgl32.Mat4
	for lo := 0; lo < len(mats); lo += limit {
		hi := min(lo+limit, len(mats))
		out = append(out, mats[lo:hi:hi])
	}
	return out
}

// NewBatch builds a single batch from raw transforms, computing bounds from
// the instance origins and the mesh extent. It is meant for sources that
// manage their own transforms.
func NewBatch(res *Resources, mesh MeshHandle, slot MaterialSlot, mats []mgl32.Mat4, padding float32) InstanceBatch {
	var extent float32
	if res != nil {
		if info, ok := res.Mesh(mesh); ok {
			extent = info.Extent()
		}
	}
	scales := make([]float32, len(mats))
	for i, m := range mats {
		scales[i] = maxScaleOf(m)
	}
	b := InstanceBatch{
		Mesh:           mesh,
		Submesh:        slot.Submesh,
		Material:       slot.Material,
		Matrices:       mats,
		Shadow:         slot.Shadow,
		ReceiveShadows: slot.ReceiveShadows,
		Category:       slot.Category,
	}
	if len(mats) > 0 {
		b.Bounds = instanceBounds(mats, scales, extent, padding)
	}
	return b
}
