package grove

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidGrid is returned when a grid is configured with non-positive
// dimensions or cell size.
var ErrInvalidGrid = errors.New("grove: invalid grid")

// CellID identifies one cell of a SpatialGrid by column (X) and row (Z).
type CellID struct {
	X, Z int
}

// SpatialGrid partitions the X/Z rectangle of the world into Dims cells.
// It is immutable after construction and safe for concurrent reads.
type SpatialGrid struct {
	origin   mgl32.Vec3
	cellSize [2]float32
	dims     [2]int
	world    AABB
}

// NewSpatialGrid builds a grid whose minimum corner is origin, covering
// sizeX × sizeZ world units split into dimsX × dimsZ cells. world supplies the
// vertical extent used by BoundsOf.
func NewSpatialGrid(origin mgl32.Vec3, sizeX, sizeZ float32, dimsX, dimsZ int, world AABB) (*SpatialGrid, error) {
	if dimsX < 1 || dimsZ < 1 {
		return nil, fmt.Errorf("%w: dims %dx%d must be at least 1x1", ErrInvalidGrid, dimsX, dimsZ)
	}
	cx := sizeX / float32(dimsX)
	cz := sizeZ / float32(dimsZ)
	if !(cx > 0) || !(cz > 0) || math.IsInf(float64(cx), 0) || math.IsInf(float64(cz), 0) {
		return nil, fmt.Errorf("%w: cell size %gx%g must be positive", ErrInvalidGrid, cx, cz)
	}
	return &SpatialGrid{
		origin:   origin,
		cellSize: [2]float32{cx, cz},
		dims:     [2]int{dimsX, dimsZ},
		world:    world,
	}, nil
}

// Origin returns the world-space minimum corner of the grid.
func (g *SpatialGrid) Origin() mgl32.Vec3 { return g.origin }

// Dims returns the number of columns and rows.
func (g *SpatialGrid) Dims() (x, z int) { return g.dims[0], g.dims[1] }

// CellSize returns the world size of one cell along X and Z.
func (g *SpatialGrid) CellSize() (x, z float32) { return g.cellSize[0], g.cellSize[1] }

// WorldBounds returns the overall world box the grid was built with.
func (g *SpatialGrid) WorldBounds() AABB { return g.world }

// CellIDAt returns the cell containing p. Positions outside the grid are
// clamped to the nearest edge cell, so the result is always valid.
func (g *SpatialGrid) CellIDAt(p mgl32.Vec3) CellID {
	ix := floorDiv(p[0]-g.origin[0], g.cellSize[0])
	iz := floorDiv(p[2]-g.origin[2], g.cellSize[1])
	return CellID{
		X: clampInt(ix, 0, g.dims[0]-1),
		Z: clampInt(iz, 0, g.dims[1]-1),
	}
}

// BoundsOf returns the world box of a cell: one cell horizontally and the full
// vertical extent of the world.
func (g *SpatialGrid) BoundsOf(id CellID) AABB {
	minX := g.origin[0] + float32(id.X)*g.cellSize[0]
	minZ := g.origin[2] + float32(id.Z)*g.cellSize[1]
	return AABB{
		Min: mgl32.Vec3{minX, g.world.Min[1], minZ},
		Max: mgl32.Vec3{minX + g.cellSize[0], g.world.Max[1], minZ + g.cellSize[1]},
	}
}

// floorDiv is floor(a/b) saturated to the int range; NaN maps to 0.
func floorDiv(a, b float32) int {
	f := math.Floor(float64(a) / float64(b))
	switch {
	case math.IsNaN(f):
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
