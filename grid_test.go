package grove

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testWorldBounds() AABB {
	return AABB{Min: mgl32.Vec3{-80, -10, -80}, Max: mgl32.Vec3{80, 40, 80}}
}

func newTestGrid(t testing.TB, dims int) *SpatialGrid {
	t.Helper()
	g, err := NewSpatialGrid(mgl32.Vec3{-80, 0, -80}, 160, 160, dims, dims, testWorldBounds())
	if err != nil {
		t.Fatalf("NewSpatialGrid: %v", err)
	}
	return g
}

func TestNewSpatialGridInvalid(t *testing.T) {
	tests := []struct {
		name         string
		sizeX, sizeZ float32
		dx, dz       int
	}{
		{"zero dims x", 10, 10, 0, 4},
		{"negative dims z", 10, 10, 4, -1},
		{"zero size", 0, 10, 4, 4},
		{"negative size", 10, -5, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpatialGrid(mgl32.Vec3{}, tt.sizeX, tt.sizeZ, tt.dx, tt.dz, testWorldBounds())
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("err = %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestSpatialGridCellSize(t *testing.T) {
	g := newTestGrid(t, 8)
	cx, cz := g.CellSize()
	assertNear(t, "cellX", cx, 20)
	assertNear(t, "cellZ", cz, 20)
	dx, dz := g.Dims()
	if dx != 8 || dz != 8 {
		t.Errorf("Dims = %d,%d, want 8,8", dx, dz)
	}
}

func TestCellIDAt(t *testing.T) {
	g := newTestGrid(t, 8)
	tests := []struct {
		name string
		p    mgl32.Vec3
		want CellID
	}{
		{"origin corner", mgl32.Vec3{-80, 0, -80}, CellID{0, 0}},
		{"first cell interior", mgl32.Vec3{-70, 5, -61}, CellID{0, 0}},
		{"cell boundary", mgl32.Vec3{-60, 0, -60}, CellID{1, 1}},
		{"center", mgl32.Vec3{0, 0, 0}, CellID{4, 4}},
		{"far corner", mgl32.Vec3{80, 0, 80}, CellID{7, 7}},
		{"clamped low", mgl32.Vec3{-500, 0, -1e9}, CellID{0, 0}},
		{"clamped high", mgl32.Vec3{1e9, 0, 300}, CellID{7, 7}},
		{"mixed", mgl32.Vec3{-1000, 0, 15}, CellID{0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellIDAt(tt.p); got != tt.want {
				t.Errorf("CellIDAt(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCellIDAtIdempotent(t *testing.T) {
	g := newTestGrid(t, 5)
	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		p := mgl32.Vec3{
			float32(rng.Float64()*400 - 200),
			0,
			float32(rng.Float64()*400 - 200),
		}
		id := g.CellIDAt(p)
		center := g.BoundsOf(id).Center()
		if again := g.CellIDAt(center); again != id {
			t.Fatalf("CellIDAt(BoundsOf(%v).Center()) = %v", id, again)
		}
	}
}

func TestBoundsOfContainsInAreaPoints(t *testing.T) {
	g := newTestGrid(t, 6)
	rng := rand.New(rand.NewPCG(7, 7))
	for range 1000 {
		p := mgl32.Vec3{
			float32(rng.Float64()*160 - 80),
			float32(rng.Float64() * 30),
			float32(rng.Float64()*160 - 80),
		}
		b := g.BoundsOf(g.CellIDAt(p))
		if !b.Contains(p) {
			t.Fatalf("BoundsOf(CellIDAt(%v)) = %v does not contain the point", p, b)
		}
	}
}

func TestBoundsOfVerticalExtent(t *testing.T) {
	g := newTestGrid(t, 4)
	b := g.BoundsOf(CellID{2, 1})
	assertVec(t, "min", b.Min, mgl32.Vec3{0, -10, -40})
	assertVec(t, "max", b.Max, mgl32.Vec3{40, 40, 0})
}

func TestSingleCellGrid(t *testing.T) {
	g := newTestGrid(t, 1)
	for _, p := range []mgl32.Vec3{{-80, 0, -80}, {0, 0, 0}, {79, 0, 79}, {1e6, 0, -1e6}} {
		if id := g.CellIDAt(p); id != (CellID{}) {
			t.Errorf("CellIDAt(%v) = %v, want {0 0}", p, id)
		}
	}
}

func BenchmarkCellIDAt(b *testing.B) {
	g := newTestGrid(b, 16)
	p := mgl32.Vec3{12.5, 0, -33.1}
	b.ReportAllocs()
	for b.Loop() {
		_ = g.CellIDAt(p)
	}
}
