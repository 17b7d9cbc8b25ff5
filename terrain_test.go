package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func smallTerrainConfig() TerrainConfig {
	cfg := DefaultTerrainConfig()
	cfg.Origin = mgl32.Vec3{-50, 5, -50}
	cfg.Size = [2]float32{100, 100}
	cfg.Resolution = 33
	return cfg
}

func TestTerrainFlat(t *testing.T) {
	cfg := smallTerrainConfig()
	cfg.HeightScale = 0
	tr := NewTerrain(cfg)

	h, ok := tr.HeightAt(mgl32.Vec3{3, 100, -7})
	if !ok {
		t.Fatal("HeightAt inside the terrain failed")
	}
	assertNear(t, "height", h, 5)

	slope, moisture, ok := tr.TrySample(mgl32.Vec3{10, 0, 10})
	if !ok {
		t.Fatal("TrySample inside the terrain failed")
	}
	assertNear(t, "slope", slope, 0)
	// inverse slope is 1, blended 40% toward noise in [0, 1]
	if moisture < 0.6-epsilon || moisture > 1 {
		t.Errorf("moisture = %v, want within [0.6, 1]", moisture)
	}

	p, n, ok := tr.CastDown(mgl32.Vec3{0, 50, 0}, 100)
	if !ok {
		t.Fatal("CastDown missed a flat terrain")
	}
	assertVec(t, "hit", p, mgl32.Vec3{0, 5, 0})
	assertVec(t, "normal", n, Up)
}

func TestTerrainOutside(t *testing.T) {
	tr := NewTerrain(smallTerrainConfig())
	outside := []mgl32.Vec3{
		{-51, 0, 0},
		{0, 0, 50.5},
		{200, 0, 200},
	}
	for _, p := range outside {
		if _, _, ok := tr.TrySample(p); ok {
			t.Errorf("TrySample(%v) ok outside the terrain", p)
		}
		if _, _, ok := tr.CastDown(p.Add(mgl32.Vec3{0, 100, 0}), 500); ok {
			t.Errorf("CastDown(%v) hit outside the terrain", p)
		}
		if _, ok := tr.HeightAt(p); ok {
			t.Errorf("HeightAt(%v) ok outside the terrain", p)
		}
	}
	// edges are inside
	if _, _, ok := tr.TrySample(mgl32.Vec3{50, 0, 50}); !ok {
		t.Error("far corner rejected")
	}
}

func TestTerrainCastDownRange(t *testing.T) {
	cfg := smallTerrainConfig()
	cfg.HeightScale = 0
	tr := NewTerrain(cfg)
	if _, _, ok := tr.CastDown(mgl32.Vec3{0, 50, 0}, 10); ok {
		t.Error("hit beyond maxDistance")
	}
	if _, _, ok := tr.CastDown(mgl32.Vec3{0, 4, 0}, 10); ok {
		t.Error("hit from below the surface")
	}
}

func TestTerrainMasksInRange(t *testing.T) {
	tr := NewTerrain(smallTerrainConfig())
	b := tr.Bounds()
	for z := float32(-50); z <= 50; z += 7.3 {
		for x := float32(-50); x <= 50; x += 7.3 {
			p := mgl32.Vec3{x, 0, z}
			s, m, ok := tr.TrySample(p)
			if !ok {
				t.Fatalf("TrySample(%v) failed", p)
			}
			if s < 0 || s > 1 || m < 0 || m > 1 {
				t.Fatalf("masks at %v = %v, %v", p, s, m)
			}
			h, _ := tr.HeightAt(p)
			if h < b.Min[1]-epsilon || h > b.Max[1]+epsilon {
				t.Fatalf("height %v outside bounds %v", h, b)
			}
			hit, n, ok := tr.CastDown(mgl32.Vec3{x, b.Max[1] + 1, z}, 1000)
			if !ok {
				t.Fatalf("CastDown at %v missed", p)
			}
			assertNear(t, "hit height", hit[1], h)
			if n[1] <= 0 || !approxEqual(n.Len(), 1, epsilon) {
				t.Fatalf("normal %v not an upward unit vector", n)
			}
		}
	}
}

func TestTerrainDeterministic(t *testing.T) {
	a := NewTerrain(smallTerrainConfig())
	b := NewTerrain(smallTerrainConfig())
	cfg := smallTerrainConfig()
	cfg.Seed++
	c := NewTerrain(cfg)

	same := true
	for i := range a.heights {
		if a.heights[i] != b.heights[i] {
			t.Fatalf("height %d differs between equal seeds", i)
		}
		if a.heights[i] != c.heights[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestNoiseFieldRange(t *testing.T) {
	n := newNoiseField(3)
	other := newNoiseField(4)
	differs := false
	for i := range 500 {
		x := float32(i)*0.37 - 90
		z := float32(i)*-0.61 + 40
		v := n.at(x, z)
		if v < 0 || v > 1 {
			t.Fatalf("noise(%v, %v) = %v", x, z, v)
		}
		if f := n.fbm(x, z, 0.05, 4, 0.5, 2); f < 0 || f > 1 {
			t.Fatalf("fbm(%v, %v) = %v", x, z, f)
		}
		if v != other.at(x, z) {
			differs = true
		}
	}
	if n.at(2.5, 3.5) != newNoiseField(3).at(2.5, 3.5) {
		t.Error("noise not repeatable for equal seeds")
	}
	if !differs {
		t.Error("different seeds produced identical noise")
	}
}

func BenchmarkNewTerrain(b *testing.B) {
	cfg := DefaultTerrainConfig()
	for b.Loop() {
		NewTerrain(cfg)
	}
}
