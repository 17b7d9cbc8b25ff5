package grove

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// --- AABB ---

func TestAABBContains(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 5, 10}}
	tests := []struct {
		name   string
		p      mgl32.Vec3
		expect bool
	}{
		{"inside", mgl32.Vec3{5, 2, 5}, true},
		{"min corner", mgl32.Vec3{0, 0, 0}, true},
		{"max corner", mgl32.Vec3{10, 5, 10}, true},
		{"above", mgl32.Vec3{5, 6, 5}, false},
		{"outside x", mgl32.Vec3{-0.1, 2, 5}, false},
		{"outside z", mgl32.Vec3{5, 2, 10.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.expect {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.expect)
			}
		})
	}
}

func TestAABBIntersects(t *testing.T) {
	base := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 10}}
	tests := []struct {
		name   string
		other  AABB
		expect bool
	}{
		{"overlapping", AABB{Min: mgl32.Vec3{5, 5, 5}, Max: mgl32.Vec3{15, 15, 15}}, true},
		{"contained", AABB{Min: mgl32.Vec3{2, 2, 2}, Max: mgl32.Vec3{3, 3, 3}}, true},
		{"touching", AABB{Min: mgl32.Vec3{10, 0, 0}, Max: mgl32.Vec3{20, 10, 10}}, true},
		{"disjoint", AABB{Min: mgl32.Vec3{11, 0, 0}, Max: mgl32.Vec3{20, 10, 10}}, false},
		{"disjoint vertically", AABB{Min: mgl32.Vec3{0, 11, 0}, Max: mgl32.Vec3{10, 20, 10}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expect)
			}
		})
	}
}

func TestAABBEncapsulateFromEmpty(t *testing.T) {
	b := emptyAABB()
	if !b.IsEmpty() {
		t.Fatal("emptyAABB is not empty")
	}
	b = b.Encapsulate(mgl32.Vec3{1, 2, 3})
	if b.IsEmpty() || b.Min != b.Max {
		t.Errorf("single point box = %v", b)
	}
	b = b.Encapsulate(mgl32.Vec3{-1, 5, 0})
	assertVec(t, "min", b.Min, mgl32.Vec3{-1, 2, 0})
	assertVec(t, "max", b.Max, mgl32.Vec3{1, 5, 3})
}

func TestAABBUnionExpand(t *testing.T) {
	a := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})
	b := NewAABB(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{2, 2, 2})
	u := a.Union(b)
	assertVec(t, "union min", u.Min, mgl32.Vec3{-1, -1, -1})
	assertVec(t, "union max", u.Max, mgl32.Vec3{11, 1, 1})
	assertVec(t, "center", u.Center(), mgl32.Vec3{5, 0, 0})
	e := a.Expand(0.5)
	assertVec(t, "expanded size", e.Size(), mgl32.Vec3{3, 3, 3})
}

// --- Range ---

func TestRangeSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r := Range{Min: 0.9, Max: 1.35}
	for range 1000 {
		v := r.Sample(rng)
		if v < r.Min || v > r.Max {
			t.Fatalf("Sample = %v outside %v", v, r)
		}
	}
	fixed := Range{Min: 2, Max: 2}
	if v := fixed.Sample(rng); v != 2 {
		t.Errorf("degenerate range sample = %v", v)
	}
	assertNear(t, "lerp", r.Lerp(0.5), 1.125)
}

func TestClampHelpers(t *testing.T) {
	if clamp01(-1) != 0 || clamp01(2) != 1 || clamp01(0.3) != 0.3 {
		t.Error("clamp01")
	}
	if clampInt(-5, 0, 3) != 0 || clampInt(9, 0, 3) != 3 || clampInt(2, 0, 3) != 2 {
		t.Error("clampInt")
	}
}

// --- Category ---

func TestCategoryNames(t *testing.T) {
	for _, c := range Categories() {
		name := c.String()
		got, err := ParseCategory(name)
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseCategory("shrub"); err == nil {
		t.Error("ParseCategory accepted an unknown name")
	}
	if s := Category(200).String(); s != "category(200)" {
		t.Errorf("String() = %q", s)
	}
}

func TestCategoryText(t *testing.T) {
	var c Category
	if err := c.UnmarshalText([]byte("tree-leaves")); err != nil || c != CategoryTreeLeaves {
		t.Errorf("UnmarshalText = %v, %v", c, err)
	}
	b, err := CategoryGrass.MarshalText()
	if err != nil || string(b) != "grass" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
	if _, err := Category(99).MarshalText(); err == nil {
		t.Error("MarshalText accepted an invalid category")
	}
}

func TestCategoryCounts(t *testing.T) {
	var cc CategoryCounts
	cc.add(CategoryGrass, 3)
	cc.add(CategoryRock, 1)
	cc.add(Category(99), 5)
	if cc.Get(CategoryGrass) != 3 || cc.Get(Category(99)) != 0 {
		t.Errorf("counts = %v", cc)
	}
	m := cc.Map()
	if len(m) != 2 || m["grass"] != 3 || m["rock"] != 1 {
		t.Errorf("Map() = %v", m)
	}
}
