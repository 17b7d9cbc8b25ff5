package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// --- World generation benchmarks ---

func BenchmarkWorldGenerate_Serial(b *testing.B) {
	w, _ := newTestWorld(b, smallPreset())
	for b.Loop() {
		if err := w.Generate(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWorldGenerate_Parallel(b *testing.B) {
	w, _ := newTestWorld(b, smallPreset())
	w.Parallel = true
	for b.Loop() {
		if err := w.Generate(); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Preview benchmarks ---

func BenchmarkPreviewDrawFrame(b *testing.B) {
	w, res := newTestWorld(b, smallPreset())
	if err := w.Generate(); err != nil {
		b.Fatal(err)
	}
	cam := NewCamera("main", 16.0/9.0)
	cam.Position = mgl32.Vec3{0, 30, -40}
	cam.LookAt(mgl32.Vec3{})

	p := NewPreviewRenderer(res, 4)
	screen := ebiten.NewImage(640, 360)
	cams := []*Camera{cam}
	for b.Loop() {
		p.Begin(screen)
		w.Hub().DrawFrame(cams, p)
	}
}
