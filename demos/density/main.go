// Density scatters tens of thousands of grass blades over a flat field and
// spins a camera in its middle. A stress test for collection, culling and
// instanced submission.
//
// Keys: Up doubles the blade count, Down halves it.
package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/grove"
)

const (
	screenW      = 1280
	screenH      = 720
	initialCount = 40_000
	maxCount     = 320_000
	spinDegPerS  = 20
)

type game struct {
	world   *grove.World
	cam     *grove.Camera
	preview *grove.PreviewRenderer
	stats   grove.FrameStats
}

func densityPreset(count int) grove.Preset {
	p := grove.DefaultPreset()
	p.Name = "density"
	p.Area.Origin = [3]float32{-100, 0, -100}
	p.Area.Size = [2]float32{200, 200}
	p.Grid.DimsX, p.Grid.DimsZ = 20, 20
	p.Terrain.Enabled = false
	p.Trees.Enabled = false
	p.Rocks.Enabled = false
	p.Foliage.Enabled = false
	p.Grass.Count = count
	p.Grass.MinSpacing = 0.3
	return p
}

func newGame() (*game, error) {
	p := densityPreset(initialCount)
	res := grove.NewResources()
	w, err := grove.NewWorld(p, grove.WorldEnv{
		Environment: grove.EnvironmentFunc(func(mgl32.Vec3) (float32, float32, bool) {
			return 0.1, 0.8, true
		}),
		Ground:    grove.FlatGround{},
		Resources: res,
		Meshes:    grove.RegisterPlaceholderMeshes(res, &p),
	})
	if err != nil {
		return nil, err
	}
	w.SetDebugMode(true)
	if err := w.Generate(); err != nil {
		return nil, err
	}

	cam := grove.NewCamera("main", float32(screenW)/screenH)
	cam.Position = mgl32.Vec3{0, 2, 0}
	cam.Pitch = -10

	preview := grove.NewPreviewRenderer(res, 3)
	return &game{world: w, cam: cam, preview: preview}, nil
}

func (g *game) regenerate(count int) error {
	count = min(max(count, 1000), maxCount)
	if count == g.world.Preset.Grass.Count {
		return nil
	}
	g.world.Preset.Grass.Count = count
	return g.world.Generate()
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		return g.regenerate(g.world.Preset.Grass.Count * 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		return g.regenerate(g.world.Preset.Grass.Count / 2)
	}
	g.cam.Yaw += spinDegPerS / float32(ebiten.TPS())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x14, B: 0x10, A: 0xff})
	g.preview.Begin(screen)
	g.stats = g.world.Hub().DrawFrame([]*grove.Camera{g.cam}, g.preview)

	s := g.stats
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS %.1f  TPS %.1f\nblades %d (target %d)\nbatches %d/%d  drawn %d  calls %d\n[Up/Down] density",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		s.TotalInstances, g.world.Preset.Grass.Count,
		s.VisibleBatches, s.TotalBatches, s.DrawnInstances, s.DrawCalls,
	))
}

func (g *game) Layout(_, _ int) (int, int) { return screenW, screenH }

func main() {
	g, err := newGame()
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle("Grove - Density Demo")
	ebiten.SetWindowSize(screenW, screenH)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
