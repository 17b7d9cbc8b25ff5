package grove

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// PreviewRenderer draws instanced batches as a top-down map onto an ebiten
// image: every instance becomes a square marker sized by its mesh extent and
// scale, tinted by its material color. It implements Renderer and
// BoundsRenderer. Shadow-pass calls and shadow-only batches are ignored.
type PreviewRenderer struct {
	Resources *Resources
	Center    mgl32.Vec3 // world point shown at the middle of the target
	Scale     float32    // pixels per world unit
	MinSize   float32    // smallest marker edge in pixels

	// BoundsVisible and BoundsCulled color debug bounds outlines.
	BoundsVisible Color
	BoundsCulled  Color

	target *ebiten.Image
	verts  []ebiten.Vertex
	inds   []uint32

	calls     int
	instances int
	outlines  int
}

// NewPreviewRenderer creates a renderer centered on the origin.
func NewPreviewRenderer(res *Resources, scale float32) *PreviewRenderer {
	return &PreviewRenderer{
		Resources:     res,
		Scale:         scale,
		MinSize:       1,
		BoundsVisible: Color{0, 1, 0, 0.6},
		BoundsCulled:  Color{1, 0, 0, 0.6},
	}
}

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily created 1x1 white source image.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// Begin sets the draw target and resets the counters. Call it once per frame
// before Hub.DrawFrame.
func (p *PreviewRenderer) Begin(target *ebiten.Image) {
	p.target = target
	p.calls = 0
	p.instances = 0
	p.outlines = 0
}

// Stats returns the draw calls, instance markers and bounds outlines
// submitted since Begin.
func (p *PreviewRenderer) Stats() (calls, instances, outlines int) {
	return p.calls, p.instances, p.outlines
}

// WorldToScreen maps a world position onto the target. +X is right and +Z is
// up on screen.
func (p *PreviewRenderer) WorldToScreen(v mgl32.Vec3) (x, y float32) {
	var w, h float32
	if p.target != nil {
		b := p.target.Bounds()
		w, h = float32(b.Dx()), float32(b.Dy())
	}
	x = w*0.5 + (v[0]-p.Center[0])*p.Scale
	y = h*0.5 - (v[2]-p.Center[2])*p.Scale
	return x, y
}

// DrawMeshInstanced implements Renderer.
func (p *PreviewRenderer) DrawMeshInstanced(call DrawCall) {
	if p.target == nil || call.Pass == PassShadow || call.Shadow == ShadowOnlyShadows {
		return
	}
	tint := ColorWhite
	var extent float32 = 1
	if p.Resources != nil {
		if m, ok := p.Resources.Material(call.Material); ok {
			tint = m.Color
		}
		if info, ok := p.Resources.Mesh(call.Mesh); ok && info.Extent() > 0 {
			extent = info.Extent()
		}
	}

	p.verts = p.verts[:0]
	p.inds = p.inds[:0]
	for _, m := range call.Matrices {
		x, y := p.WorldToScreen(translationOf(m))
		half := max(p.MinSize, extent*maxScaleOf(m)*p.Scale) * 0.5
		p.appendQuad(x-half, y-half, x+half, y+half, tint)
	}
	p.flush()
	p.calls++
	p.instances += len(call.Matrices)
}

// DrawBounds implements BoundsRenderer by outlining the X/Z footprint of b.
func (p *PreviewRenderer) DrawBounds(b AABB, _ Category, visible bool) {
	if p.target == nil || b.IsEmpty() {
		return
	}
	c := p.BoundsCulled
	if visible {
		c = p.BoundsVisible
	}
	x0, y1 := p.WorldToScreen(b.Min)
	x1, y0 := p.WorldToScreen(b.Max)
	const t = 1 // outline thickness in pixels

	p.verts = p.verts[:0]
	p.inds = p.inds[:0]
	p.appendQuad(x0, y0, x1, y0+t, c)
	p.appendQuad(x0, y1-t, x1, y1, c)
	p.appendQuad(x0, y0, x0+t, y1, c)
	p.appendQuad(x1-t, y0, x1, y1, c)
	p.flush()
	p.outlines++
}

// appendQuad adds an axis-aligned rectangle with premultiplied color c.
func (p *PreviewRenderer) appendQuad(x0, y0, x1, y1 float32, c Color) {
	r, g, b, a := c.R*c.A, c.G*c.A, c.B*c.A, c.A
	base := uint32(len(p.verts))
	for _, v := range [4][2]float32{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		p.verts = append(p.verts, ebiten.Vertex{
			DstX: v[0], DstY: v[1],
			SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	p.inds = append(p.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

func (p *PreviewRenderer) flush() {
	if len(p.inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	p.target.DrawTriangles32(p.verts, p.inds, ensureWhitePixel(), &op)
}
