package starmap

import (
	"hash/fnv"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// glyphTexSize is the side of each procedural glyph texture. Glyphs draw
// scaled from this base, so one texture serves every node size.
const glyphTexSize = 64

// GlyphCache owns the procedural textures node glyphs draw from. It is an
// explicit per-pipeline object, not a package global, so independent scene
// instances never collide. Textures are built lazily on first use and live
// for the cache's lifetime (a handful of small images; no eviction needed).
type GlyphCache struct {
	disc *ebiten.Image // solid disc, anti-aliased rim
	soft *ebiten.Image // disc with soft falloff
	glow *ebiten.Image // wide halo falloff
	ring *ebiten.Image // hollow ring outline
}

// NewGlyphCache creates an empty cache; textures build on first draw.
func NewGlyphCache() *GlyphCache {
	return &GlyphCache{}
}

func (c *GlyphCache) ensure() {
	if c.disc != nil {
		return
	}
	c.disc = radialTexture(func(d float64) float64 {
		return clamp((1-d)*float64(glyphTexSize)/2, 0, 1) // 1px AA rim
	})
	c.soft = radialTexture(func(d float64) float64 {
		return math.Pow(clamp(1-d, 0, 1), 1.6)
	})
	c.glow = radialTexture(func(d float64) float64 {
		return 0.85 * math.Pow(clamp(1-d, 0, 1), 3)
	})
	c.ring = radialTexture(func(d float64) float64 {
		const mid, half = 0.82, 0.09
		return clamp(1-math.Abs(d-mid)/half, 0, 1)
	})
}

// radialTexture builds a white texture whose alpha at each pixel is
// fn(normalized distance from center).
func radialTexture(fn func(d float64) float64) *ebiten.Image {
	img := image.NewNRGBA(image.Rect(0, 0, glyphTexSize, glyphTexSize))
	half := float64(glyphTexSize) / 2
	for y := 0; y < glyphTexSize; y++ {
		for x := 0; x < glyphTexSize; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			a := clamp(fn(math.Hypot(dx, dy)), 0, 1)
			i := (y*glyphTexSize + x) * 4
			img.Pix[i] = 255
			img.Pix[i+1] = 255
			img.Pix[i+2] = 255
			img.Pix[i+3] = uint8(a * 255)
		}
	}
	return ebiten.NewImageFromImage(img)
}

// drawTexCentered draws a glyph texture centered at (sx, sy) with the given
// diameter, tint and blend.
func drawTexCentered(dst, tex *ebiten.Image, sx, sy, diameter float64, tint Color, additive bool) {
	if diameter <= 0 || tint.A <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	s := diameter / glyphTexSize
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(sx-diameter/2, sy-diameter/2)
	a := float32(clamp(tint.A, 0, 1))
	op.ColorScale.Scale(float32(tint.R)*a, float32(tint.G)*a, float32(tint.B)*a, a)
	if additive {
		op.Blend = ebiten.BlendLighter
	}
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(tex, &op)
}

// glyphKind is the closed set the node renderer dispatches over. Derived
// from kind and tier: a seed's kind outranks its tier.
type glyphKind uint8

const (
	glyphSeed glyphKind = iota
	glyphPlain
	glyphHiddenGem
	glyphChainBridge
	glyphDrift
)

// glyphFor classifies a node for draw dispatch.
func glyphFor(n *Node) glyphKind {
	if n.Kind == KindSeed {
		return glyphSeed
	}
	switch n.Tier {
	case TierHiddenGem:
		return glyphHiddenGem
	case TierChainBridge:
		return glyphChainBridge
	case TierDrift:
		return glyphDrift
	default:
		return glyphPlain
	}
}

// brightCoreThreshold gates the inner core on plain recommendation discs.
const brightCoreThreshold = 0.72

// drawNodeGlyph renders one node body at screen position (sx, sy) with
// screen radius r. The switch is exhaustive over glyphKind; adding a tier
// means adding an arm here.
func (c *GlyphCache) drawNodeGlyph(dst *ebiten.Image, n *Node, sx, sy, r, alpha, now float64) {
	c.ensure()

	switch glyphFor(n) {
	case glyphSeed:
		drawTexCentered(dst, c.glow, sx, sy, r*5.0, n.Glow.WithAlpha(0.55*alpha), true)
		drawTexCentered(dst, c.disc, sx, sy, r*2, n.Color.WithAlpha(alpha), false)
		drawTexCentered(dst, c.soft, sx, sy, r*1.0, ColorWhite.WithAlpha(0.9*alpha), true)

	case glyphPlain:
		drawTexCentered(dst, c.disc, sx, sy, r*2, n.Color.WithAlpha(alpha), false)
		if n.Brightness > brightCoreThreshold {
			drawTexCentered(dst, c.soft, sx, sy, r*0.9, n.Glow.WithAlpha(0.8*alpha), true)
		}

	case glyphHiddenGem:
		pulse := 0.5 + 0.5*math.Sin(now*1.5+pulsePhase(n.ID))
		drawTexCentered(dst, c.glow, sx, sy, r*4.2, n.Glow.WithAlpha((0.25+0.3*pulse)*alpha), true)
		drawTexCentered(dst, c.soft, sx, sy, r*2, n.Color.WithAlpha(alpha), false)
		fillDiamond(dst, sx, sy, r*1.15, ColorWhite.WithAlpha(0.75*alpha))

	case glyphChainBridge:
		drawTexCentered(dst, c.disc, sx, sy, r*1.3, n.Color.WithAlpha(alpha), false)
		strokeRegularPolygon(dst, sx, sy, r*1.6, 6, now*0.6+pulsePhase(n.ID), 1.5, n.Glow.WithAlpha(0.85*alpha))

	case glyphDrift:
		drawTexCentered(dst, c.ring, sx, sy, r*2.2, n.Color.WithAlpha(0.4*alpha), false)
	}
}

// pulsePhase derives a stable animation phase from a node id, so pulses and
// rotations desynchronize across nodes without per-node animation state.
func pulsePhase(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float64(h.Sum32()%628) / 100 // [0, 2π)
}

// --- Vector primitives (white-pixel triangle quads) ---

// appendQuad appends the two triangles of a quad spanning p0..p3 (in order)
// to the vertex/index buffers.
func appendQuad(verts []ebiten.Vertex, inds []uint16, p [4]Vec2, c Color) ([]ebiten.Vertex, []uint16) {
	a := float32(clamp(c.A, 0, 1))
	base := uint16(len(verts))
	for _, pt := range p {
		verts = append(verts, ebiten.Vertex{
			DstX: float32(pt.X), DstY: float32(pt.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(c.R) * a, ColorG: float32(c.G) * a, ColorB: float32(c.B) * a, ColorA: a,
		})
	}
	inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	return verts, inds
}

// lineQuad computes the four corners of a width-thick quad from (x1,y1) to
// (x2,y2).
func lineQuad(x1, y1, x2, y2, width float64) ([4]Vec2, bool) {
	dx := x2 - x1
	dy := y2 - y1
	ln := math.Hypot(dx, dy)
	if ln < 1e-9 {
		return [4]Vec2{}, false
	}
	// Unit left-perpendicular.
	nx := -dy / ln * width / 2
	ny := dx / ln * width / 2
	return [4]Vec2{
		{x1 + nx, y1 + ny},
		{x2 + nx, y2 + ny},
		{x2 - nx, y2 - ny},
		{x1 - nx, y1 - ny},
	}, true
}

// fillDiamond draws a filled axis-aligned diamond (rotated square) of the
// given half-extent.
func fillDiamond(dst *ebiten.Image, cx, cy, half float64, c Color) {
	a := float32(clamp(c.A, 0, 1))
	pts := [4]Vec2{
		{cx, cy - half},
		{cx + half, cy},
		{cx, cy + half},
		{cx - half, cy},
	}
	verts := make([]ebiten.Vertex, 0, 4)
	for _, pt := range pts {
		verts = append(verts, ebiten.Vertex{
			DstX: float32(pt.X), DstY: float32(pt.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(c.R) * a, ColorG: float32(c.G) * a, ColorB: float32(c.B) * a, ColorA: a,
		})
	}
	inds := []uint16{0, 1, 2, 0, 2, 3}
	dst.DrawTriangles(verts, inds, WhitePixel, nil)
}

// strokeRegularPolygon draws an n-gon outline of the given circumradius,
// rotated by rot radians.
func strokeRegularPolygon(dst *ebiten.Image, cx, cy, radius float64, sides int, rot, width float64, c Color) {
	if sides < 3 {
		return
	}
	var verts []ebiten.Vertex
	var inds []uint16
	prevX := cx + radius*math.Cos(rot)
	prevY := cy + radius*math.Sin(rot)
	for i := 1; i <= sides; i++ {
		a := rot + float64(i)/float64(sides)*2*math.Pi
		x := cx + radius*math.Cos(a)
		y := cy + radius*math.Sin(a)
		if q, ok := lineQuad(prevX, prevY, x, y, width); ok {
			verts, inds = appendQuad(verts, inds, q, c)
		}
		prevX, prevY = x, y
	}
	if len(verts) > 0 {
		dst.DrawTriangles(verts, inds, WhitePixel, nil)
	}
}
