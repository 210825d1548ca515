package starmap

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// hazeTexSize is the side of each baked cluster haze texture. The texture
// covers the cluster's visual radius with generous margin so gradient
// falloff never clips.
const (
	hazeTexSize   = 256
	hazeMargin    = 1.5 // texture world extent = visualRadius * 2 * margin
	hazeDustCount = 140
	hazeCoreCount = 5
)

// bakedHaze is one cluster's pre-rendered nebula, with the world-space
// placement of the texture.
type bakedHaze struct {
	img     *ebiten.Image
	originX float64 // world coords of the texture's top-left
	originY float64
	extent  float64 // world width/height the texture spans

	// Geometry signature; a change forces a rebake.
	cx, cy, radius float64
}

// HazeCache owns baked nebula textures keyed by cluster index. It is an
// explicit object owned by one RenderPipeline, never shared or global.
// Entries rebake when the cluster's settled geometry changes and are
// dropped wholesale by Invalidate (data replacement); there is no other
// eviction, as a universe holds at most a handful of clusters.
type HazeCache struct {
	baked map[int]*bakedHaze
	seed  uint64
	soft  *ebiten.Image
}

// NewHazeCache creates a cache whose procedural scatter derives from seed.
// The same seed and cluster geometry always produce the same dust.
func NewHazeCache(seed uint64) *HazeCache {
	return &HazeCache{baked: make(map[int]*bakedHaze), seed: seed}
}

// Invalidate drops every baked texture. Call on data replacement.
func (h *HazeCache) Invalidate() {
	h.baked = make(map[int]*bakedHaze)
}

// For returns the baked haze for a cluster, baking or rebaking if its
// geometry changed since the last bake.
func (h *HazeCache) For(meta ClusterMeta) *bakedHaze {
	if b, ok := h.baked[meta.Index]; ok &&
		b.cx == meta.CX && b.cy == meta.CY && b.radius == meta.VisualRadius {
		return b
	}
	b := h.bake(meta)
	h.baked[meta.Index] = b
	return b
}

// bake renders one cluster's nebula: layered radial gradients in the
// cluster color, a deterministic dust scatter, and a few brighter core
// points. All randomness comes from a PCG keyed on (cache seed, cluster
// index) so the distribution is stable frame to frame and run to run.
func (h *HazeCache) bake(meta ClusterMeta) *bakedHaze {
	if h.soft == nil {
		h.soft = radialTexture(func(d float64) float64 {
			return math.Pow(clamp(1-d, 0, 1), 2.2)
		})
	}

	rng := rand.New(rand.NewPCG(h.seed, uint64(meta.Index)+1))

	extent := meta.VisualRadius * 2 * hazeMargin
	img := ebiten.NewImage(hazeTexSize, hazeTexSize)
	texPerWorld := float64(hazeTexSize) / extent
	center := float64(hazeTexSize) / 2

	// Gradient cloud layers: one broad base plus offset lobes.
	layers := 3 + rng.IntN(2)
	for i := 0; i < layers; i++ {
		var ox, oy, size, alpha float64
		if i == 0 {
			size = meta.VisualRadius * 2.2
			alpha = 0.35
		} else {
			a := rng.Float64() * 2 * math.Pi
			d := meta.VisualRadius * (0.2 + 0.5*rng.Float64())
			ox = d * math.Cos(a)
			oy = d * math.Sin(a)
			size = meta.VisualRadius * (0.9 + 0.8*rng.Float64())
			alpha = 0.12 + 0.15*rng.Float64()
		}
		tint := meta.Color.Scaled(0.8 + 0.4*rng.Float64()).WithAlpha(alpha)
		drawTexCentered(img, h.soft,
			center+ox*texPerWorld, center+oy*texPerWorld,
			size*2*texPerWorld, tint, true)
	}

	// Dust: small faint points concentrated toward the center.
	for i := 0; i < hazeDustCount; i++ {
		a := rng.Float64() * 2 * math.Pi
		// Square-root bias pushes density inward.
		d := meta.VisualRadius * 1.1 * math.Sqrt(rng.Float64())
		x := center + d*math.Cos(a)*texPerWorld
		y := center + d*math.Sin(a)*texPerWorld
		size := 1 + rng.Float64()*1.6
		alpha := 0.12 + 0.3*rng.Float64()
		fillDot(img, x, y, size, meta.Color.Scaled(1.2).WithAlpha(alpha))
	}

	// Core points: a few brighter motes near the heart of the cluster.
	for i := 0; i < hazeCoreCount; i++ {
		a := rng.Float64() * 2 * math.Pi
		d := meta.VisualRadius * 0.4 * rng.Float64()
		x := center + d*math.Cos(a)*texPerWorld
		y := center + d*math.Sin(a)*texPerWorld
		drawTexCentered(img, h.soft, x, y, 8+rng.Float64()*10,
			ColorWhite.WithAlpha(0.5+0.3*rng.Float64()), true)
	}

	return &bakedHaze{
		img:     img,
		originX: meta.CX - extent/2,
		originY: meta.CY - extent/2,
		extent:  extent,
		cx:      meta.CX,
		cy:      meta.CY,
		radius:  meta.VisualRadius,
	}
}

// draw blits the baked texture into screen space under the view transform.
func (b *bakedHaze) draw(dst *ebiten.Image, t Transform, alpha float64) {
	if alpha <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	s := b.extent / hazeTexSize * t.Scale
	op.GeoM.Scale(s, s)
	sx, sy := t.Apply(b.originX, b.originY)
	op.GeoM.Translate(sx, sy)
	a := float32(clamp(alpha, 0, 1))
	op.ColorScale.Scale(a, a, a, a)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(b.img, &op)
}

// fillDot draws a tiny solid square, the cheapest stable "point" primitive.
func fillDot(dst *ebiten.Image, cx, cy, size float64, c Color) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(cx-size/2, cy-size/2)
	a := float32(clamp(c.A, 0, 1))
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	dst.DrawImage(WhitePixel, &op)
}
