package starmap

import (
	"bytes"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// LOD thresholds, in camera scale units. Every feature blends over a ramp
// between two thresholds; there are no hard cutoffs anywhere in the
// renderer, so zooming reads as a continuous dissolve.
const (
	hazeFadeStart   = 0.35 // haze is fully on at or below this scale
	hazeFadeEnd     = 0.90 // and gone by this one
	nodeFadeStart   = 0.22
	nodeFadeEnd     = 0.42
	labelFadeStart  = 0.85
	labelFadeEnd    = 1.25
	detailFadeStart = 1.50
	detailFadeEnd   = 2.10
)

// LODFactors are the continuous blend factors for one frame, derived
// purely from camera scale.
type LODFactors struct {
	Haze   float64 // aggregate nebula view; high when zoomed out
	Node   float64 // individual node glyphs
	Label  float64 // selective labels
	Detail float64 // all links, status rings, hover/selection labels
}

// ComputeLOD derives the blend factors for a camera scale.
func ComputeLOD(scale float64) LODFactors {
	return LODFactors{
		Haze:   1 - smoothstep(hazeFadeStart, hazeFadeEnd, scale),
		Node:   smoothstep(nodeFadeStart, nodeFadeEnd, scale),
		Label:  smoothstep(labelFadeStart, labelFadeEnd, scale),
		Detail: smoothstep(detailFadeStart, detailFadeEnd, scale),
	}
}

// StatusSets are the host-supplied name sets that drive the status ring
// overlay pass. Nil maps are valid and mean "no rings of that kind".
type StatusSets struct {
	Favorites  map[string]bool
	Dislikes   map[string]bool
	Discovered map[string]bool
}

// Status ring palette.
var (
	ringFavorite   = hslToColor(seedHue, 0.95, 0.60)
	ringDislike    = hslToColor(0, 0.75, 0.55)
	ringDiscovered = hslToColor(190, 0.80, 0.60)
)

// backgroundColor is the deep-space clear color.
var backgroundColor = Color{R: 0.027, G: 0.031, B: 0.071, A: 1}

// starsPerDataSet is the starfield pool size generated on SetData.
const starsPerDataSet = 400

// RenderPipeline draws one scene per frame as a continuous function of the
// camera transform. It owns every procedural cache (glyphs, haze,
// starfield, label faces) explicitly, so two pipelines never share state,
// and it never mutates graph data.
type RenderPipeline struct {
	glyphs *GlyphCache
	haze   *HazeCache
	stars  *Starfield
	status StatusSets

	graph    *Graph
	labelSet map[string]bool // node ids that get selective labels

	face      *text.GoTextFace
	faceLarge *text.GoTextFace

	now float64 // scene clock in seconds, drives pulse/twinkle/rotation

	// Per-frame scratch buffers, reused to avoid per-link allocations.
	verts []ebiten.Vertex
	inds  []uint16
}

// NewRenderPipeline creates a pipeline whose procedural generation derives
// from seed.
func NewRenderPipeline(seed uint64) *RenderPipeline {
	return &RenderPipeline{
		glyphs: NewGlyphCache(),
		haze:   NewHazeCache(seed),
	}
}

// SetStatus replaces the status ring name sets.
func (p *RenderPipeline) SetStatus(s StatusSets) {
	p.status = s
}

// SetData binds the pipeline to a graph: regenerates the starfield over
// the graph bounds, drops baked haze, and recomputes the selective label
// set (seeds plus the top two recommendations per cluster). Call once per
// data set and again after layout settles if bounds moved materially.
func (p *RenderPipeline) SetData(g *Graph, seed uint64) {
	p.graph = g
	p.haze.Invalidate()

	bounds := g.Bounds()
	if bounds.Width == 0 && bounds.Height == 0 {
		bounds = Rect{X: -500, Y: -500, Width: 1000, Height: 1000}
	}
	margin := math.Max(bounds.Width, bounds.Height) * 0.5
	p.stars = NewStarfield(bounds, margin, starsPerDataSet, seed)

	p.labelSet = selectiveLabels(g, 2)
}

// selectiveLabels picks the node ids labeled at the label LOD: every seed,
// plus the topN highest-scored named recommendations per cluster.
func selectiveLabels(g *Graph, topN int) map[string]bool {
	set := make(map[string]bool)
	best := make(map[int][]*Node) // cluster -> top recommendations

	for _, n := range g.Nodes {
		if n.Name == "" {
			continue
		}
		if n.Kind == KindSeed {
			set[n.ID] = true
			continue
		}
		top := best[n.Cluster]
		top = append(top, n)
		// Insertion sort by score; the slice never exceeds topN+1.
		for i := len(top) - 1; i > 0 && top[i].Score > top[i-1].Score; i-- {
			top[i], top[i-1] = top[i-1], top[i]
		}
		if len(top) > topN {
			top = top[:topN]
		}
		best[n.Cluster] = top
	}
	for _, top := range best {
		for _, n := range top {
			set[n.ID] = true
		}
	}
	return set
}

// Frame clears dst and renders one frame. st is the single-writer shared
// view state (transform, hover, selection, cross-fade opacity) owned by
// the View.
func (p *RenderPipeline) Frame(dst *ebiten.Image, st *ViewState, dt float64) {
	dst.Fill(backgroundColor.toRGBA())
	p.Compose(dst, st, dt)
}

// Compose renders the scene over dst without clearing it first, so an
// incoming view can composite above the outgoing one during a cross-fade.
// Every pass is weighted by st.ViewAlpha.
func (p *RenderPipeline) Compose(dst *ebiten.Image, st *ViewState, dt float64) {
	p.now += dt
	if p.graph == nil {
		return
	}

	t := st.Transform
	lod := ComputeLOD(t.Scale)
	va := clamp(st.ViewAlpha, 0, 1)

	if p.stars != nil {
		p.stars.Draw(dst, t, p.now, va)
	}

	if lod.Haze > 0 {
		p.drawHaze(dst, t, lod.Haze*va)
	}
	if lod.Node > 0 {
		p.drawLinks(dst, t, lod, va)
		p.drawNodes(dst, st, t, lod.Node*va)
		if lod.Detail > 0 {
			p.drawStatusRings(dst, t, lod.Detail*va)
		}
	}
	p.drawLabels(dst, st, t, lod, va)
}

// drawHaze blits every cluster's baked nebula and, while the aggregate
// view dominates, its representative label.
func (p *RenderPipeline) drawHaze(dst *ebiten.Image, t Transform, alpha float64) {
	for _, meta := range p.graph.Clusters {
		if meta.VisualRadius <= 0 {
			continue
		}
		p.haze.For(meta).draw(dst, t, alpha)
	}
}

// linkBaseline is how much of a link's opacity shows before the detail
// ramp; the rest fades in with it.
const linkBaseline = 0.35

// drawLinks renders the link pass as thin premultiplied quads batched into
// one DrawTriangles call. Links with unresolved endpoints never exist (the
// builder drops them); links to unpositioned nodes are skipped.
func (p *RenderPipeline) drawLinks(dst *ebiten.Image, t Transform, lod LODFactors, viewAlpha float64) {
	p.verts = p.verts[:0]
	p.inds = p.inds[:0]

	nodes := p.graph.Nodes
	reveal := linkBaseline + (1-linkBaseline)*lod.Detail

	for _, l := range p.graph.Links {
		if l.Source < 0 || l.Target < 0 || l.Source >= len(nodes) || l.Target >= len(nodes) {
			continue
		}
		a := nodes[l.Source]
		b := nodes[l.Target]
		if !a.HasPosition || !b.HasPosition {
			continue
		}

		alpha := l.Opacity * reveal * lod.Node * viewAlpha
		if alpha <= 0.004 {
			continue
		}

		x1, y1 := t.Apply(a.X, a.Y)
		x2, y2 := t.Apply(b.X, b.Y)
		col := linkColor(l, a, b).WithAlpha(alpha)
		width := clamp(0.6+l.Strength*1.4, 0.6, 2) * math.Min(t.Scale, 1.5)

		if l.Dashed {
			p.appendDashedLine(x1, y1, x2, y2, width, col)
		} else if q, ok := lineQuad(x1, y1, x2, y2, width); ok {
			p.verts, p.inds = appendQuad(p.verts, p.inds, q, col)
		}
	}

	if len(p.verts) > 0 {
		dst.DrawTriangles(p.verts, p.inds, WhitePixel, nil)
	}
}

// linkColor blends the endpoint glow colors; category links tint toward
// their endpoint of interest.
func linkColor(l Link, a, b *Node) Color {
	switch l.Category {
	case LinkDrift:
		return b.Color
	case LinkChain, LinkBridge:
		return Color{R: 0.75, G: 0.80, B: 0.95, A: 1}
	}
	return Color{
		R: (a.Glow.R + b.Glow.R) / 2,
		G: (a.Glow.G + b.Glow.G) / 2,
		B: (a.Glow.B + b.Glow.B) / 2,
		A: 1,
	}
}

// appendDashedLine splits a line into screen-space dashes. Dash phase is
// anchored at the source endpoint so dashes don't crawl as the camera pans.
func (p *RenderPipeline) appendDashedLine(x1, y1, x2, y2, width float64, c Color) {
	const dash, gap = 6.0, 5.0
	dx := x2 - x1
	dy := y2 - y1
	ln := math.Hypot(dx, dy)
	if ln < 1e-9 {
		return
	}
	ux := dx / ln
	uy := dy / ln
	for start := 0.0; start < ln; start += dash + gap {
		end := math.Min(start+dash, ln)
		q, ok := lineQuad(x1+ux*start, y1+uy*start, x1+ux*end, y1+uy*end, width)
		if ok {
			p.verts, p.inds = appendQuad(p.verts, p.inds, q, c)
		}
	}
}

// drawNodes runs the glyph dispatch for every positioned node, then the
// hover/selection emphasis on top.
func (p *RenderPipeline) drawNodes(dst *ebiten.Image, st *ViewState, t Transform, alpha float64) {
	for _, n := range p.graph.Nodes {
		if !n.HasPosition {
			continue // missing position is a skip, never an error
		}
		sx, sy := t.Apply(n.X, n.Y)
		r := n.Radius * t.Scale
		if offscreen(dst, sx, sy, r*6) {
			continue
		}
		p.glyphs.drawNodeGlyph(dst, n, sx, sy, r, alpha, p.now)
	}

	for _, n := range []*Node{st.Hovered, st.Selected} {
		if n == nil || !n.HasPosition {
			continue
		}
		sx, sy := t.Apply(n.X, n.Y)
		r := n.Radius * t.Scale
		pulse := 0.75 + 0.25*math.Sin(p.now*4)
		drawTexCentered(dst, p.glyphs.glow, sx, sy, r*4.5, n.Glow.WithAlpha(0.5*pulse*alpha), true)
	}
}

// drawStatusRings is the overlay pass keyed by name-set membership; rings
// always draw on top of node bodies.
func (p *RenderPipeline) drawStatusRings(dst *ebiten.Image, t Transform, alpha float64) {
	p.glyphs.ensure()
	for _, n := range p.graph.Nodes {
		if !n.HasPosition {
			continue
		}
		var ring Color
		switch {
		case p.status.Favorites[n.Name]:
			ring = ringFavorite
		case p.status.Dislikes[n.Name]:
			ring = ringDislike
		case p.status.Discovered[n.Name]:
			ring = ringDiscovered
		default:
			continue
		}
		sx, sy := t.Apply(n.X, n.Y)
		r := n.Radius * t.Scale
		if offscreen(dst, sx, sy, r*3) {
			continue
		}
		drawTexCentered(dst, p.glyphs.ring, sx, sy, r*2.9, ring.WithAlpha(0.9*alpha), false)
	}
}

// emphasisAlpha is the hover/selection label opacity factor: it rides the
// detail ramp like links do, with a floor so the emphasized name stays
// readable while zoomed out.
func emphasisAlpha(lod LODFactors) float64 {
	return linkBaseline + (1-linkBaseline)*lod.Detail
}

// drawLabels renders cluster labels while the aggregate view dominates,
// selective node labels past the label threshold, and hover/selection
// labels at the detail-ramped emphasis opacity.
func (p *RenderPipeline) drawLabels(dst *ebiten.Image, st *ViewState, t Transform, lod LODFactors, viewAlpha float64) {
	if lod.Haze > 0.5 {
		a := (lod.Haze - 0.5) * 2 * viewAlpha
		for _, meta := range p.graph.Clusters {
			if len(meta.Labels) == 0 {
				continue
			}
			sx, sy := t.Apply(meta.CX, meta.CY)
			p.drawText(dst, meta.Labels[0], sx, sy-meta.VisualRadius*t.Scale-14, a, true)
		}
	}

	if lod.Label > 0 {
		for _, n := range p.graph.Nodes {
			if !n.HasPosition || !p.labelSet[n.ID] {
				continue
			}
			if n == st.Hovered || n == st.Selected {
				continue // emphasized below
			}
			sx, sy := t.Apply(n.X, n.Y)
			if offscreen(dst, sx, sy, 200) {
				continue
			}
			p.drawText(dst, n.Name, sx, sy+n.Radius*t.Scale+6, 0.85*lod.Label*viewAlpha, false)
		}
	}

	// Emphasis never dims a node below its own selective label.
	emph := math.Max(emphasisAlpha(lod), 0.85*lod.Label)
	for _, n := range []*Node{st.Hovered, st.Selected} {
		if n == nil || !n.HasPosition || n.Name == "" {
			continue
		}
		sx, sy := t.Apply(n.X, n.Y)
		p.drawText(dst, n.Name, sx, sy+n.Radius*t.Scale+6, emph*viewAlpha, false)
	}
}

// drawText renders a centered string at (sx, sy top). Faces are built
// lazily from the embedded gofont so the pipeline has no asset files.
func (p *RenderPipeline) drawText(dst *ebiten.Image, s string, sx, sy, alpha float64, large bool) {
	if alpha <= 0.01 || s == "" {
		return
	}
	face := p.labelFace(large)
	if face == nil {
		return
	}
	w, _ := text.Measure(s, face, 0)

	var op text.DrawOptions
	op.GeoM.Translate(sx-w/2, sy)
	a := float32(clamp(alpha, 0, 1))
	op.ColorScale.Scale(0.92*a, 0.95*a, 1*a, a)
	text.Draw(dst, s, face, &op)
}

// labelFace returns the cached label face, building both sizes on first use.
func (p *RenderPipeline) labelFace(large bool) *text.GoTextFace {
	if p.face == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			return nil
		}
		p.face = &text.GoTextFace{Source: src, Size: 13}
		p.faceLarge = &text.GoTextFace{Source: src, Size: 18}
	}
	if large {
		return p.faceLarge
	}
	return p.face
}

// offscreen reports whether a circle of the given radius around (sx, sy)
// lies fully outside the destination image.
func offscreen(dst *ebiten.Image, sx, sy, r float64) bool {
	b := dst.Bounds()
	return sx+r < float64(b.Min.X) || sy+r < float64(b.Min.Y) ||
		sx-r > float64(b.Max.X) || sy-r > float64(b.Max.Y)
}
