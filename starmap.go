package starmap

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Scaled returns the color with R, G and B multiplied by f. Alpha is untouched.
func (c Color) Scaled(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A}
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// CenterX returns the x coordinate of the rectangle's center.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the y coordinate of the rectangle's center.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Clamp restricts v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(v, r.Max))
}

// WhitePixel is a 1x1 white image used for solid color quads (links, rings).
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// NodeKind distinguishes seed anchors from recommended discoveries.
type NodeKind uint8

const (
	KindSeed           NodeKind = iota // user-chosen anchor artist
	KindRecommendation                 // discovered artist
)

// NodeTier is a node's visual/behavioral category, distinct from its kind.
// The renderer dispatches glyph drawing exhaustively over this closed set.
type NodeTier uint8

const (
	TierNormal      NodeTier = iota // plain recommendation
	TierHiddenGem                   // low-popularity, high-affinity find
	TierChainBridge                 // connects otherwise-distant clusters
	TierDrift                       // peripheral discovery on the outer orbit
)

// LinkCategory classifies a link for distance/opacity/dash derivation.
type LinkCategory uint8

const (
	LinkIntraCluster LinkCategory = iota // link within one cluster
	LinkBridge                           // cross-cluster bridge link
	LinkChain                            // multi-hop similarity chain link
	LinkDrift                            // link to a drift-tier node
)

// Node is one artist on the map. Nodes live in a flat arena slice owned by
// the Graph; links refer to them by index, never by pointer cycles.
//
// Position (X, Y) is owned by the Simulation while it runs and is frozen
// after settle. VX/VY are simulation velocities.
type Node struct {
	ID   string
	Name string
	Kind NodeKind
	Tier NodeTier

	X, Y   float64
	VX, VY float64

	Radius     float64
	Color      Color
	Glow       Color
	Brightness float64 // [0, 1]
	Score      float64 // composite relevance score, [0, 1]

	Genres   []string
	ImageRef string
	Cluster  int // cluster index, -1 when unclustered

	// HasPosition is false until the layout assigns coordinates. Nodes
	// without a position are skipped during drawing rather than raising.
	HasPosition bool
}

// Link connects two nodes by arena index. Endpoints are resolved at build
// time; a link whose endpoint fails to resolve is dropped, never dangling.
type Link struct {
	Source, Target int
	Strength       float64 // (0, 1]
	Category       LinkCategory
	Opacity        float64
	Dashed         bool
}

// ClusterMeta describes one cluster's settled geometry and labeling.
// VisualRadius is always recomputed after layout settles, never hand-set.
type ClusterMeta struct {
	Index        int
	CX, CY       float64
	VisualRadius float64
	Color        Color
	MemberCount  int
	RecCount     int
	Labels       []string // up to 3 representative names
}

// Transform is the camera's affine view state: screen = world*Scale + (X, Y).
// Scale is always clamped to the owning camera's [min, max] range.
type Transform struct {
	X, Y  float64
	Scale float64
}

// Apply converts a world point to screen space through the view matrix.
func (t Transform) Apply(wx, wy float64) (sx, sy float64) {
	return transformPoint(affineFromTransform(t), wx, wy)
}

// Invert converts a screen point to world space through the inverse view
// matrix.
func (t Transform) Invert(sx, sy float64) (wx, wy float64) {
	return transformPoint(invertAffine(affineFromTransform(t)), sx, sy)
}

// --- Small math helpers ---

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothstep ramps from 0 at edge0 to 1 at edge1 with zero slope at both
// ends. Used for every LOD blend so zoom reads as a dissolve, not a pop.
func smoothstep(edge0, edge1, v float64) float64 {
	if edge0 == edge1 {
		if v < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((v-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
