package starmap

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween durations in seconds, by operation. Wheel zooms are short so the
// view stays responsive under repeated ticks; cluster jumps are longer.
const (
	TweenWheelZoom   = 0.18
	TweenResetView   = 0.7
	TweenClusterJump = 0.9
	TweenNodeFocus   = 0.6
)

// Zoom clamp ranges. Detail (single-cluster) views clamp tightest; the
// multi-cluster overview is widest.
var (
	ZoomRangeOverview = Range{Min: 0.08, Max: 5.0}
	ZoomRangeCluster  = Range{Min: 0.25, Max: 5.0}
)

// camAnim holds active tweens for camera X, Y and scale.
type camAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	tweenS *gween.Tween
	done   bool
}

// Camera holds the affine 2D view transform (translate + uniform scale)
// and animates transitions between transforms. All camera changes that are
// not raw drag panning go through a time-bounded ease-out-cubic tween.
type Camera struct {
	Transform Transform
	ZoomRange Range

	anim *camAnim
}

// NewCamera creates a camera at identity with the overview zoom range.
func NewCamera() *Camera {
	return &Camera{
		Transform: Transform{Scale: 1},
		ZoomRange: ZoomRangeOverview,
	}
}

// Animating reports whether a transform tween is in flight.
func (c *Camera) Animating() bool {
	return c.anim != nil && !c.anim.done
}

// Update advances any active tween by dt seconds.
func (c *Camera) Update(dt float64) {
	if c.anim == nil || c.anim.done {
		return
	}
	fdt := float32(dt)
	x, doneX := c.anim.tweenX.Update(fdt)
	y, doneY := c.anim.tweenY.Update(fdt)
	s, doneS := c.anim.tweenS.Update(fdt)
	c.Transform.X = float64(x)
	c.Transform.Y = float64(y)
	c.Transform.Scale = c.ZoomRange.Clamp(float64(s))
	if doneX && doneY && doneS {
		c.anim.done = true
		c.anim = nil
	}
}

// GlideTo animates the camera to the target transform over duration seconds
// with an ease-out-cubic curve. A new glide replaces any active one.
func (c *Camera) GlideTo(target Transform, duration float64) {
	target.Scale = c.ZoomRange.Clamp(target.Scale)
	if duration <= 0 {
		c.Transform = target
		c.anim = nil
		return
	}
	d := float32(duration)
	c.anim = &camAnim{
		tweenX: gween.New(float32(c.Transform.X), float32(target.X), d, ease.OutCubic),
		tweenY: gween.New(float32(c.Transform.Y), float32(target.Y), d, ease.OutCubic),
		tweenS: gween.New(float32(c.Transform.Scale), float32(target.Scale), d, ease.OutCubic),
	}
}

// CancelGlide stops any active tween, leaving the transform where it is.
func (c *Camera) CancelGlide() {
	c.anim = nil
}

// Pan offsets the transform immediately. Used for raw pointer-drag panning,
// the one camera change that bypasses tweening. Cancels any active glide so
// the user's drag always wins.
func (c *Camera) Pan(dx, dy float64) {
	c.CancelGlide()
	c.Transform.X += dx
	c.Transform.Y += dy
}

// ZoomBy computes the transform for scaling by factor about the screen
// pivot (px, py): the world point under the pivot is invariant under the
// rescale. The result is returned rather than applied so callers decide
// between snapping (pinch) and tweening (wheel).
func (c *Camera) ZoomBy(factor, px, py float64) Transform {
	cur := c.targetTransform()
	newScale := c.ZoomRange.Clamp(cur.Scale * factor)
	f := newScale / cur.Scale

	// Rescale about the pivot: a scale-about-point matrix composed onto
	// the current view matrix.
	pivot := [6]float64{f, 0, 0, f, px * (1 - f), py * (1 - f)}
	m := multiplyAffine(pivot, affineFromTransform(cur))
	return Transform{X: m[4], Y: m[5], Scale: newScale}
}

// targetTransform returns where the camera is heading: the tween's end
// state while animating, else the current transform. Chained wheel ticks
// compose against the destination so they don't fight the tween.
func (c *Camera) targetTransform() Transform {
	if c.anim == nil || c.anim.done {
		return c.Transform
	}
	// gween tweens expose no end accessor; advance clones far past the
	// duration to read the terminal values.
	x, _ := cloneEnd(c.anim.tweenX)
	y, _ := cloneEnd(c.anim.tweenY)
	s, _ := cloneEnd(c.anim.tweenS)
	return Transform{X: x, Y: y, Scale: c.ZoomRange.Clamp(s)}
}

// cloneEnd reads a tween's terminal value without disturbing it.
func cloneEnd(t *gween.Tween) (float64, bool) {
	clone := *t
	v, done := clone.Update(1e9)
	return float64(v), done
}

// FitToBounds computes the transform that fits the bounds of the given
// nodes (position ± radius) inside a viewport with the given padding.
// Nodes without positions are ignored; an empty set yields identity.
func FitToBounds(nodes []*Node, viewportW, viewportH, padding float64) Transform {
	bounds := boundsOf(nodes)
	return fitRect(bounds, viewportW, viewportH, padding)
}

// FitRect is FitToBounds for a precomputed world rectangle.
func FitRect(bounds Rect, viewportW, viewportH, padding float64) Transform {
	return fitRect(bounds, viewportW, viewportH, padding)
}

func fitRect(bounds Rect, viewportW, viewportH, padding float64) Transform {
	if bounds.Width <= 0 && bounds.Height <= 0 {
		return Transform{X: viewportW / 2, Y: viewportH / 2, Scale: 1}
	}

	availW := math.Max(viewportW-2*padding, 1)
	availH := math.Max(viewportH-2*padding, 1)

	w := math.Max(bounds.Width, 1e-6)
	h := math.Max(bounds.Height, 1e-6)
	scale := math.Min(availW/w, availH/h)

	return Transform{
		X:     viewportW/2 - bounds.CenterX()*scale,
		Y:     viewportH/2 - bounds.CenterY()*scale,
		Scale: scale,
	}
}

// boundsOf computes node bounds (position ± radius) over positioned nodes.
func boundsOf(nodes []*Node) Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, n := range nodes {
		if !n.HasPosition {
			continue
		}
		if first {
			minX, maxX = n.X-n.Radius, n.X+n.Radius
			minY, maxY = n.Y-n.Radius, n.Y+n.Radius
			first = false
			continue
		}
		minX = math.Min(minX, n.X-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
