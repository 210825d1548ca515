package starmap

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// star is one twinkling background point. Unexported; managed by Starfield.
type star struct {
	x, y  float64 // world coords
	size  float64
	base  float64 // base alpha
	depth float64 // parallax factor, <1 = farther away
	phase float64
	speed float64 // twinkle rate, radians/second
}

// Starfield is a pool of twinkling background points generated once per
// data set and reused every frame. Regenerate only when the world bounds
// change (data replacement), never per frame.
type Starfield struct {
	stars []star
}

// NewStarfield generates count stars across bounds (expanded by margin on
// every side) using the given seed. Identical inputs yield an identical
// field.
func NewStarfield(bounds Rect, margin float64, count int, seed uint64) *Starfield {
	rng := rand.New(rand.NewPCG(seed, 0x57a2))
	f := &Starfield{stars: make([]star, count)}
	x0 := bounds.X - margin
	y0 := bounds.Y - margin
	w := bounds.Width + 2*margin
	h := bounds.Height + 2*margin
	for i := range f.stars {
		f.stars[i] = star{
			x:     x0 + rng.Float64()*w,
			y:     y0 + rng.Float64()*h,
			size:  0.8 + rng.Float64()*1.8,
			base:  0.25 + rng.Float64()*0.55,
			depth: 0.35 + rng.Float64()*0.5,
			phase: rng.Float64() * 2 * math.Pi,
			speed: 0.4 + rng.Float64()*1.4,
		}
	}
	return f
}

// Count returns the pool size.
func (f *Starfield) Count() int { return len(f.stars) }

// Draw renders the field under the view transform at the given time,
// weighted by alpha (the owning view's cross-fade opacity). Parallax
// scales each star's apparent position by its depth so the background
// recedes as the camera pans.
func (f *Starfield) Draw(dst *ebiten.Image, t Transform, now, alpha float64) {
	if alpha <= 0 {
		return
	}
	bw, bh := dst.Bounds().Dx(), dst.Bounds().Dy()
	for i := range f.stars {
		s := &f.stars[i]
		sx := s.x*t.Scale*s.depth + t.X
		sy := s.y*t.Scale*s.depth + t.Y
		if sx < -4 || sy < -4 || sx > float64(bw)+4 || sy > float64(bh)+4 {
			continue
		}
		twinkle := 0.7 + 0.3*math.Sin(now*s.speed+s.phase)
		fillDot(dst, sx, sy, s.size, ColorWhite.WithAlpha(s.base*twinkle*alpha))
	}
}
