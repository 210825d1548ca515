package starmap

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// transitionDuration is the fixed length of a view cross-fade in seconds.
const transitionDuration = 0.6

// Transition is the explicit state of a cross-fade between an outgoing and
// an incoming view (overview ↔ cluster detail). The outgoing opacity ramps
// 1→0 while the incoming ramps 0→1 over the same ease-out-cubic curve the
// camera uses. Input belongs to the incoming view only once the fade
// completes; while fading, neither side accepts input.
type Transition struct {
	out    *gween.Tween
	in     *gween.Tween
	outVal float64
	inVal  float64
	active bool
}

// NewTransition returns an idle transition (incoming fully opaque).
func NewTransition() *Transition {
	return &Transition{inVal: 1}
}

// Begin starts a cross-fade. Restarting mid-fade continues from the
// current opacities so a rapid back-and-forth never pops.
func (t *Transition) Begin() {
	from := t.outVal
	to := t.inVal
	if !t.active {
		from, to = 1, 0
	}
	t.out = gween.New(float32(from), 0, transitionDuration, ease.OutCubic)
	t.in = gween.New(float32(to), 1, transitionDuration, ease.OutCubic)
	t.outVal = from
	t.inVal = to
	t.active = true
}

// Update advances the fade by dt seconds. Returns true on the frame the
// transition completes.
func (t *Transition) Update(dt float64) bool {
	if !t.active {
		return false
	}
	fdt := float32(dt)
	o, doneOut := t.out.Update(fdt)
	i, doneIn := t.in.Update(fdt)
	t.outVal = float64(o)
	t.inVal = float64(i)
	if doneOut && doneIn {
		t.active = false
		t.outVal = 0
		t.inVal = 1
		return true
	}
	return false
}

// Active reports whether a fade is in flight.
func (t *Transition) Active() bool { return t.active }

// Outgoing returns the outgoing view's opacity in [0, 1].
func (t *Transition) Outgoing() float64 { return t.outVal }

// Incoming returns the incoming view's opacity in [0, 1].
func (t *Transition) Incoming() float64 { return t.inVal }

// InputEnabled reports whether input should be processed: only when no
// fade is in flight.
func (t *Transition) InputEnabled() bool { return !t.active }
