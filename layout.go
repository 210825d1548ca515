package starmap

import (
	"math"
	"math/rand/v2"
)

// Simulation constants. Alpha follows the d3-force convention: energy decays
// geometrically toward alphaMin, at which point positions freeze.
const (
	simAlphaInitial  = 1.0
	simAlphaMin      = 0.003
	simAlphaDecay    = 0.0228
	simVelocityDecay = 0.25

	simCenterStrength = 0.03
	simCollidePadding = 4.0

	// Drift orbit: target radius is the larger of 1.6x the core extent and
	// this floor, so the outer ring stays outside the core however much the
	// core grows.
	driftOrbitScale     = 1.6
	driftOrbitFloor     = 400.0
	driftRadialStrength = 0.12

	// Reheat energy when new nodes merge into a settled layout.
	simReheatAlpha = 0.5
)

// Link rest distances keyed by endpoint kinds and link category.
const (
	linkDistSeedSeed = 220.0 // both ends seeds: widest
	linkDistSeedRec  = 130.0 // one end seed
	linkDistSeedGem  = 160.0 // one end seed, gem on the other: wider still
	linkDistRecRec   = 80.0  // neither end seed: narrowest
	linkDistChain    = 60.0  // chain links pull tight
	linkDistDrift    = 320.0 // drift links stay long
)

// Repulsion magnitudes by tier/kind. Negative values repel, d3-style.
const (
	chargeSeed   = -900.0
	chargeNormal = -320.0
	chargeGem    = -180.0
	chargeBridge = -320.0
	chargeDrift  = -90.0
)

// Simulation runs the iterative force layout over a graph's node arena.
// It is single-threaded: exactly one owner mutates positions per tick,
// and rendering reads them only between ticks.
type Simulation struct {
	nodes []*Node
	links []Link

	alpha    float64
	settled  bool
	onSettle []func()

	centerX, centerY float64

	rng *rand.Rand
}

// NewSimulation creates a simulation over the graph's nodes and links,
// centered on the given world point. Nodes without positions are scattered
// deterministically around the center (phyllotaxis, like d3) so identical
// input yields identical first frames.
func NewSimulation(g *Graph, centerX, centerY float64) *Simulation {
	s := &Simulation{
		nodes:   g.Nodes,
		links:   g.Links,
		alpha:   simAlphaInitial,
		centerX: centerX,
		centerY: centerY,
		rng:     rand.New(rand.NewPCG(0x5eed, uint64(len(g.Nodes)))),
	}
	s.placeInitial(g.Nodes, 0)
	if len(s.nodes) == 0 {
		// An empty simulation has nothing to settle; report settled at once.
		s.alpha = 0
		s.settled = true
	}
	return s
}

// placeInitial assigns phyllotaxis positions to unpositioned nodes starting
// at ordinal offset.
func (s *Simulation) placeInitial(nodes []*Node, offset int) {
	const radiusStep = 14.0
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i, n := range nodes {
		if n.HasPosition {
			continue
		}
		ord := float64(offset + i)
		r := radiusStep * math.Sqrt(0.5+ord)
		a := ord * goldenAngle
		n.X = s.centerX + r*math.Cos(a)
		n.Y = s.centerY + r*math.Sin(a)
		n.HasPosition = true
	}
}

// Alpha returns the current simulation energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Settled reports whether the simulation energy has dropped below the
// threshold and positions are frozen.
func (s *Simulation) Settled() bool { return s.settled }

// OnSettle registers a callback fired once when the simulation settles.
// Settling again after a reheat fires the callbacks again.
func (s *Simulation) OnSettle(fn func()) {
	s.onSettle = append(s.onSettle, fn)
}

// Tick advances the simulation by one step. No-op once settled.
func (s *Simulation) Tick() {
	if s.settled {
		return
	}

	s.alpha += (0 - s.alpha) * simAlphaDecay
	if s.alpha < simAlphaMin || len(s.nodes) == 0 {
		s.freeze()
		return
	}

	s.applyLinkForce()
	s.applyManyBody()
	s.applyCenter()
	s.applyDriftRadial()

	for _, n := range s.nodes {
		n.VX *= 1 - simVelocityDecay
		n.VY *= 1 - simVelocityDecay
		n.X += n.VX
		n.Y += n.VY
	}

	s.applyCollision()
}

// Settle runs ticks synchronously until the simulation settles or maxTicks
// elapse, then freezes. Used to pre-settle layout before first paint.
// Returns the number of ticks executed.
func (s *Simulation) Settle(maxTicks int) int {
	ticks := 0
	for !s.settled && ticks < maxTicks {
		s.Tick()
		ticks++
	}
	if !s.settled {
		s.freeze()
	}
	return ticks
}

// freeze zeroes velocities, marks the simulation settled, and fires the
// settle callbacks once.
func (s *Simulation) freeze() {
	for _, n := range s.nodes {
		n.VX = 0
		n.VY = 0
	}
	s.alpha = 0
	s.settled = true
	for _, fn := range s.onSettle {
		fn()
	}
}

// Reheat raises the simulation energy and resumes ticking. Existing node
// positions are preserved.
func (s *Simulation) Reheat(alpha float64) {
	if alpha <= simAlphaMin {
		alpha = simReheatAlpha
	}
	s.alpha = alpha
	s.settled = false
}

// Merge appends newly revealed nodes and links to the live arrays, placing
// the new nodes at a random angle and distance around the centroid of the
// existing layout, then reheats. Existing positions are not reset.
func (s *Simulation) Merge(nodes []*Node, links []Link) {
	cx, cy := s.centerX, s.centerY
	if len(s.nodes) > 0 {
		cx, cy = centroid(s.nodes)
	}
	_, extent := coreExtent(s.nodes)
	if extent < 100 {
		extent = 100
	}

	for _, n := range nodes {
		if !n.HasPosition {
			a := s.rng.Float64() * 2 * math.Pi
			d := extent * (1.1 + 0.6*s.rng.Float64())
			n.X = cx + d*math.Cos(a)
			n.Y = cy + d*math.Sin(a)
			n.HasPosition = true
		}
		s.nodes = append(s.nodes, n)
	}
	s.links = append(s.links, links...)
	s.Reheat(simReheatAlpha)
}

// restDistance returns the link force's target length.
func restDistance(l Link, a, b *Node) float64 {
	switch l.Category {
	case LinkChain:
		return linkDistChain
	case LinkDrift:
		return linkDistDrift
	}
	aSeed := a.Kind == KindSeed
	bSeed := b.Kind == KindSeed
	switch {
	case aSeed && bSeed:
		return linkDistSeedSeed
	case aSeed || bSeed:
		if a.Tier == TierHiddenGem || b.Tier == TierHiddenGem {
			return linkDistSeedGem
		}
		return linkDistSeedRec
	default:
		return linkDistRecRec
	}
}

// applyLinkForce pulls linked nodes toward their rest distance. Drift link
// strength is scaled down so the radial orbit constraint dominates.
func (s *Simulation) applyLinkForce() {
	for _, l := range s.links {
		if l.Source < 0 || l.Target < 0 || l.Source >= len(s.nodes) || l.Target >= len(s.nodes) {
			continue
		}
		a := s.nodes[l.Source]
		b := s.nodes[l.Target]

		dx := b.X + b.VX - a.X - a.VX
		dy := b.Y + b.VY - a.Y - a.VY
		dist := math.Hypot(dx, dy)
		if dist < 1e-6 {
			dist = 1e-6
			dx = 1e-6
		}

		strength := l.Strength
		if l.Category == LinkDrift {
			strength *= 0.3
		}

		k := (dist - restDistance(l, a, b)) / dist * s.alpha * strength
		fx := dx * k * 0.5
		fy := dy * k * 0.5

		b.VX -= fx
		b.VY -= fy
		a.VX += fx
		a.VY += fy
	}
}

// charge returns the many-body repulsion magnitude for a node.
func charge(n *Node) float64 {
	if n.Kind == KindSeed {
		return chargeSeed
	}
	switch n.Tier {
	case TierHiddenGem:
		return chargeGem
	case TierChainBridge:
		return chargeBridge
	case TierDrift:
		return chargeDrift
	default:
		return chargeNormal
	}
}

// applyManyBody computes pairwise repulsion. O(n^2), fine at the node
// counts this core handles (a few hundred per universe).
func (s *Simulation) applyManyBody() {
	for i := 0; i < len(s.nodes); i++ {
		a := s.nodes[i]
		for j := i + 1; j < len(s.nodes); j++ {
			b := s.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				d2 = 1
			}
			// Half the combined charge on each end keeps the pair force
			// symmetric without a second pass.
			f := (charge(a) + charge(b)) / 2 * s.alpha / d2
			fx := dx * f
			fy := dy * f
			a.VX += fx
			a.VY += fy
			b.VX -= fx
			b.VY -= fy
		}
	}
}

// applyCenter pulls every node weakly toward the content center.
func (s *Simulation) applyCenter() {
	k := simCenterStrength * s.alpha
	for _, n := range s.nodes {
		n.VX += (s.centerX - n.X) * k
		n.VY += (s.centerY - n.Y) * k
	}
}

// applyDriftRadial constrains drift-tier nodes to an adaptive outer orbit.
// The centroid and extent of the non-drift core are recomputed every tick,
// so the orbit tracks core growth.
func (s *Simulation) applyDriftRadial() {
	center, extent := coreExtent(s.nodes)
	target := math.Max(driftOrbitScale*extent, driftOrbitFloor)

	for _, n := range s.nodes {
		if n.Tier != TierDrift {
			continue
		}
		dx := n.X - center.X
		dy := n.Y - center.Y
		dist := math.Hypot(dx, dy)
		if dist < 1e-6 {
			dx, dist = 1e-6, 1e-6
		}
		k := (target - dist) * driftRadialStrength * s.alpha / dist
		n.VX += dx * k
		n.VY += dy * k
	}
}

// applyCollision enforces a hard minimum separation of summed radii plus
// padding, displacing positions directly (one relaxation pass per tick).
func (s *Simulation) applyCollision() {
	for i := 0; i < len(s.nodes); i++ {
		a := s.nodes[i]
		for j := i + 1; j < len(s.nodes); j++ {
			b := s.nodes[j]
			minDist := a.Radius + b.Radius + simCollidePadding
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 >= minDist*minDist {
				continue
			}
			dist := math.Sqrt(d2)
			if dist < 1e-6 {
				// Coincident nodes: split deterministically along x.
				dx, dy, dist = 1e-3, 0, 1e-3
			}
			overlap := (minDist - dist) / dist * 0.5
			ox := dx * overlap
			oy := dy * overlap
			a.X -= ox
			a.Y -= oy
			b.X += ox
			b.Y += oy
		}
	}
}

// centroid returns the mean position of all nodes.
func centroid(nodes []*Node) (cx, cy float64) {
	if len(nodes) == 0 {
		return 0, 0
	}
	for _, n := range nodes {
		cx += n.X
		cy += n.Y
	}
	return cx / float64(len(nodes)), cy / float64(len(nodes))
}

// coreExtent returns the centroid and maximum radius (distance plus node
// radius) of all non-drift nodes. Drift nodes orbit outside this extent.
func coreExtent(nodes []*Node) (Vec2, float64) {
	var cx, cy float64
	var count int
	for _, n := range nodes {
		if n.Tier == TierDrift {
			continue
		}
		cx += n.X
		cy += n.Y
		count++
	}
	if count == 0 {
		return Vec2{}, 0
	}
	cx /= float64(count)
	cy /= float64(count)

	var extent float64
	for _, n := range nodes {
		if n.Tier == TierDrift {
			continue
		}
		if d := math.Hypot(n.X-cx, n.Y-cy) + n.Radius; d > extent {
			extent = d
		}
	}
	return Vec2{X: cx, Y: cy}, extent
}
