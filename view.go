package starmap

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// ViewState is the per-frame context shared between the view and its render
// pipeline. It has exactly one writer (the View's frame step); the pipeline
// only reads it. Pointers reference the live node arena.
type ViewState struct {
	Transform Transform
	Hovered   *Node
	Selected  *Node

	// ViewAlpha is this view's cross-fade opacity in [0, 1].
	ViewAlpha float64

	ViewportW float64
	ViewportH float64
}

// ViewOptions configures a View at construction.
type ViewOptions struct {
	ViewportW float64
	ViewportH float64

	// LowPower halves the frame rate target. Set by the host when it knows
	// the device should be throttled; the view never sniffs hardware itself.
	LowPower bool

	// Seed drives all procedural generation (starfield, haze dust). The
	// same seed and data always render the same backdrop.
	Seed uint64

	// PreSettleTicks, when positive, runs the layout synchronously for up
	// to that many ticks before the first frame so the map appears already
	// formed. Zero animates the settling on screen.
	PreSettleTicks int

	// Watermark is stamped onto captured images. Empty disables it.
	Watermark string

	Logger *log.Logger
}

// fitPadding is the screen margin used by every fit-to-content transform.
const fitPadding = 60.0

// nodeFocusScale is the camera scale ZoomToNode glides to.
const nodeFocusScale = 2.2

// View is the explorable map: it owns the graph, the force layout, the
// camera, input handling and the render pipeline, and wires them together.
// All mutation happens on the frame step; the host drives it either through
// the FrameScheduler surface (Advance from an ebiten Update) or directly in
// tests via StepFrames.
type View struct {
	opts  ViewOptions
	log   *log.Logger
	state ViewState

	graph    *Graph
	sim      *Simulation
	cam      *Camera
	input    *InteractionHandler
	pipeline *RenderPipeline
	fade     *Transition
	loop     *Loop
	status   StatusSets

	// outgoing holds the previous scene while a cross-fade is in flight:
	// it renders underneath at the outgoing opacity and is dropped when
	// the fade completes. outState is its frozen view state.
	outgoing *RenderPipeline
	outState ViewState

	// PollInput gates reading live ebiten input during the frame step.
	// Tests disable it and drive the InteractionHandler directly.
	PollInput bool

	// Host callbacks, fired from the frame step. May be nil.
	OnHoverNode  func(*Node)
	OnSelectNode func(*Node)

	frameDT    float64
	fittedOnce bool
	watermark  string
}

// NewView builds a fully wired view over the given graph. The layout starts
// immediately; the scheduler starts stopped.
func NewView(g *Graph, opts ViewOptions) *View {
	if opts.ViewportW <= 0 {
		opts.ViewportW = 1280
	}
	if opts.ViewportH <= 0 {
		opts.ViewportH = 800
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	v := &View{
		opts:      opts,
		log:       logger,
		cam:       NewCamera(),
		pipeline:  NewRenderPipeline(opts.Seed),
		fade:      NewTransition(),
		PollInput: true,
		watermark: opts.Watermark,
	}
	v.state.ViewportW = opts.ViewportW
	v.state.ViewportH = opts.ViewportH
	v.state.ViewAlpha = 1
	v.state.Transform = v.cam.Transform

	v.input = NewInteractionHandler(v.cam, func() []*Node {
		if v.graph == nil {
			return nil
		}
		return v.graph.Nodes
	})
	v.input.OnPan = v.cam.Pan
	v.input.OnZoom = func(factor, px, py float64) {
		v.cam.GlideTo(v.cam.ZoomBy(factor, px, py), TweenWheelZoom)
	}
	v.input.OnPinch = func(factor, px, py float64) {
		v.cam.CancelGlide()
		v.cam.Transform = v.cam.ZoomBy(factor, px, py)
	}
	v.input.OnHover = func(n *Node) {
		v.state.Hovered = n
		if v.OnHoverNode != nil {
			v.OnHoverNode(n)
		}
	}
	v.input.OnClick = func(n *Node) {
		v.state.Selected = n
		if n != nil {
			v.log.Debug("node selected", "id", n.ID, "name", n.Name)
		}
		if v.OnSelectNode != nil {
			v.OnSelectNode(n)
		}
	}

	targetFPS := targetFPSDesktop
	if opts.LowPower {
		targetFPS = targetFPSLowPower
	}
	v.loop = NewLoop(v.frame, targetFPS)

	v.bindData(g)
	return v
}

// bindData installs a graph: builds a fresh simulation, registers the
// settle hook, optionally pre-settles, and hands the data to the pipeline.
func (v *View) bindData(g *Graph) {
	v.graph = g
	v.input.ClearHover()
	v.state.Hovered = nil
	v.state.Selected = nil

	cx := v.opts.ViewportW / 2
	cy := v.opts.ViewportH / 2
	v.sim = NewSimulation(g, cx, cy)
	v.sim.OnSettle(v.onSettle)

	if v.opts.PreSettleTicks > 0 && !v.sim.Settled() {
		ticks := v.sim.Settle(v.opts.PreSettleTicks)
		v.log.Debug("layout pre-settled", "ticks", ticks, "nodes", len(g.Nodes))
	}
	if v.sim.Settled() {
		// Pre-settle fired onSettle and bound the pipeline. An empty graph
		// settles without firing; it has nothing to bind.
		return
	}

	// Animated settle: give the pipeline data now so intermediate frames
	// draw; geometry-derived caches refresh again at settle.
	g.RecomputeClusterMeta()
	v.pipeline.SetData(g, v.opts.Seed)
}

// onSettle runs when the layout freezes: cluster geometry and baked caches
// refresh, and the first settle auto-fits the camera to the content.
func (v *View) onSettle() {
	v.graph.RecomputeClusterMeta()
	v.pipeline.SetData(v.graph, v.opts.Seed)

	if !v.fittedOnce {
		v.fittedOnce = true
		target := FitToBounds(v.graph.Nodes, v.state.ViewportW, v.state.ViewportH, fitPadding)
		v.cam.GlideTo(target, TweenResetView)
	}
	v.log.Info("layout settled", "nodes", len(v.graph.Nodes), "links", len(v.graph.Links))
}

// Scheduler exposes the view's frame control surface.
func (v *View) Scheduler() FrameScheduler { return v.loop }

// Start begins frame processing. Idempotent.
func (v *View) Start() { v.loop.Start() }

// Stop halts frame processing immediately. Idempotent.
func (v *View) Stop() { v.loop.Stop() }

// IsRunning reports whether the frame loop is active.
func (v *View) IsRunning() bool { return v.loop.IsRunning() }

// Advance offers dt elapsed seconds to the frame loop. The host calls this
// once per host frame; it returns true when a frame ran.
func (v *View) Advance(dt float64) bool { return v.loop.Advance(dt) }

// StepFrames drives n frames of dt seconds each, bypassing the frame
// budget. Deterministic driver for tests and warm-up.
func (v *View) StepFrames(n int, dt float64) { v.loop.StepFrames(n, dt) }

// frame is the per-frame step: transition, input, layout tick, camera tween
// and state sync, in that order.
func (v *View) frame(dt float64) {
	v.frameDT = dt
	if v.fade.Update(dt) {
		v.outgoing = nil
	}
	v.input.SetEnabled(v.fade.InputEnabled())

	if v.PollInput && v.input.Enabled() {
		v.input.Poll()
	}

	if v.sim != nil && !v.sim.Settled() {
		// Layout ticking is fixed-step; when the frame budget delivers
		// more than one nominal step of elapsed time, catch up so the
		// settle animation keeps wall-clock pace at lower frame rates.
		steps := int(dt*targetFPSDesktop + 0.5)
		if steps < 1 {
			steps = 1
		}
		for i := 0; i < steps && !v.sim.Settled(); i++ {
			v.sim.Tick()
		}
	}
	v.cam.Update(dt)

	v.state.Transform = v.cam.Transform
	v.state.ViewAlpha = v.fade.Incoming()
	v.outState.ViewAlpha = v.fade.Outgoing()
}

// Draw renders the current frame state into dst. During a cross-fade the
// outgoing scene draws first at its fading opacity and the incoming one
// composites over it.
func (v *View) Draw(dst *ebiten.Image) {
	dt := v.frameDT
	v.frameDT = 0 // scene clock advances once per stepped frame
	if v.outgoing != nil {
		v.outgoing.Frame(dst, &v.outState, 0)
		v.pipeline.Compose(dst, &v.state, dt)
		return
	}
	v.pipeline.Frame(dst, &v.state, dt)
}

// State returns a snapshot of the current view state.
func (v *View) State() ViewState { return v.state }

// Graph returns the live graph. Callers must not mutate it mid-frame.
func (v *View) Graph() *Graph { return v.graph }

// Camera returns the view's camera for host-driven moves.
func (v *View) Camera() *Camera { return v.cam }

// Input returns the interaction handler, for tests and host event routing.
func (v *View) Input() *InteractionHandler { return v.input }

// SetStatus replaces the status ring name sets on the pipeline.
func (v *View) SetStatus(s StatusSets) {
	v.status = s
	v.pipeline.SetStatus(s)
}

// ResetView glides the camera back to the fit-all-content transform.
func (v *View) ResetView() {
	v.cam.ZoomRange = ZoomRangeOverview
	target := FitToBounds(v.graph.Nodes, v.state.ViewportW, v.state.ViewportH, fitPadding)
	v.cam.GlideTo(target, TweenResetView)
}

// ZoomToCluster glides the camera to frame one cluster, switching to the
// tighter detail zoom range. Unknown indices are ignored.
func (v *View) ZoomToCluster(index int) {
	for _, meta := range v.graph.Clusters {
		if meta.Index != index {
			continue
		}
		r := math.Max(meta.VisualRadius, visualRadiusFloor)
		bounds := Rect{X: meta.CX - r, Y: meta.CY - r, Width: 2 * r, Height: 2 * r}
		v.cam.ZoomRange = ZoomRangeCluster
		v.cam.GlideTo(FitRect(bounds, v.state.ViewportW, v.state.ViewportH, fitPadding), TweenClusterJump)
		return
	}
	v.log.Warn("zoom to unknown cluster", "index", index)
}

// ZoomToNode glides the camera to center a node at focus scale. Unknown ids
// are ignored.
func (v *View) ZoomToNode(id string) {
	n := v.graph.NodeByID(id)
	if n == nil || !n.HasPosition {
		v.log.Warn("zoom to unknown node", "id", id)
		return
	}
	scale := v.cam.ZoomRange.Clamp(nodeFocusScale)
	v.cam.GlideTo(Transform{
		X:     v.state.ViewportW/2 - n.X*scale,
		Y:     v.state.ViewportH/2 - n.Y*scale,
		Scale: scale,
	}, TweenNodeFocus)
}

// ZoomBy zooms by factor about the viewport center with the wheel tween.
// Host keyboard/button zoom controls route through here.
func (v *View) ZoomBy(factor float64) {
	target := v.cam.ZoomBy(factor, v.state.ViewportW/2, v.state.ViewportH/2)
	v.cam.GlideTo(target, TweenWheelZoom)
}

// ReplaceData swaps in a new graph behind a cross-fade: the previous scene
// keeps rendering underneath at the outgoing opacity while the new one
// fades in over it. Input is disabled for the duration of the fade; hover
// and selection reset so no callback ever references a node from the old
// arena.
func (v *View) ReplaceData(g *Graph) {
	v.outgoing = v.pipeline
	v.outState = v.state
	v.outState.Hovered = nil
	v.outState.Selected = nil

	v.pipeline = NewRenderPipeline(v.opts.Seed)
	v.pipeline.SetStatus(v.status)
	v.fade.Begin()
	v.fittedOnce = false
	v.bindData(g)
}

// RevealDrift appends newly surfaced drift discoveries to the live graph
// and reheats the layout so they settle onto the outer orbit. Existing node
// positions are preserved.
func (v *View) RevealDrift(drifts []DriftInput) {
	if len(drifts) == 0 {
		return
	}
	nodes, links := AppendDrift(v.graph, drifts)
	v.sim.Merge(nodes, links)
	v.log.Debug("drift revealed", "added", len(nodes))
}
