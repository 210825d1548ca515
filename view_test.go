package starmap

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testView(t *testing.T, opts ViewOptions) *View {
	t.Helper()
	clusters, bridges, drifts := universeFixture()
	g := BuildUniverse(clusters, bridges, drifts)

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.ViewportW == 0 {
		opts.ViewportW, opts.ViewportH = 800, 600
	}
	v := NewView(g, opts)
	v.PollInput = false
	return v
}

func TestNewViewPreSettles(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})

	require.True(t, v.sim.Settled(), "pre-settle should freeze the layout before the first frame")
	for _, n := range v.Graph().Nodes {
		assert.True(t, n.HasPosition, "node %s unpositioned", n.ID)
	}

	// First settle auto-fits: the camera glides toward the content.
	assert.True(t, v.Camera().Animating())
	v.StepFrames(120, 1.0/60)
	assert.False(t, v.Camera().Animating())

	// After the glide, all content sits inside the viewport.
	st := v.State()
	b := v.Graph().Bounds()
	for _, corner := range [][2]float64{
		{b.X, b.Y}, {b.X + b.Width, b.Y + b.Height},
	} {
		sx, sy := st.Transform.Apply(corner[0], corner[1])
		assert.GreaterOrEqual(t, sx, 0.0)
		assert.LessOrEqual(t, sx, st.ViewportW)
		assert.GreaterOrEqual(t, sy, 0.0)
		assert.LessOrEqual(t, sy, st.ViewportH)
	}
}

func TestViewAnimatedSettle(t *testing.T) {
	v := testView(t, ViewOptions{})

	require.False(t, v.sim.Settled(), "without pre-settle the layout animates")
	v.StepFrames(2000, 1.0/60)
	assert.True(t, v.sim.Settled(), "frame stepping should settle the layout")
	assert.Greater(t, v.Graph().Clusters[0].VisualRadius, 0.0)
}

func TestViewClickSelectsAndDeselects(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	v.StepFrames(120, 1.0/60)

	var selected []*Node
	v.OnSelectNode = func(n *Node) { selected = append(selected, n) }

	target := v.Graph().Nodes[0]
	sx, sy := v.State().Transform.Apply(target.X, target.Y)
	v.Input().PointerDown(0, sx, sy)
	v.Input().PointerUp(0, sx, sy)

	require.Len(t, selected, 1)
	assert.Equal(t, target, selected[0])
	assert.Equal(t, target, v.State().Selected)

	// Clicking far away deselects with an explicit nil.
	v.Input().PointerDown(0, -10_000, -10_000)
	v.Input().PointerUp(0, -10_000, -10_000)
	require.Len(t, selected, 2)
	assert.Nil(t, selected[1])
	assert.Nil(t, v.State().Selected)
}

func TestViewReplaceDataFadesAndGatesInput(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	v.StepFrames(10, 1.0/60)

	clusters, _, _ := universeFixture()
	g2 := BuildUniverse(clusters, nil, nil)
	v.ReplaceData(g2)
	v.StepFrames(1, 1.0/60)

	assert.False(t, v.Input().Enabled(), "input disabled during the cross-fade")
	assert.Less(t, v.State().ViewAlpha, 1.0)
	assert.Same(t, g2, v.Graph())
	assert.Nil(t, v.State().Selected)

	v.StepFrames(120, 1.0/60)
	assert.True(t, v.Input().Enabled(), "input re-enabled once the fade completes")
	assert.Equal(t, 1.0, v.State().ViewAlpha)
}

func TestViewReplaceDataCrossFadesOutgoingScene(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	v.StepFrames(10, 1.0/60)
	oldGraph := v.Graph()

	clusters, _, _ := universeFixture()
	g2 := BuildUniverse(clusters, nil, nil)
	v.ReplaceData(g2)
	v.StepFrames(1, 1.0/60)

	// The previous scene is retained and ramps 1 to 0 while the new one
	// ramps 0 to 1; the two opacities stay complementary.
	require.NotNil(t, v.outgoing, "outgoing scene retained for the fade")
	assert.Same(t, oldGraph, v.outgoing.graph)
	assert.Same(t, g2, v.pipeline.graph)
	assert.Greater(t, v.outState.ViewAlpha, 0.0)
	assert.Less(t, v.outState.ViewAlpha, 1.0)
	assert.InDelta(t, 1.0, v.outState.ViewAlpha+v.State().ViewAlpha, 1e-3)
	assert.Nil(t, v.outState.Hovered)
	assert.Nil(t, v.outState.Selected)

	mid := v.outState.ViewAlpha
	v.StepFrames(5, 1.0/60)
	assert.Less(t, v.outState.ViewAlpha, mid, "outgoing opacity keeps falling")

	v.StepFrames(120, 1.0/60)
	assert.Nil(t, v.outgoing, "outgoing scene dropped once the fade completes")
}

func TestViewLowPowerKeepsAnimationPace(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000, LowPower: true})
	v.StepFrames(120, 1.0/60) // finish the auto-fit glide
	v.Start()

	v.ZoomToCluster(0)
	require.True(t, v.Camera().Animating())

	// 1.2 wall seconds of 60 fps offers: only half the frames run under
	// the 30 fps budget, but each carries the skipped time, so the 0.9 s
	// glide still finishes on wall time.
	for i := 0; i < 72; i++ {
		v.Advance(1.0 / 60)
	}
	assert.False(t, v.Camera().Animating(), "throttling halves the frame rate, not the passage of time")
}

func TestViewRevealDrift(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	before := len(v.Graph().Nodes)

	v.RevealDrift([]DriftInput{
		{Artist: Artist{ID: "new-drift", Name: "New Drifter"}, Score: 0.3},
	})

	assert.Len(t, v.Graph().Nodes, before+1)
	assert.False(t, v.sim.Settled(), "reveal reheats the layout")

	v.StepFrames(2000, 1.0/60)
	assert.True(t, v.sim.Settled())
	assert.True(t, v.Graph().NodeByID("new-drift").HasPosition)
}

func TestViewRevealDriftEmptyIsNoop(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	before := len(v.Graph().Nodes)
	v.RevealDrift(nil)
	assert.Len(t, v.Graph().Nodes, before)
	assert.True(t, v.sim.Settled())
}

func TestViewZoomToCluster(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	v.StepFrames(120, 1.0/60)

	v.ZoomToCluster(0)
	assert.True(t, v.Camera().Animating())
	assert.Equal(t, ZoomRangeCluster, v.Camera().ZoomRange)

	v.StepFrames(120, 1.0/60)
	meta := v.Graph().Clusters[0]
	sx, sy := v.State().Transform.Apply(meta.CX, meta.CY)
	assert.InDelta(t, v.State().ViewportW/2, sx, 1.0)
	assert.InDelta(t, v.State().ViewportH/2, sy, 1.0)

	// Unknown cluster index is ignored, not fatal.
	v.ZoomToCluster(99)
}

func TestViewZoomToNode(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	v.StepFrames(120, 1.0/60)

	id := v.Graph().Nodes[0].ID
	v.ZoomToNode(id)
	v.StepFrames(120, 1.0/60)

	n := v.Graph().NodeByID(id)
	sx, sy := v.State().Transform.Apply(n.X, n.Y)
	assert.InDelta(t, v.State().ViewportW/2, sx, 1.0)
	assert.InDelta(t, v.State().ViewportH/2, sy, 1.0)
	assert.InDelta(t, nodeFocusScale, v.State().Transform.Scale, 1e-6)

	v.ZoomToNode("does-not-exist") // ignored
}

func TestViewSchedulerSurface(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000})
	s := v.Scheduler()

	assert.False(t, s.IsRunning())
	assert.False(t, v.Advance(1.0/60), "stopped view ignores host frames")

	s.Start()
	assert.True(t, v.IsRunning())
	assert.True(t, v.Advance(1.0/60))

	s.Stop()
	assert.False(t, v.Advance(1.0/60))
}

func TestViewLowPowerHalvesBudget(t *testing.T) {
	v := testView(t, ViewOptions{PreSettleTicks: 2000, LowPower: true})
	v.Start()

	ran := 0
	for i := 0; i < 60; i++ {
		if v.Advance(1.0 / 60) {
			ran++
		}
	}
	assert.InDelta(t, 30, ran, 2, "low-power view runs about half the offered frames")
}
