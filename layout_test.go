package starmap

import (
	"fmt"
	"math"
	"testing"
)

func settledUniverse(t *testing.T) (*Graph, *Simulation) {
	t.Helper()
	clusters, bridges, drifts := universeFixture()
	g := BuildUniverse(clusters, bridges, drifts)
	sim := NewSimulation(g, 0, 0)
	sim.Settle(2000)
	if !sim.Settled() {
		t.Fatal("simulation did not settle")
	}
	return g, sim
}

func TestEmptySimulationSettlesImmediately(t *testing.T) {
	g := &Graph{}
	sim := NewSimulation(g, 0, 0)
	if !sim.Settled() {
		t.Error("empty simulation should report settled at once")
	}
	if sim.Alpha() != 0 {
		t.Errorf("Alpha = %v, want 0", sim.Alpha())
	}
	sim.Tick() // must be a no-op, not a panic
}

func TestSimulationDeterministic(t *testing.T) {
	run := func() []*Node {
		clusters, bridges, drifts := universeFixture()
		g := BuildUniverse(clusters, bridges, drifts)
		sim := NewSimulation(g, 0, 0)
		sim.Settle(2000)
		return g.Nodes
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("node counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Fatalf("node %d position differs: (%v,%v) vs (%v,%v)",
				i, a[i].X, a[i].Y, b[i].X, b[i].Y)
		}
	}
}

func TestSimulationAssignsPositionsToAll(t *testing.T) {
	g, _ := settledUniverse(t)
	for _, n := range g.Nodes {
		if !n.HasPosition {
			t.Errorf("node %s has no position after settle", n.ID)
		}
		if n.VX != 0 || n.VY != 0 {
			t.Errorf("node %s has residual velocity after freeze", n.ID)
		}
	}
}

func TestSimulationPreservesExistingPositions(t *testing.T) {
	clusters, _, _ := universeFixture()
	g := BuildUniverse(clusters, nil, nil)
	pinned := g.Nodes[0]
	pinned.X, pinned.Y = 123, -456
	pinned.HasPosition = true

	NewSimulation(g, 0, 0)
	if pinned.X != 123 || pinned.Y != -456 {
		t.Error("initial placement must not move pre-positioned nodes")
	}
}

func TestOnSettleFiresOncePerSettle(t *testing.T) {
	clusters, _, _ := universeFixture()
	g := BuildUniverse(clusters, nil, nil)
	sim := NewSimulation(g, 0, 0)

	fired := 0
	sim.OnSettle(func() { fired++ })

	sim.Settle(2000)
	if fired != 1 {
		t.Fatalf("settle callbacks fired %d times, want 1", fired)
	}

	sim.Reheat(0.5)
	if sim.Settled() {
		t.Fatal("reheat should resume the simulation")
	}
	sim.Settle(2000)
	if fired != 2 {
		t.Errorf("settle callbacks fired %d times after reheat, want 2", fired)
	}
}

func TestDriftNodesOrbitOutsideCore(t *testing.T) {
	g, _ := settledUniverse(t)

	center, extent := coreExtent(g.Nodes)
	if extent <= 0 {
		t.Fatal("no core extent")
	}
	for _, n := range g.Nodes {
		if n.Tier != TierDrift {
			continue
		}
		dist := math.Hypot(n.X-center.X, n.Y-center.Y)
		if dist <= extent {
			t.Errorf("drift node %s at distance %.1f, inside core extent %.1f", n.ID, dist, extent)
		}
	}
}

func TestMergePreservesExistingPositions(t *testing.T) {
	// A settled fifty-node layout absorbs ten drift reveals.
	seeds := []Artist{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}
	ranked := make([]ScoredCandidate, 47)
	for i := range ranked {
		ranked[i] = ScoredCandidate{
			Artist:       Artist{ID: fmt.Sprintf("c%02d", i)},
			RelatedSeeds: []string{seeds[i%3].ID},
			Composite:    0.4 + 0.01*float64(i%20),
			Popularity:   0.8,
		}
	}
	g := BuildGraph(seeds, ranked)
	if len(g.Nodes) != 50 {
		t.Fatalf("fixture has %d nodes, want 50", len(g.Nodes))
	}
	sim := NewSimulation(g, 0, 0)
	sim.Settle(2000)

	type pos struct{ x, y float64 }
	before := make(map[string]pos, len(g.Nodes))
	for _, n := range g.Nodes {
		before[n.ID] = pos{n.X, n.Y}
	}

	var drifts []DriftInput
	for i := 0; i < 10; i++ {
		drifts = append(drifts, DriftInput{
			Artist: Artist{ID: fmt.Sprintf("late%d", i)},
			Score:  0.3,
		})
	}
	nodes, links := AppendDrift(g, drifts)
	sim.Merge(nodes, links)

	if sim.Settled() {
		t.Error("merge should reheat the simulation")
	}
	if sim.Alpha() != simReheatAlpha {
		t.Errorf("Alpha after merge = %v, want %v", sim.Alpha(), simReheatAlpha)
	}
	for id, p := range before {
		n := g.NodeByID(id)
		if n.X != p.x || n.Y != p.y {
			t.Errorf("merge moved existing node %s", id)
		}
	}
	for _, n := range nodes {
		if !n.HasPosition {
			t.Errorf("merged node %s has no position", n.ID)
		}
	}
}

func TestRestDistanceByEndpoints(t *testing.T) {
	seed := &Node{Kind: KindSeed}
	rec := &Node{Kind: KindRecommendation}
	gem := &Node{Kind: KindRecommendation, Tier: TierHiddenGem}

	tests := []struct {
		name string
		l    Link
		a, b *Node
		want float64
	}{
		{"seed-seed", Link{}, seed, seed, linkDistSeedSeed},
		{"seed-rec", Link{}, seed, rec, linkDistSeedRec},
		{"seed-gem", Link{}, seed, gem, linkDistSeedGem},
		{"rec-rec", Link{}, rec, rec, linkDistRecRec},
		{"chain", Link{Category: LinkChain}, seed, rec, linkDistChain},
		{"drift", Link{Category: LinkDrift}, rec, rec, linkDistDrift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := restDistance(tt.l, tt.a, tt.b); got != tt.want {
				t.Errorf("restDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollisionSeparatesOverlaps(t *testing.T) {
	a := &Node{ID: "a", Radius: 10, X: 0, Y: 0, HasPosition: true}
	b := &Node{ID: "b", Radius: 10, X: 1, Y: 0, HasPosition: true}
	g := &Graph{Nodes: []*Node{a, b}, byID: map[string]int{"a": 0, "b": 1}}
	sim := NewSimulation(g, 0, 0)

	for i := 0; i < 50; i++ {
		sim.applyCollision()
	}
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if want := a.Radius + b.Radius + simCollidePadding; dist < want-1e-6 {
		t.Errorf("distance after collision passes = %v, want >= %v", dist, want)
	}
}
