package starmap

import "testing"

func TestComputeLODRegimes(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		check func(t *testing.T, lod LODFactors)
	}{
		{"far overview", 0.1, func(t *testing.T, lod LODFactors) {
			if lod.Haze != 1 {
				t.Errorf("Haze = %v, want 1", lod.Haze)
			}
			if lod.Node != 0 || lod.Label != 0 || lod.Detail != 0 {
				t.Errorf("far overview shows nodes/labels/detail: %+v", lod)
			}
		}},
		{"mid zoom", 0.6, func(t *testing.T, lod LODFactors) {
			if lod.Haze <= 0 || lod.Haze >= 1 {
				t.Errorf("Haze = %v, want partial", lod.Haze)
			}
			if lod.Node != 1 {
				t.Errorf("Node = %v, want 1", lod.Node)
			}
			if lod.Detail != 0 {
				t.Errorf("Detail = %v, want 0", lod.Detail)
			}
		}},
		{"label range", 1.3, func(t *testing.T, lod LODFactors) {
			if lod.Haze != 0 {
				t.Errorf("Haze = %v, want 0", lod.Haze)
			}
			if lod.Label != 1 {
				t.Errorf("Label = %v, want 1", lod.Label)
			}
		}},
		{"full detail", 3.0, func(t *testing.T, lod LODFactors) {
			if lod.Node != 1 || lod.Label != 1 || lod.Detail != 1 {
				t.Errorf("full detail lod = %+v", lod)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ComputeLOD(tt.scale))
		})
	}
}

func TestComputeLODContinuous(t *testing.T) {
	// No factor may jump between adjacent scales: zoom reads as a dissolve.
	prev := ComputeLOD(0.05)
	for s := 0.06; s < 4; s += 0.01 {
		cur := ComputeLOD(s)
		for _, d := range []float64{
			cur.Haze - prev.Haze,
			cur.Node - prev.Node,
			cur.Label - prev.Label,
			cur.Detail - prev.Detail,
		} {
			if d > 0.2 || d < -0.2 {
				t.Fatalf("LOD factor jumped by %v near scale %v", d, s)
			}
		}
		prev = cur
	}
}

func TestEmphasisLabelFollowsDetailRamp(t *testing.T) {
	if got := emphasisAlpha(ComputeLOD(3.0)); got != 1 {
		t.Errorf("full-detail emphasis = %v, want 1", got)
	}
	base := emphasisAlpha(ComputeLOD(0.6))
	if base != linkBaseline {
		t.Errorf("pre-detail emphasis = %v, want the %v floor", base, linkBaseline)
	}
	if mid := emphasisAlpha(ComputeLOD(1.8)); mid <= base {
		t.Errorf("emphasis = %v at mid detail, want above the floor", mid)
	}
}

func TestSelectiveLabels(t *testing.T) {
	g := &Graph{
		Nodes: []*Node{
			{ID: "seed", Name: "Seed", Kind: KindSeed, Cluster: 0},
			{ID: "top", Name: "Top", Score: 0.9, Cluster: 0},
			{ID: "mid", Name: "Mid", Score: 0.7, Cluster: 0},
			{ID: "low", Name: "Low", Score: 0.2, Cluster: 0},
			{ID: "anon", Name: "", Score: 0.99, Cluster: 0},
			{ID: "other", Name: "Other", Score: 0.5, Cluster: 1},
		},
	}
	set := selectiveLabels(g, 2)

	for _, want := range []string{"seed", "top", "mid", "other"} {
		if !set[want] {
			t.Errorf("label set missing %s", want)
		}
	}
	if set["low"] {
		t.Error("low-scored node labeled beyond topN")
	}
	if set["anon"] {
		t.Error("nameless node must never be labeled")
	}
}

func TestLinkColorByCategory(t *testing.T) {
	a := &Node{Glow: Color{R: 1, G: 0, B: 0, A: 1}}
	b := &Node{Glow: Color{R: 0, G: 1, B: 0, A: 1}, Color: Color{R: 0.2, G: 0.3, B: 0.4, A: 1}}

	blend := linkColor(Link{Category: LinkIntraCluster}, a, b)
	if blend.R != 0.5 || blend.G != 0.5 {
		t.Errorf("intra-cluster link should blend endpoint glows, got %+v", blend)
	}

	drift := linkColor(Link{Category: LinkDrift}, a, b)
	if drift != b.Color {
		t.Errorf("drift link should take the drift endpoint color, got %+v", drift)
	}
}

func TestLineQuadDegenerate(t *testing.T) {
	if _, ok := lineQuad(5, 5, 5, 5, 2); ok {
		t.Error("zero-length line should produce no quad")
	}
	q, ok := lineQuad(0, 0, 10, 0, 2)
	if !ok {
		t.Fatal("expected a quad")
	}
	// Horizontal line of width 2: corners offset one unit in y.
	if q[0].Y != -1 || q[3].Y != 1 {
		t.Errorf("quad corners = %+v", q)
	}
}

func TestPulsePhaseStableAndSpread(t *testing.T) {
	if pulsePhase("abc") != pulsePhase("abc") {
		t.Error("pulse phase must be stable per id")
	}
	a, b := pulsePhase("node-1"), pulsePhase("node-2")
	if a == b {
		t.Error("distinct ids should desynchronize")
	}
	for _, p := range []float64{a, b} {
		if p < 0 || p >= 6.28 {
			t.Errorf("phase %v outside [0, 2pi)", p)
		}
	}
}
