package starmap

import (
	"math"
	"sort"
)

// Radius ranges per tier. Interpolation is radius = min + score^0.7*(max-min);
// the sub-linear exponent keeps mid-scored nodes visually present.
const (
	seedRadius = 26.0

	normalRadiusMin = 8.0
	normalRadiusMax = 18.0

	bridgeRadiusMin = 10.0
	bridgeRadiusMax = 16.0

	gemRadiusMin = 6.0
	gemRadiusMax = 12.0

	driftRadiusMin = 5.0
	driftRadiusMax = 9.0

	radiusExponent = 0.7
)

// clusterNodeCap bounds members+recommendations per cluster. Truncation
// priority: favorites are always kept, recommendations are always kept,
// discovered members fill whatever room remains.
const clusterNodeCap = 150

// visualRadiusFloor is the minimum cluster visual radius in world units.
const visualRadiusFloor = 48.0

// MemberSource records how a cluster member entered the user's universe.
type MemberSource uint8

const (
	SourceFavorite   MemberSource = iota // explicitly favorited by the user
	SourceDiscovered                     // surfaced by prior exploration
)

// ClusterMember is one existing member of a cluster, as supplied by the
// external universe-aggregation service.
type ClusterMember struct {
	Artist Artist
	Source MemberSource
}

// ClusterRecommendation is a recommended artist inside a cluster, with
// back-references to the members that suggested it.
type ClusterRecommendation struct {
	Artist      Artist
	Score       float64
	SuggestedBy []string
	HiddenGem   bool
}

// ClusterInput is one cluster from the aggregation service.
type ClusterInput struct {
	Label           string
	Color           Color // zero value = assign by index
	Members         []ClusterMember
	Recommendations []ClusterRecommendation
}

// BridgeInput describes a cross-cluster connector artist. Chain marks a
// multi-hop similarity path (chain-bridge tier) rather than a direct bridge.
type BridgeInput struct {
	Artist      Artist
	Score       float64
	FromCluster int
	ToCluster   int
	Chain       bool
}

// DriftInput describes a peripheral discovery destined for the outer orbit.
// RelatedID names the node it drifted from; unresolvable ids leave the
// drift node linked to nothing (valid; drift links are optional).
type DriftInput struct {
	Artist    Artist
	Score     float64
	RelatedID string
}

// Graph is the flat node arena plus index-addressed links and cluster
// metadata. The render and layout stages resolve link endpoints through the
// arena at read time; there are no cyclic object references.
type Graph struct {
	Nodes    []*Node
	Links    []Link
	Clusters []ClusterMeta

	byID map[string]int
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if i, ok := g.byID[id]; ok {
		return g.Nodes[i]
	}
	return nil
}

// IndexByID returns the arena index for an id, or -1.
func (g *Graph) IndexByID(id string) int {
	if i, ok := g.byID[id]; ok {
		return i
	}
	return -1
}

// Bounds returns the axis-aligned bounds over all positioned nodes,
// position ± radius. Returns a zero Rect when nothing is positioned.
func (g *Graph) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, n := range g.Nodes {
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

// RecomputeClusterMeta refreshes every cluster's center and visual radius
// from current node positions. Call after the layout settles; visual radius
// always covers the farthest member plus that member's own radius.
func (g *Graph) RecomputeClusterMeta() {
	for ci := range g.Clusters {
		meta := &g.Clusters[ci]
		var sumX, sumY float64
		var count int
		for _, n := range g.Nodes {
			if n.Cluster != meta.Index || !n.HasPosition {
				continue
			}
			sumX += n.X
			sumY += n.Y
			count++
		}
		if count == 0 {
			continue
		}
		meta.CX = sumX / float64(count)
		meta.CY = sumY / float64(count)

		radius := visualRadiusFloor
		for _, n := range g.Nodes {
			if n.Cluster != meta.Index || !n.HasPosition {
				continue
			}
			d := math.Hypot(n.X-meta.CX, n.Y-meta.CY) + n.Radius
			if d > radius {
				radius = d
			}
		}
		meta.VisualRadius = radius
	}
}

// tierRadius interpolates a node radius within its tier's range.
func tierRadius(kind NodeKind, tier NodeTier, score float64) float64 {
	if kind == KindSeed {
		return seedRadius
	}
	var lo, hi float64
	switch tier {
	case TierHiddenGem:
		lo, hi = gemRadiusMin, gemRadiusMax
	case TierChainBridge:
		lo, hi = bridgeRadiusMin, bridgeRadiusMax
	case TierDrift:
		lo, hi = driftRadiusMin, driftRadiusMax
	default:
		lo, hi = normalRadiusMin, normalRadiusMax
	}
	return lo + math.Pow(clamp(score, 0, 1), radiusExponent)*(hi-lo)
}

// newNode derives the visual attributes for one artist.
func newNode(a Artist, kind NodeKind, tier NodeTier, score float64, cluster int) *Node {
	brightness := clamp(0.3+0.7*score, 0, 1)
	if kind == KindSeed {
		brightness = 1
	}
	body, glow := nodePalette(kind, tier, a.Genres, brightness)
	return &Node{
		ID:         a.ID,
		Name:       a.Name,
		Kind:       kind,
		Tier:       tier,
		Radius:     tierRadius(kind, tier, score),
		Color:      body,
		Glow:       glow,
		Brightness: brightness,
		Score:      clamp(score, 0, 1),
		Genres:     a.Genres,
		ImageRef:   a.ImageRef,
		Cluster:    cluster,
	}
}

// builder accumulates nodes and links with id de-duplication.
type builder struct {
	g         *Graph
	linkCount []int // per-node link degree, parallel to g.Nodes
}

func newBuilder() *builder {
	return &builder{g: &Graph{byID: make(map[string]int)}}
}

// add appends a node unless the id already exists; returns the arena index.
func (b *builder) add(n *Node) int {
	if i, ok := b.g.byID[n.ID]; ok {
		return i
	}
	i := len(b.g.Nodes)
	b.g.Nodes = append(b.g.Nodes, n)
	b.g.byID[n.ID] = i
	b.linkCount = append(b.linkCount, 0)
	return i
}

// link appends a link between two arena indices. Out-of-range or self
// links are dropped silently; the graph never carries dangling endpoints.
func (b *builder) link(src, dst int, strength float64, cat LinkCategory) {
	if src < 0 || dst < 0 || src >= len(b.g.Nodes) || dst >= len(b.g.Nodes) || src == dst {
		return
	}
	b.g.Links = append(b.g.Links, newLink(src, dst, strength, cat))
	b.linkCount[src]++
	b.linkCount[dst]++
}

// linked reports whether a link between the two indices already exists.
func (b *builder) linked(a, c int) bool {
	for _, l := range b.g.Links {
		if (l.Source == a && l.Target == c) || (l.Source == c && l.Target == a) {
			return true
		}
	}
	return false
}

// newLink derives render attributes from strength and category.
func newLink(src, dst int, strength float64, cat LinkCategory) Link {
	strength = clamp(strength, 0.05, 1)
	l := Link{
		Source:   src,
		Target:   dst,
		Strength: strength,
		Category: cat,
	}
	switch cat {
	case LinkBridge:
		l.Opacity = 0.35
		l.Dashed = true
	case LinkChain:
		l.Opacity = 0.45
		l.Dashed = true
	case LinkDrift:
		l.Opacity = 0.15
		l.Dashed = true
	default:
		l.Opacity = clamp(0.12+0.45*strength, 0, 0.6)
	}
	return l
}

// BuildGraph converts seeds plus a ranked candidate list into a single
// unclustered graph: each candidate links to every seed that surfaced it.
// Hidden-gem tier is assigned to low-popularity, high-affinity candidates.
func BuildGraph(seeds []Artist, ranked []ScoredCandidate) *Graph {
	b := newBuilder()

	for _, s := range seeds {
		b.add(newNode(s, KindSeed, TierNormal, 1, -1))
	}

	for _, sc := range ranked {
		tier := TierNormal
		if sc.Popularity < 0.55 && sc.Composite >= 0.5 {
			tier = TierHiddenGem
		}
		ci := b.add(newNode(sc.Artist, KindRecommendation, tier, sc.Composite, -1))
		for _, seedID := range sc.RelatedSeeds {
			b.link(b.g.IndexByID(seedID), ci, sc.Composite, LinkIntraCluster)
		}
	}

	return b.g
}

// BuildUniverse converts aggregation-service cluster data plus bridge/chain
// and drift descriptors into a multi-cluster graph. Per-cluster node counts
// are capped; only discovered-sourced members are ever truncated.
func BuildUniverse(clusters []ClusterInput, bridges []BridgeInput, drifts []DriftInput) *Graph {
	b := newBuilder()

	for ci, cl := range clusters {
		buildCluster(b, ci, cl)
	}

	for _, br := range bridges {
		tier := TierNormal
		cat := LinkBridge
		if br.Chain {
			tier = TierChainBridge
			cat = LinkChain
		}
		bi := b.add(newNode(br.Artist, KindRecommendation, tier, br.Score, -1))
		b.link(bi, firstClusterIndex(b.g, br.FromCluster), br.Score, cat)
		b.link(bi, firstClusterIndex(b.g, br.ToCluster), br.Score, cat)
	}

	appendDriftNodes(b, drifts)

	return b.g
}

// buildCluster adds one cluster's members, recommendations and links.
func buildCluster(b *builder, index int, cl ClusterInput) {
	col := cl.Color
	if col == (Color{}) {
		col = clusterColor(index)
	}

	members := capMembers(cl.Members, len(cl.Recommendations))

	memberIdx := make([]int, 0, len(members))
	for _, m := range members {
		kind := KindRecommendation
		tier := TierNormal
		score := 0.7
		if m.Source == SourceFavorite {
			kind = KindSeed
			score = 1
		}
		memberIdx = append(memberIdx, b.add(newNode(m.Artist, kind, tier, score, index)))
	}

	// Baseline member connectivity: a fixed stride set, so the cluster body
	// holds together without a hub.
	strides := [...]int{1, 5}
	if n := len(memberIdx); n > 2 {
		for i, mi := range memberIdx {
			for _, s := range strides {
				if s >= n {
					continue
				}
				mj := memberIdx[(i+s)%n]
				if !b.linked(mi, mj) {
					b.link(mi, mj, 0.4, LinkIntraCluster)
				}
			}
		}
	}

	recIdx := make([]int, 0, len(cl.Recommendations))
	for _, rec := range cl.Recommendations {
		tier := TierNormal
		if rec.HiddenGem {
			tier = TierHiddenGem
		}
		ri := b.add(newNode(rec.Artist, KindRecommendation, tier, rec.Score, index))
		recIdx = append(recIdx, ri)
		for _, by := range rec.SuggestedBy {
			b.link(b.g.IndexByID(by), ri, rec.Score, LinkIntraCluster)
		}
	}

	spreadLinks(b, memberIdx, recIdx)

	labels := representativeLabels(b.g, index, 3)

	b.g.Clusters = append(b.g.Clusters, ClusterMeta{
		Index:        index,
		Color:        col,
		MemberCount:  len(members),
		RecCount:     len(cl.Recommendations),
		Labels:       labels,
		VisualRadius: visualRadiusFloor,
	})
}

// capMembers enforces the per-cluster cap. Recommendations are always fully
// kept, so only members compete for room: favorites first, then as many
// discovered members as fit.
func capMembers(members []ClusterMember, recCount int) []ClusterMember {
	room := clusterNodeCap - recCount
	if room < 0 {
		room = 0
	}
	if len(members) <= room {
		return members
	}

	kept := make([]ClusterMember, 0, room)
	for _, m := range members {
		if m.Source == SourceFavorite {
			kept = append(kept, m)
		}
	}
	// Favorites are never truncated, even past the cap.
	if len(kept) >= room {
		return kept
	}
	for _, m := range members {
		if m.Source == SourceDiscovered {
			kept = append(kept, m)
			if len(kept) == room {
				break
			}
		}
	}
	return kept
}

// spreadLinks adds 1-2 extra links per recommendation to the currently
// least-connected members, so the visual graph isn't hub-centric around a
// few popular suggesters.
func spreadLinks(b *builder, memberIdx, recIdx []int) {
	if len(memberIdx) == 0 {
		return
	}
	for _, ri := range recIdx {
		extra := 1
		if b.linkCount[ri] <= 1 {
			extra = 2
		}

		for e := 0; e < extra; e++ {
			target := -1
			best := math.MaxInt
			for _, mi := range memberIdx {
				if mi == ri || b.linked(ri, mi) {
					continue
				}
				if b.linkCount[mi] < best {
					best = b.linkCount[mi]
					target = mi
				}
			}
			if target < 0 {
				break
			}
			b.link(ri, target, 0.3, LinkIntraCluster)
		}
	}
}

// appendDriftNodes adds drift-tier nodes and their (optional) tether links.
func appendDriftNodes(b *builder, drifts []DriftInput) {
	for _, d := range drifts {
		di := b.add(newNode(d.Artist, KindRecommendation, TierDrift, d.Score, -1))
		if d.RelatedID != "" {
			b.link(di, b.g.IndexByID(d.RelatedID), d.Score*0.5, LinkDrift)
		}
	}
}

// AppendDrift merges newly revealed drift nodes into an existing graph and
// returns the appended nodes and links (link indices address the expanded
// arena). Existing nodes are untouched; pair with Simulation.Merge.
func AppendDrift(g *Graph, drifts []DriftInput) ([]*Node, []Link) {
	b := &builder{g: g, linkCount: make([]int, len(g.Nodes))}
	nodeStart := len(g.Nodes)
	linkStart := len(g.Links)
	appendDriftNodes(b, drifts)
	return g.Nodes[nodeStart:], g.Links[linkStart:]
}

// firstClusterIndex returns the arena index of the first node in a cluster,
// preferring seeds. Returns -1 when the cluster has no nodes.
func firstClusterIndex(g *Graph, cluster int) int {
	first := -1
	for i, n := range g.Nodes {
		if n.Cluster != cluster {
			continue
		}
		if n.Kind == KindSeed {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

// representativeLabels picks up to max names for a cluster: seeds first,
// then highest-scored recommendations.
func representativeLabels(g *Graph, cluster, max int) []string {
	type cand struct {
		name string
		kind NodeKind
		sc   float64
	}
	var cands []cand
	for _, n := range g.Nodes {
		if n.Cluster == cluster && n.Name != "" {
			cands = append(cands, cand{n.Name, n.Kind, n.Score})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if (cands[i].kind == KindSeed) != (cands[j].kind == KindSeed) {
			return cands[i].kind == KindSeed
		}
		if cands[i].sc != cands[j].sc {
			return cands[i].sc > cands[j].sc
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > max {
		cands = cands[:max]
	}
	labels := make([]string, len(cands))
	for i, c := range cands {
		labels[i] = c.name
	}
	return labels
}
