package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/stellarmaps/starmap"
)

// demoCluster is the raw material for one synthetic cluster: a seed sound
// with favorites and a pool of candidate discoveries around it.
type demoCluster struct {
	label     string
	genres    []string
	favorites []string
	pool      []string
}

var demoClusters = []demoCluster{
	{
		label:     "Dream Pop",
		genres:    []string{"dream pop", "shoegaze", "indie rock"},
		favorites: []string{"Violet Static", "Glass Harbor"},
		pool: []string{
			"Low Tide Choir", "Paper Lanterns", "Mild Halo", "The Slow Reveal",
			"Fernweh", "Cassette Summer", "Night Swimming Club", "Aurora Motel",
		},
	},
	{
		label:     "Electronic",
		genres:    []string{"electronic", "idm", "ambient techno"},
		favorites: []string{"Octal Drift", "Meridian Pulse"},
		pool: []string{
			"Binary Garden", "Soft Machinery", "Vector Bloom", "Idle Signal",
			"Phase Lantern", "Tape Ghost", "Modular Weather",
		},
	},
	{
		label:     "Jazz",
		genres:    []string{"jazz", "spiritual jazz", "fusion"},
		favorites: []string{"The Quiet Quartet"},
		pool: []string{
			"Blue Interval", "Marrow & Reed", "Sunday Telescope", "Brass Orchard",
			"Ninth House Trio", "Velvet Meridian",
		},
	},
}

// demoUniverse builds the synthetic multi-cluster universe: every cluster's
// candidate pool is ranked through the scoring engine, then the clusters
// plus a few bridges and drift discoveries assemble into one graph.
func demoUniverse(logger *log.Logger) *starmap.Graph {
	rng := rand.New(rand.NewPCG(42, 1))

	var clusters []starmap.ClusterInput
	var allIDs []string

	for _, dc := range demoClusters {
		seeds := make([]starmap.Artist, 0, len(dc.favorites))
		members := make([]starmap.ClusterMember, 0, len(dc.favorites))
		for _, name := range dc.favorites {
			a := demoArtist(name, dc.genres, 200_000+rng.IntN(3_000_000))
			seeds = append(seeds, a)
			members = append(members, starmap.ClusterMember{Artist: a, Source: starmap.SourceFavorite})
			allIDs = append(allIDs, a.ID)
		}

		engine := starmap.NewScoringEngine(seeds)
		candidates := make(map[string]starmap.Candidate, len(dc.pool))
		for _, name := range dc.pool {
			a := demoArtist(name, sampleGenres(rng, dc.genres), 500+rng.IntN(5_000_000))
			related := []string{seeds[rng.IntN(len(seeds))].ID}
			candidates[a.ID] = starmap.Candidate{Artist: a, RelatedSeeds: related}
		}

		recs := make([]starmap.ClusterRecommendation, 0, len(candidates))
		for _, sc := range engine.Rank(candidates) {
			recs = append(recs, starmap.ClusterRecommendation{
				Artist:      sc.Artist,
				Score:       sc.Composite,
				SuggestedBy: sc.RelatedSeeds,
				HiddenGem:   sc.Popularity < 0.55 && sc.Composite >= 0.35,
			})
			allIDs = append(allIDs, sc.Artist.ID)
		}

		clusters = append(clusters, starmap.ClusterInput{
			Label:           dc.label,
			Members:         members,
			Recommendations: recs,
		})
	}

	bridges := []starmap.BridgeInput{
		{
			Artist:      demoArtist("Cloud Index", []string{"dream pop", "electronic"}, 80_000),
			Score:       0.6,
			FromCluster: 0,
			ToCluster:   1,
		},
		{
			Artist:      demoArtist("Afterglow Ensemble", []string{"jazz", "ambient techno"}, 40_000),
			Score:       0.55,
			FromCluster: 1,
			ToCluster:   2,
			Chain:       true,
		},
	}

	drifts := []starmap.DriftInput{
		{Artist: demoArtist("Hollow Coast", []string{"slowcore"}, 9_000), Score: 0.3},
		{Artist: demoArtist("Field Array", []string{"musique concrete"}, 4_000), Score: 0.25},
		{Artist: demoArtist("Tin Parade", []string{"brass band"}, 12_000), Score: 0.3, RelatedID: allIDs[len(allIDs)-1]},
	}

	g := starmap.BuildUniverse(clusters, bridges, drifts)
	logger.Debug("demo universe built", "clusters", len(g.Clusters), "nodes", len(g.Nodes))
	return g
}

// demoStatus marks a few demo artists with status rings.
func demoStatus() starmap.StatusSets {
	return starmap.StatusSets{
		Favorites:  setOf("Violet Static", "Glass Harbor", "Octal Drift", "Meridian Pulse", "The Quiet Quartet"),
		Discovered: setOf("Low Tide Choir", "Binary Garden", "Blue Interval"),
		Dislikes:   setOf("Tape Ghost"),
	}
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// demoArtist fabricates one artist with a fresh id.
func demoArtist(name string, genres []string, fans int) starmap.Artist {
	return starmap.Artist{
		ID:       uuid.NewString(),
		Name:     name,
		Genres:   genres,
		ImageRef: fmt.Sprintf("https://img.example/%s", uuid.NewString()),
		FanCount: fans,
	}
}

// sampleGenres keeps a random non-empty subset of the cluster genres.
func sampleGenres(rng *rand.Rand, genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if rng.Float64() < 0.7 {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		out = append(out, genres[rng.IntN(len(genres))])
	}
	return out
}
