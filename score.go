package starmap

import (
	"math"
	"sort"
)

// Artist is the external entity this core operates on. Instances are
// supplied by the host; the core never fetches or persists them.
type Artist struct {
	ID       string
	Name     string
	Genres   []string
	ImageRef string
	FanCount int
}

// Candidate pairs an artist with the seed ids that surfaced it and an
// optional audio feature vector. Missing optional data degrades to a zero
// contribution, never an error.
type Candidate struct {
	Artist       Artist
	RelatedSeeds []string
	Audio        []float64
}

// ScoreWeights is one weight set for the composite blend. Weights always
// sum to 1.
type ScoreWeights struct {
	Overlap    float64
	Genre      float64
	Audio      float64
	Popularity float64
}

// Weight sets, chosen by whether audio feature data exists for the ranking.
var (
	weightsWithAudio    = ScoreWeights{Overlap: 0.45, Genre: 0.30, Audio: 0.15, Popularity: 0.10}
	weightsWithoutAudio = ScoreWeights{Overlap: 0.50, Genre: 0.35, Popularity: 0.15}
)

// ScoredCandidate is a candidate with its sub-scores and composite score,
// all in [0, 1].
type ScoredCandidate struct {
	Artist       Artist
	RelatedSeeds []string

	Overlap    float64
	Genre      float64
	Popularity float64
	Audio      float64
	Composite  float64
}

// ScoringEngine turns raw candidate data into a composite relevance score
// and rank order. It is a pure transform: no error paths, no I/O.
type ScoringEngine struct {
	seeds       []Artist
	seedGenres  map[string]bool
	genreWeight map[string]float64
	totalWeight float64

	audioCentroid []float64
}

// NewScoringEngine builds an engine over the given seed artists. The seed
// genre frequency map weights genres by how many seeds carry them.
func NewScoringEngine(seeds []Artist) *ScoringEngine {
	e := &ScoringEngine{
		seeds:       seeds,
		seedGenres:  make(map[string]bool),
		genreWeight: make(map[string]float64),
	}
	for _, s := range seeds {
		for _, g := range s.Genres {
			e.seedGenres[g] = true
			e.genreWeight[g]++
			e.totalWeight++
		}
	}
	return e
}

// SetAudioCentroid sets the seed audio-feature centroid. When set, and a
// candidate carries a feature vector, audio similarity contributes to the
// composite and the audio weight set applies.
func (e *ScoringEngine) SetAudioCentroid(centroid []float64) {
	e.audioCentroid = centroid
}

// Score computes all sub-scores and the composite for a single candidate.
func (e *ScoringEngine) Score(c Candidate) ScoredCandidate {
	sc := ScoredCandidate{Artist: c.Artist, RelatedSeeds: c.RelatedSeeds}

	if n := len(e.seeds); n > 0 {
		sc.Overlap = clamp(float64(len(c.RelatedSeeds))/float64(n), 0, 1)
	}
	sc.Genre = e.genreScore(c.Artist.Genres)
	sc.Popularity = popularityScore(c.Artist.FanCount)

	w := weightsWithoutAudio
	if len(e.audioCentroid) > 0 && len(c.Audio) == len(e.audioCentroid) {
		sc.Audio = 1 - normalizedDistance(e.audioCentroid, c.Audio)
		w = weightsWithAudio
	}

	sc.Composite = clamp(
		w.Overlap*sc.Overlap+
			w.Genre*sc.Genre+
			w.Audio*sc.Audio+
			w.Popularity*sc.Popularity,
		0, 1)
	return sc
}

// Rank scores every candidate and returns them sorted descending by
// composite score. Equal composites order by ascending artist id so
// re-invocation with identical input is deterministic.
func (e *ScoringEngine) Rank(candidates map[string]Candidate) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, e.Score(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		return out[i].Artist.ID < out[j].Artist.ID
	})
	return out
}

// genreScore blends Jaccard similarity with seed-frequency-weighted overlap:
// 0.4*Jaccard(candidate, seed set) + 0.6*(matched weight / total weight).
func (e *ScoringEngine) genreScore(genres []string) float64 {
	if len(genres) == 0 || len(e.seedGenres) == 0 {
		return 0
	}

	var intersection int
	var matchedWeight float64
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		if seen[g] {
			continue
		}
		seen[g] = true
		if e.seedGenres[g] {
			intersection++
			matchedWeight += e.genreWeight[g]
		}
	}

	union := len(e.seedGenres) + len(seen) - intersection
	var jaccard float64
	if union > 0 {
		jaccard = float64(intersection) / float64(union)
	}

	var weighted float64
	if e.totalWeight > 0 {
		weighted = matchedWeight / e.totalWeight
	}

	return clamp(0.4*jaccard+0.6*weighted, 0, 1)
}

// popularityScore maps a fan count to [0, 1] on a log10 scale saturating at
// 10^7 fans. Zero or missing fan counts contribute nothing.
func popularityScore(fans int) float64 {
	if fans <= 0 {
		return 0
	}
	return clamp(math.Log10(float64(fans))/7, 0, 1)
}

// normalizedDistance is the Euclidean distance between two equal-length
// feature vectors (components assumed in [0, 1]) divided by the maximum
// possible distance sqrt(len), clamped to [0, 1].
func normalizedDistance(a, b []float64) float64 {
	if len(a) == 0 {
		return 1
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return clamp(math.Sqrt(sum)/math.Sqrt(float64(len(a))), 0, 1)
}
