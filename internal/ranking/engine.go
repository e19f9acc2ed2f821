package ranking

import (
	"github.com/onnwee/artistrank/internal/artist"
)

// Result is a ranked artist as returned to callers.
type Result struct {
	artist.Artist
	Distance     *float64 `json:"distance"`
	DistanceRank float64  `json:"distance_rank"`
	AgeRank      float64  `json:"age_rank"`
	RateRank     float64  `json:"rate_rank"`
	GlobalRank   *float64 `json:"global_rank"`
}

// Engine filters and ranks artist sets. It holds no per-query state and is
// safe for concurrent use.
type Engine struct {
	fallback Weights
}

// NewEngine returns an Engine that uses fallback when a query's weights sum to zero.
func NewEngine(fallback Weights) *Engine {
	return &Engine{fallback: fallback}
}

// Rank filters artists by q, normalizes the per-dimension scores of the
// survivors and orders them by weighted global rank.
func (e *Engine) Rank(artists []artist.Artist, q Query) []Result {
	cands := ApplyFilters(NewCandidates(artists), FilterChain(q))

	cards := make([]Scorecard, len(cands))
	for i, c := range cands {
		cards[i] = c.Score
	}
	for i, card := range NormalizeScores(cards) {
		cands[i].Score = card
	}

	cands = Composite(cands, ResolveWeights(q.Weights, e.fallback))

	results := make([]Result, len(cands))
	for i, c := range cands {
		results[i] = newResult(c)
	}
	return results
}

func newResult(c Candidate) Result {
	return Result{
		Artist:       c.Artist,
		Distance:     c.Score.Distance,
		DistanceRank: c.Score.DistanceRank,
		AgeRank:      c.Score.AgeRank,
		RateRank:     c.Score.RateRank,
		GlobalRank:   c.Score.GlobalRank,
	}
}
