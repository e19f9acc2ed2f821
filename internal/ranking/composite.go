package ranking

import (
	"math"
	"sort"
)

// ResolveWeights picks the weights the composite stage uses: requested when
// they sum above zero, otherwise fallback, otherwise equal weights. The result
// sums to 1.
func ResolveWeights(requested, fallback Weights) Weights {
	w := requested
	if w.Sum() == 0 {
		w = fallback
	}
	if w.Sum() == 0 {
		w = EqualWeights()
	}
	return w.Normalized()
}

// Composite sets each candidate's global rank to the weighted sum of its
// dimension ranks, normalizes the globals across the set and orders the set
// by global rank descending. Candidates with equal rank keep their input order.
// Dimension ranks are expected to be normalized already.
func Composite(cands []Candidate, w Weights) []Candidate {
	globals := make([]float64, len(cands))
	for i, c := range cands {
		var g float64
		for _, d := range Dimensions {
			g += c.Score.Rank(d) * w.Of(d)
		}
		globals[i] = g
	}

	globals = Normalize(globals)

	out := make([]Candidate, len(cands))
	for i, c := range cands {
		g := clamp01(globals[i])
		c.Score.GlobalRank = &g
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score.GlobalRank > *out[j].Score.GlobalRank
	})
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
