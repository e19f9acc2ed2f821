package ranking

import "math"

// Normalize min-max scales values to [0, 1], returning a new slice with the
// same index order. Degenerate input is returned unchanged: an empty slice,
// a slice where every value is equal, or a slice holding NaN (an absent score).
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if math.IsNaN(v) {
			return values
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		return values
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// NormalizeScores rescales each dimension independently across cards.
func NormalizeScores(cards []Scorecard) []Scorecard {
	out := make([]Scorecard, len(cards))
	copy(out, cards)

	column := make([]float64, len(cards))
	for _, d := range Dimensions {
		for i, c := range cards {
			column[i] = c.Rank(d)
		}
		for i, v := range Normalize(column) {
			out[i] = out[i].WithRank(d, v)
		}
	}
	return out
}
