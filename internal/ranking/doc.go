// Package ranking filters artists and orders them by a weighted composite of
// per-dimension scores.
//
// A query runs in four pure stages over a freshly loaded artist set:
//
//	q, err := ranking.ParseQuery(filters, weights)
//	if err != nil {
//		// *ranking.ParameterError names the offending parameter
//	}
//	results := ranking.NewEngine(ranking.DefaultFallbackWeights()).Rank(artists, q)
//
// The filter chain (age, distance, gender, rate) drops artists and scores
// survivors on its own dimension. Each dimension is then min-max normalized
// across the survivors (see Normalize for the degenerate cases). The global
// rank is the weighted sum of the normalized scores, normalized again and
// clamped to [0, 1]; results are sorted by it, highest first.
//
// Calibration:
//
// Queries whose weights sum to zero use the fallback weights, which default
// to weighing every dimension equally and can be overridden with a JSON
// calibration file loaded at startup:
//
//	{"version": "1", "fallback_weights": {"age": 1, "distance": 2, "rate": 1}}
package ranking
