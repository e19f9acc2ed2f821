package ranking

import "fmt"

// Dimension is one of the fixed ranking criteria.
type Dimension int

const (
	DimensionAge Dimension = iota
	DimensionDistance
	DimensionRate
)

// Dimensions lists every ranking dimension in evaluation order.
var Dimensions = [...]Dimension{DimensionAge, DimensionDistance, DimensionRate}

func (d Dimension) String() string {
	switch d {
	case DimensionAge:
		return "age"
	case DimensionDistance:
		return "distance"
	case DimensionRate:
		return "rate"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// Scorecard is the ranking state of one artist for one query. Stages return
// updated copies; nothing is shared between artists or queries.
type Scorecard struct {
	// Distance is the great-circle distance in miles, nil when no location filter ran.
	Distance     *float64
	AgeRank      float64
	DistanceRank float64
	RateRank     float64
	// GlobalRank is nil until the composite stage runs.
	GlobalRank *float64
}

// Rank returns the score held for d.
func (s Scorecard) Rank(d Dimension) float64 {
	switch d {
	case DimensionAge:
		return s.AgeRank
	case DimensionDistance:
		return s.DistanceRank
	case DimensionRate:
		return s.RateRank
	default:
		panic(fmt.Sprintf("ranking: unknown dimension %d", int(d)))
	}
}

// WithRank returns a copy of s with the score for d replaced.
func (s Scorecard) WithRank(d Dimension, v float64) Scorecard {
	switch d {
	case DimensionAge:
		s.AgeRank = v
	case DimensionDistance:
		s.DistanceRank = v
	case DimensionRate:
		s.RateRank = v
	default:
		panic(fmt.Sprintf("ranking: unknown dimension %d", int(d)))
	}
	return s
}

// Weights holds one non-negative weight per dimension.
type Weights struct {
	Age      float64 `json:"age"`
	Distance float64 `json:"distance"`
	Rate     float64 `json:"rate"`
}

// EqualWeights weighs every dimension 1.
func EqualWeights() Weights {
	return Weights{Age: 1, Distance: 1, Rate: 1}
}

// Of returns the weight for d.
func (w Weights) Of(d Dimension) float64 {
	switch d {
	case DimensionAge:
		return w.Age
	case DimensionDistance:
		return w.Distance
	case DimensionRate:
		return w.Rate
	default:
		panic(fmt.Sprintf("ranking: unknown dimension %d", int(d)))
	}
}

// With returns a copy of w with the weight for d replaced.
func (w Weights) With(d Dimension, v float64) Weights {
	switch d {
	case DimensionAge:
		w.Age = v
	case DimensionDistance:
		w.Distance = v
	case DimensionRate:
		w.Rate = v
	default:
		panic(fmt.Sprintf("ranking: unknown dimension %d", int(d)))
	}
	return w
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Age + w.Distance + w.Rate
}

// Normalized scales w to sum to 1. A zero sum is returned unchanged.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{Age: w.Age / sum, Distance: w.Distance / sum, Rate: w.Rate / sum}
}
