package ranking

import (
	"math"

	"github.com/onnwee/artistrank/internal/artist"
	"github.com/onnwee/artistrank/internal/geo"
)

// MinDistance replaces a zero distance when computing the distance rank.
const MinDistance = 1e-4

// Candidate pairs an artist with its scorecard for the current query.
type Candidate struct {
	Artist artist.Artist
	Score  Scorecard
}

// NewCandidates wraps artists with empty scorecards.
func NewCandidates(artists []artist.Artist) []Candidate {
	cands := make([]Candidate, len(artists))
	for i, a := range artists {
		cands[i] = Candidate{Artist: a}
	}
	return cands
}

// Filter drops candidates and may score the survivors on its own dimension.
// Apply never modifies its input slice.
type Filter interface {
	Name() string
	Apply(cands []Candidate) []Candidate
}

// FilterChain returns the filters q asks for, in the order age, distance,
// gender, rate.
func FilterChain(q Query) []Filter {
	var chain []Filter
	if q.Age != nil {
		chain = append(chain, AgeFilter{Range: *q.Age})
	}
	if q.Location != nil {
		chain = append(chain, DistanceFilter{Query: *q.Location})
	}
	if q.Gender != nil {
		chain = append(chain, GenderFilter{Gender: *q.Gender})
	}
	if q.RateMax != nil {
		chain = append(chain, RateFilter{Max: *q.RateMax})
	}
	return chain
}

// ApplyFilters runs cands through every filter in order.
func ApplyFilters(cands []Candidate, chain []Filter) []Candidate {
	for _, f := range chain {
		cands = f.Apply(cands)
	}
	return cands
}

// AgeFilter keeps ages inside Range and rewards closeness to its midpoint.
type AgeFilter struct {
	Range AgeRange
}

func (AgeFilter) Name() string { return "age" }

func (f AgeFilter) Apply(cands []Candidate) []Candidate {
	avg := f.Range.Midpoint()
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Artist.Age < f.Range.Min || c.Artist.Age > f.Range.Max {
			continue
		}
		c.Score = c.Score.WithRank(DimensionAge, avg-math.Abs(float64(c.Artist.Age)-avg))
		out = append(out, c)
	}
	return out
}

// DistanceFilter keeps artists strictly closer than the radius. The rank is
// the inverse distance.
type DistanceFilter struct {
	Query GeoQuery
}

func (DistanceFilter) Name() string { return "distance" }

func (f DistanceFilter) Apply(cands []Candidate) []Candidate {
	center := f.Query.Centre()
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		d := geo.GreatCircleMiles(c.Artist.Location(), center)
		if d >= f.Query.RadiusMiles {
			continue
		}
		divisor := d
		if divisor == 0 {
			divisor = MinDistance
		}
		c.Score = c.Score.WithRank(DimensionDistance, 1/divisor)
		c.Score.Distance = &d
		out = append(out, c)
	}
	return out
}

// GenderFilter keeps exact gender matches. It does not score.
type GenderFilter struct {
	Gender string
}

func (GenderFilter) Name() string { return "gender" }

func (f GenderFilter) Apply(cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Artist.Gender == f.Gender {
			out = append(out, c)
		}
	}
	return out
}

// RateFilter keeps rates at or below Max. Cheaper artists score higher.
type RateFilter struct {
	Max float64
}

func (RateFilter) Name() string { return "rate" }

func (f RateFilter) Apply(cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Artist.Rate > f.Max {
			continue
		}
		c.Score = c.Score.WithRank(DimensionRate, math.Abs(f.Max-c.Artist.Rate))
		out = append(out, c)
	}
	return out
}
