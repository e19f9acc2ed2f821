package ranking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/onnwee/artistrank/internal/geo"
)

// Filter keys recognized by ParseQuery. Anything else is ignored.
const (
	FilterAge      = "age"
	FilterAgeMin   = "age_min"
	FilterAgeMax   = "age_max"
	FilterLocation = "location"
	FilterRateMax  = "rate_max"
	FilterGender   = "gender"
)

// Open age bounds used when only one of age_min / age_max is given.
const (
	DefaultAgeMin = 0
	DefaultAgeMax = 100
)

// Parameter groups reported by ParameterError.
const (
	GroupFilters = "filters"
	GroupWeights = "weights"
)

var (
	// ErrMalformedLocation is returned for a location that is not "lat,lon,radius".
	ErrMalformedLocation = errors.New("expected \"latitude,longitude,radius\"")
	// ErrMalformedAge is returned for an age that is not "v" or "min,max".
	ErrMalformedAge = errors.New("expected \"age\" or \"min,max\"")
	// ErrInvertedRange is returned when min > max.
	ErrInvertedRange = errors.New("minimum exceeds maximum")
	// ErrNotFinite is returned for NaN or infinite numbers.
	ErrNotFinite = errors.New("value must be a finite number")
	// ErrNegativeWeight is returned for weights below zero.
	ErrNegativeWeight = errors.New("weight must not be negative")
	// ErrLocationOutOfRange is returned for a search centre off the globe.
	ErrLocationOutOfRange = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	// ErrWeightOverflow is returned when the weights together sum past float64 range.
	ErrWeightOverflow = errors.New("weights sum to a non-finite total")
)

// ParameterError reports a caller-supplied filter or weight that could not be parsed.
type ParameterError struct {
	Group string // GroupFilters or GroupWeights
	Name  string
	Value string
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s.%s %q: %v", e.Group, e.Name, e.Value, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// AgeRange is an inclusive age interval.
type AgeRange struct {
	Min int
	Max int
}

// Midpoint returns the centre of the range.
func (r AgeRange) Midpoint() float64 {
	return float64(r.Min) + float64(r.Max-r.Min)/2
}

// GeoQuery selects artists strictly within RadiusMiles of (Latitude, Longitude).
type GeoQuery struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
}

// Centre returns the search centre as a geo.Point.
func (g GeoQuery) Centre() geo.Point {
	return geo.Point{Lat: g.Latitude, Lng: g.Longitude}
}

// Query is the typed form of a filters/weights request. Nil fields are not
// applied and leave their dimension unscored.
type Query struct {
	Age      *AgeRange
	Location *GeoQuery
	RateMax  *float64
	Gender   *string
	Weights  Weights
}

// ParseQuery converts string-keyed filters and weights into a Query.
// Either map may be nil. Unknown keys are ignored.
func ParseQuery(filters, weights map[string]string) (Query, error) {
	var q Query

	age, err := parseAge(filters)
	if err != nil {
		return Query{}, err
	}
	q.Age = age

	if raw, ok := filters[FilterLocation]; ok {
		loc, err := parseLocation(raw)
		if err != nil {
			return Query{}, &ParameterError{Group: GroupFilters, Name: FilterLocation, Value: raw, Err: err}
		}
		q.Location = &loc
	}

	if raw, ok := filters[FilterRateMax]; ok {
		v, err := parseFloat(raw)
		if err != nil {
			return Query{}, &ParameterError{Group: GroupFilters, Name: FilterRateMax, Value: raw, Err: err}
		}
		q.RateMax = &v
	}

	if raw, ok := filters[FilterGender]; ok {
		g := raw
		q.Gender = &g
	}

	q.Weights, err = ParseWeights(weights)
	if err != nil {
		return Query{}, err
	}
	return q, nil
}

// ParseWeights reads the age, distance and rate weights. Missing keys are 0.
func ParseWeights(weights map[string]string) (Weights, error) {
	var w Weights
	for _, d := range Dimensions {
		raw, ok := weights[d.String()]
		if !ok {
			continue
		}
		v, err := parseFloat(raw)
		if err == nil && v < 0 {
			err = ErrNegativeWeight
		}
		if err == nil && math.IsInf(w.Sum()+v, 0) {
			err = ErrWeightOverflow
		}
		if err != nil {
			return Weights{}, &ParameterError{Group: GroupWeights, Name: d.String(), Value: raw, Err: err}
		}
		w = w.With(d, v)
	}
	return w, nil
}

// parseAge handles "age" first; age_min/age_max only apply when "age" is absent.
func parseAge(filters map[string]string) (*AgeRange, error) {
	if raw, ok := filters[FilterAge]; ok {
		r, err := parseAgeRange(raw)
		if err != nil {
			return nil, &ParameterError{Group: GroupFilters, Name: FilterAge, Value: raw, Err: err}
		}
		return &r, nil
	}

	rawMin, hasMin := filters[FilterAgeMin]
	rawMax, hasMax := filters[FilterAgeMax]
	if !hasMin && !hasMax {
		return nil, nil
	}

	r := AgeRange{Min: DefaultAgeMin, Max: DefaultAgeMax}
	var err error
	if hasMin {
		if r.Min, err = parseInt(rawMin); err != nil {
			return nil, &ParameterError{Group: GroupFilters, Name: FilterAgeMin, Value: rawMin, Err: err}
		}
	}
	if hasMax {
		if r.Max, err = parseInt(rawMax); err != nil {
			return nil, &ParameterError{Group: GroupFilters, Name: FilterAgeMax, Value: rawMax, Err: err}
		}
	}
	if r.Min > r.Max {
		return nil, &ParameterError{
			Group: GroupFilters,
			Name:  FilterAgeMin,
			Value: rawMin,
			Err:   ErrInvertedRange,
		}
	}
	return &r, nil
}

func parseAgeRange(raw string) (AgeRange, error) {
	parts := strings.Split(raw, ",")
	switch len(parts) {
	case 1:
		v, err := parseInt(parts[0])
		if err != nil {
			return AgeRange{}, err
		}
		return AgeRange{Min: v, Max: v}, nil
	case 2:
		lo, err := parseInt(parts[0])
		if err != nil {
			return AgeRange{}, err
		}
		hi, err := parseInt(parts[1])
		if err != nil {
			return AgeRange{}, err
		}
		if lo > hi {
			return AgeRange{}, ErrInvertedRange
		}
		return AgeRange{Min: lo, Max: hi}, nil
	default:
		return AgeRange{}, ErrMalformedAge
	}
}

func parseLocation(raw string) (GeoQuery, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return GeoQuery{}, fmt.Errorf("%w, got %d fields", ErrMalformedLocation, len(parts))
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := parseFloat(p)
		if err != nil {
			return GeoQuery{}, err
		}
		vals[i] = v
	}

	q := GeoQuery{Latitude: vals[0], Longitude: vals[1], RadiusMiles: vals[2]}
	if !q.Centre().Valid() {
		return GeoQuery{}, fmt.Errorf("%w: (%v, %v)", ErrLocationOutOfRange, q.Latitude, q.Longitude)
	}
	return q, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}
