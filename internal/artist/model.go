// Package artist provides the artist model and the repositories that supply
// artist records to the ranking pipeline.
package artist

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/onnwee/artistrank/internal/geo"
)

// Gender values used by the fixture data. Any other string is accepted and
// matched verbatim by the gender filter.
const (
	GenderFemale = "F"
	GenderMale   = "M"
)

// Repository errors.
var (
	// ErrInvalidRecord is returned when a stored record cannot be turned into an Artist.
	ErrInvalidRecord = errors.New("invalid artist record")
)

// Artist is a bookable artist as stored in the backing store.
// Ranking state is never stored on the artist; see ranking.Scorecard.
type Artist struct {
	UUID      string  `json:"uuid"`
	Gender    string  `json:"gender"`
	Age       int     `json:"age"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rate      float64 `json:"rate"`
}

// Location returns the artist's position as a geo.Point.
func (a Artist) Location() geo.Point {
	return geo.Point{Lat: a.Latitude, Lng: a.Longitude}
}

// Validate rejects artists whose coordinates lie outside the globe or
// whose rate is not a finite number. NaN coordinates fail the range check.
func (a Artist) Validate() error {
	if !a.Location().Valid() {
		return fmt.Errorf("%w: %s: location (%v, %v) out of range", ErrInvalidRecord, a.UUID, a.Latitude, a.Longitude)
	}
	if math.IsNaN(a.Rate) || math.IsInf(a.Rate, 0) {
		return fmt.Errorf("%w: %s: rate %v is not finite", ErrInvalidRecord, a.UUID, a.Rate)
	}
	return nil
}

// Repository supplies the full artist set. Implementations must return a
// freshly constructed slice on every call; callers are free to keep it.
type Repository interface {
	// List returns every artist in store order.
	List(ctx context.Context) ([]Artist, error)
}
