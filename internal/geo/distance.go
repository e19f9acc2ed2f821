// Package geo provides geographic helpers for distance-based filtering.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.009

// KmPerMile converts statute miles to kilometres.
const KmPerMile = 1.609344

// Point represents a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the latitude/longitude bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// GreatCircleKm returns the spherical-earth distance between two points in kilometres.
//
// Uses the atan2 form of the Vincenty special case for a sphere, which stays
// accurate for both antipodal and very close points.
func GreatCircleKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lng1 := toRadians(a.Lng)
	lat2 := toRadians(b.Lat)
	lng2 := toRadians(b.Lng)

	sinLat1, cosLat1 := math.Sin(lat1), math.Cos(lat1)
	sinLat2, cosLat2 := math.Sin(lat2), math.Cos(lat2)

	deltaLng := lng2 - lng1
	sinDeltaLng, cosDeltaLng := math.Sin(deltaLng), math.Cos(deltaLng)

	y := math.Sqrt(math.Pow(cosLat2*sinDeltaLng, 2) +
		math.Pow(cosLat1*sinLat2-sinLat1*cosLat2*cosDeltaLng, 2))
	x := sinLat1*sinLat2 + cosLat1*cosLat2*cosDeltaLng

	return EarthRadiusKm * math.Atan2(y, x)
}

// GreatCircleMiles returns the spherical-earth distance between two points in miles.
func GreatCircleMiles(a, b Point) float64 {
	return GreatCircleKm(a, b) / KmPerMile
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
