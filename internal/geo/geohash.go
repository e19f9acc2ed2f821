package geo

import "strings"

// AreaPrecision is the geohash length used when a search centre is
// recorded in traces or logs. Six characters is roughly a 1.2 km cell.
const AreaPrecision = 6

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Geohash encodes p as a geohash of n characters. n < 1 uses AreaPrecision.
func (p Point) Geohash(n int) string {
	if n < 1 {
		n = AreaPrecision
	}

	lat := [2]float64{-90, 90}
	lng := [2]float64{-180, 180}

	var sb strings.Builder
	sb.Grow(n)

	var idx, bit int
	lngBit := true
	for sb.Len() < n {
		span, v := &lat, p.Lat
		if lngBit {
			span, v = &lng, p.Lng
		}
		mid := (span[0] + span[1]) / 2
		idx <<= 1
		if v > mid {
			idx |= 1
			span[0] = mid
		} else {
			span[1] = mid
		}
		lngBit = !lngBit

		if bit++; bit == 5 {
			sb.WriteByte(geohashAlphabet[idx])
			idx, bit = 0, 0
		}
	}
	return sb.String()
}
