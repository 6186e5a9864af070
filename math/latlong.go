// math/latlong.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

const NMPerLatitude = 60

const NauticalMilesToFeet = 6076.12

const MetersToFeet = 3.28084

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude.
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

// Lerp2LL returns the point x of the way between a and b. Linear in
// lat-long, which is fine for the short segments we deal with.
func Lerp2LL(x float64, a Point2LL, b Point2LL) Point2LL {
	return Point2LL{Lerp(x, a[0], b[0]), Lerp(x, a[1], b[1])}
}

// NMDistance2LL returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	const R = 6371000 // metres
	lat1, lon1 := Radians(a[1]), Radians(a[0])
	lat2, lon2 := Radians(b[1]), Radians(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := R * c // in metres

	return dm * 0.000539957
}

// NMPerLongitudeAt returns the east-west scale at the given latitude;
// longitude degrees shrink toward the poles.
func NMPerLongitudeAt(lat float64) float64 {
	return NMPerLatitude * gomath.Cos(Radians(lat))
}

// NormalizeLongitude wraps a longitude into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	lon = gomath.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
