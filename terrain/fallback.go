// terrain/fallback.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	_ "embed"
	"encoding/json"
	gomath "math"

	"github.com/avsim/autoflight/math"
)

// The fallback model answers elevation queries when no tile is available:
// outside the SRTM latitude band, over ocean, or simply with no dataset
// configured. It works from an embedded catalog of named regions, each
// either a set of surveyed anchor points blended by inverse-distance
// weighting or a parametric ridge for the big mountain chains. It is the
// terminal fallback for safety checks, so it never fails and always
// produces a finite number; anywhere the catalog doesn't cover is sea
// level.

//go:embed regions.json
var regionsJSON []byte

type regionCatalog struct {
	Version int         `json:"version"`
	Regions []region    `json:"regions"`
	Water   []waterBody `json:"water"`
}

type region struct {
	Name   string      `json:"name"`
	Bounds boundingBox `json:"bounds"`

	// Exactly one of the following is set.
	Anchors []anchor `json:"anchors,omitempty"`
	Ridge   *ridge   `json:"ridge,omitempty"`
}

type boundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

func (b boundingBox) contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// anchor is a representative surveyed point within a region.
type anchor struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Elev float64 `json:"elev"` // meters
}

// ridge is a closed-form model for a mountain chain: elevation falls off
// as a Gaussian with perpendicular distance from the chain's axis.
type ridge struct {
	Axis      [2][2]float64 `json:"axis"`       // [[lat,lon], [lat,lon]]
	Peak      float64       `json:"peak"`       // meters, on the axis
	Base      float64       `json:"base"`       // meters, far from the axis
	HalfWidth float64       `json:"half_width"` // degrees
}

type waterBody struct {
	Name   string      `json:"name"`
	Bounds boundingBox `json:"bounds"`
}

// FallbackModel estimates elevation from the embedded region catalog.
// Immutable after construction; safe for concurrent use without locking.
type FallbackModel struct {
	catalog regionCatalog
}

func newFallbackModel() *FallbackModel {
	m := &FallbackModel{}
	if err := json.Unmarshal(regionsJSON, &m.catalog); err != nil {
		// The catalog ships inside the binary; failing to parse it is a
		// build defect, not a runtime condition.
		panic("terrain: embedded region catalog: " + err.Error())
	}
	return m
}

// Estimate returns a heuristic elevation in meters. The first region whose
// bounding box contains the point wins; the catalog orders more specific
// regions before the sprawling ones.
func (m *FallbackModel) Estimate(lat, lon float64) float64 {
	lon = math.NormalizeLongitude(lon)

	for _, r := range m.catalog.Regions {
		if !r.Bounds.contains(lat, lon) {
			continue
		}
		if r.Ridge != nil {
			return r.Ridge.estimate(lat, lon)
		}
		if len(r.Anchors) > 0 {
			return idwEstimate(r.Anchors, lat, lon)
		}
	}
	return 0 // sea level
}

// idwEstimate blends anchor elevations by inverse-distance-squared
// weighting. Weights are capped so that a query landing exactly on an
// anchor doesn't divide by zero; the cap effectively returns that
// anchor's elevation.
func idwEstimate(anchors []anchor, lat, lon float64) float64 {
	const maxWeight = 1e9

	var sum, wsum float64
	for _, a := range anchors {
		d2 := math.Sqr(lat-a.Lat) + math.Sqr(lon-a.Lon)
		w := maxWeight
		if d2 > 1/maxWeight {
			w = 1 / d2
		}
		sum += w * a.Elev
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func (r *ridge) estimate(lat, lon float64) float64 {
	d := distanceToSegment(lat, lon, r.Axis[0], r.Axis[1])
	t := d / r.HalfWidth
	return r.Base + (r.Peak-r.Base)*gomath.Exp(-t*t)
}

// distanceToSegment returns the degree-space distance from (lat, lon) to
// the segment a-b, with the longitude axis scaled by cos(lat) so east-west
// degrees aren't overweighted at high latitudes.
func distanceToSegment(lat, lon float64, a, b [2]float64) float64 {
	scale := gomath.Cos(math.Radians(lat))

	px, py := (lon-a[1])*scale, lat-a[0]
	vx, vy := (b[1]-a[1])*scale, b[0]-a[0]

	l2 := vx*vx + vy*vy
	t := 0.0
	if l2 > 0 {
		t = math.Clamp((px*vx+py*vy)/l2, 0, 1)
	}
	dx, dy := px-t*vx, py-t*vy
	return gomath.Sqrt(dx*dx + dy*dy)
}

// IsWaterBody reports whether the point is probably over water: inside a
// cataloged lake or ocean box, or estimated at sea level within the
// maritime longitude bands. The second clause can misclassify low coastal
// land (the Netherlands problem); treat the answer as advisory, which is
// all the ditching logic needs.
func (m *FallbackModel) IsWaterBody(lat, lon float64) bool {
	lon = math.NormalizeLongitude(lon)

	for _, w := range m.catalog.Water {
		if w.Bounds.contains(lat, lon) {
			return true
		}
	}

	const nearSeaLevel = 5 // meters
	if m.Estimate(lat, lon) < nearSeaLevel {
		// Atlantic and Pacific bands.
		if (lon >= -70 && lon <= -8 && lat < 45) || lon <= -125 || lon >= 142 {
			return true
		}
	}
	return false
}
