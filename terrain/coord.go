// terrain/coord.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/avsim/autoflight/math"
)

// TileCoordinate identifies the 1x1 degree cell whose south-west corner
// sits at the given integer degrees. Longitude is normalized to [-180,
// 180) at construction.
type TileCoordinate struct {
	Lat int
	Lon int
}

// TileCoordinateFor returns the coordinate of the tile that owns the given
// position. Tiles are named by their south-west corner, so floor on both
// axes; note that floor, not truncation, is what we want for negative
// latitudes: 37.6 -> 37 but -3.2 -> -4.
func TileCoordinateFor(lat, lon float64) TileCoordinate {
	lon = math.NormalizeLongitude(lon)
	return TileCoordinate{
		Lat: int(gomath.Floor(lat)),
		Lon: int(gomath.Floor(lon)),
	}
}

// InCoverage reports whether the SRTM dataset can have a tile for this
// coordinate; the shuttle only mapped [-60, 60) latitude. Queries outside
// the band go straight to the fallback model without touching the disk.
func (c TileCoordinate) InCoverage() bool {
	return c.Lat >= -60 && c.Lat < 60
}

// Filename returns the canonical tile filename, e.g. "N37W123.hgt".
// The letters give the hemisphere and the digits the absolute degrees of
// the south-west corner.
func (c TileCoordinate) Filename() string {
	ns, lat := byte('N'), c.Lat
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	ew, lon := byte('E'), c.Lon
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, lat, ew, lon)
}

func (c TileCoordinate) String() string {
	return strings.TrimSuffix(c.Filename(), ".hgt")
}

// ParseTileFilename is the exact inverse of Filename. It accepts an
// optional ".zst" suffix for compressed tiles and reports ok=false for
// anything malformed rather than returning an error.
func ParseTileFilename(name string) (TileCoordinate, bool) {
	name = strings.TrimSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".hgt")

	if len(name) != 7 {
		return TileCoordinate{}, false
	}

	var latSign, lonSign int
	switch name[0] {
	case 'N':
		latSign = 1
	case 'S':
		latSign = -1
	default:
		return TileCoordinate{}, false
	}
	switch name[3] {
	case 'E':
		lonSign = 1
	case 'W':
		lonSign = -1
	default:
		return TileCoordinate{}, false
	}

	// strconv.Atoi is too forgiving here (it takes signs), so insist on
	// digits before converting.
	for _, ch := range name[1:3] + name[4:7] {
		if ch < '0' || ch > '9' {
			return TileCoordinate{}, false
		}
	}
	lat, _ := strconv.Atoi(name[1:3])
	if lat > 90 {
		return TileCoordinate{}, false
	}
	lon, _ := strconv.Atoi(name[4:7])
	if lon > 180 {
		return TileCoordinate{}, false
	}

	return TileCoordinate{Lat: latSign * lat, Lon: lonSign * lon}, true
}
