// terrain/tile.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"time"
)

// Tile is a decoded 1x1 degree elevation grid. A Tile is either fully
// loaded or nothing: failed loads never leave a partially-populated tile
// behind (the cache simply doesn't insert one). Tiles are owned by the
// TileCache and dropped on eviction.
type Tile struct {
	coord   TileCoordinate
	res     int // grid is res x res; res-1 intervals per degree
	samples []int16
	voids   int
	loaded  bool
	loadAt  time.Time
}

func (t *Tile) Coordinate() TileCoordinate { return t.coord }

// Resolution returns the grid dimension N; 1201 for SRTM3, 3601 for SRTM1.
func (t *Tile) Resolution() int { return t.res }

func (t *Tile) Loaded() bool { return t != nil && t.loaded }

// Sample returns the raw elevation in meters at integer grid position
// (row, col), row 0 at the tile's north edge. Out-of-range indices clamp
// to the edge post rather than faulting; the interpolator leans on this at
// tile borders.
func (t *Tile) Sample(row, col int) int16 {
	if row < 0 {
		row = 0
	} else if row >= t.res {
		row = t.res - 1
	}
	if col < 0 {
		col = 0
	} else if col >= t.res {
		col = t.res - 1
	}
	return t.samples[row*t.res+col]
}

// VoidCount returns the number of unmeasured posts in the tile, counted at
// decode time; useful for logging how trustworthy answers from a
// freshly-loaded tile will be.
func (t *Tile) VoidCount() int {
	return t.voids
}

// MemoryEstimate returns the approximate resident size of the tile.
func (t *Tile) MemoryEstimate() int64 {
	return int64(2*len(t.samples)) + 64
}

// NewUniformTile returns a loaded tile whose every sample is elev meters.
// Fixture helper for tests and elevquery -maketile.
func NewUniformTile(coord TileCoordinate, res int, elev int16) *Tile {
	samples := make([]int16, res*res)
	for i := range samples {
		samples[i] = elev
	}
	return &Tile{
		coord:   coord,
		res:     res,
		samples: samples,
		loaded:  true,
		loadAt:  time.Now(),
	}
}

// SetSample overwrites the post at (row, col); only fixtures and tile
// generation use this, the query path never mutates tiles.
func (t *Tile) SetSample(row, col int, elev int16) {
	t.samples[row*t.res+col] = elev
}
