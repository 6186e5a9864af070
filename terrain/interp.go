// terrain/interp.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"github.com/avsim/autoflight/math"
)

// bilinearSample returns the bilinearly-interpolated elevation in meters
// at the fractional grid position (fracRow, fracCol), both in [0, res-1].
// Positions are clamped to that range first so a query exactly on the
// north or east edge of a tile reads the edge posts instead of indexing
// off the grid.
//
// Void posts contribute 0 (sea level) to the blend.
func bilinearSample(t *Tile, fracRow, fracCol float64) float64 {
	limit := float64(t.res - 1)
	fracRow = math.Clamp(fracRow, 0, limit)
	fracCol = math.Clamp(fracCol, 0, limit)

	r0, c0 := int(fracRow), int(fracCol)
	r1 := math.Min(r0+1, t.res-1)
	c1 := math.Min(c0+1, t.res-1)
	fy := fracRow - float64(r0)
	fx := fracCol - float64(c0)

	post := func(row, col int) float64 {
		if v := t.Sample(row, col); v != VoidElevation {
			return float64(v)
		}
		return 0
	}

	v00 := post(r0, c0)
	v10 := post(r0, c1)
	v01 := post(r1, c0)
	v11 := post(r1, c1)

	return v00*(1-fx)*(1-fy) +
		v10*fx*(1-fy) +
		v01*(1-fx)*fy +
		v11*fx*fy
}
