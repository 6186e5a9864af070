// math/core.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Terrain work cares about sub-arcsecond positions, so everything here is
// float64; an SRTM1 post is 1/3600 degree and float32 runs out of mantissa
// near the antimeridian.

func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

func Abs[V constraints.Integer | constraints.Float](v V) V {
	if v < 0 {
		return -v
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
