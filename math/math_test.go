// math/math_test.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestClamp(t *testing.T) {
	if v := Clamp(5, 1, 10); v != 5 {
		t.Errorf("Clamp(5,1,10) = %d, want 5", v)
	}
	if v := Clamp(-3, 1, 10); v != 1 {
		t.Errorf("Clamp(-3,1,10) = %d, want 1", v)
	}
	if v := Clamp(11.5, 1.0, 10.0); v != 10 {
		t.Errorf("Clamp(11.5,1,10) = %f, want 10", v)
	}
}

func TestLerp(t *testing.T) {
	if v := Lerp(0, 2, 8); v != 2 {
		t.Errorf("Lerp(0,2,8) = %f, want 2", v)
	}
	if v := Lerp(1, 2, 8); v != 8 {
		t.Errorf("Lerp(1,2,8) = %f, want 8", v)
	}
	if v := Lerp(0.5, 2, 8); v != 5 {
		t.Errorf("Lerp(0.5,2,8) = %f, want 5", v)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	testCases := []struct {
		lon  float64
		want float64
	}{
		{0, 0},
		{-118.4, -118.4},
		{180, -180},
		{-180, -180},
		{181, -179},
		{359, -1},
		{-181, 179},
		{540, -180},
	}
	for _, tc := range testCases {
		if got := NormalizeLongitude(tc.lon); gomath.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NormalizeLongitude(%v) = %v, want %v", tc.lon, got, tc.want)
		}
	}
}

func TestNMDistance2LL(t *testing.T) {
	// KSFO to KLAX is about 293 nm.
	ksfo := Point2LL{-122.3790, 37.6213}
	klax := Point2LL{-118.4085, 33.9425}
	d := NMDistance2LL(ksfo, klax)
	if d < 280 || d > 300 {
		t.Errorf("KSFO-KLAX distance = %f nm, want ~293", d)
	}

	if d := NMDistance2LL(ksfo, ksfo); d != 0 {
		t.Errorf("zero-length distance = %f, want 0", d)
	}
}

func TestLerp2LL(t *testing.T) {
	a := Point2LL{-122, 37}
	b := Point2LL{-121, 38}
	mid := Lerp2LL(0.5, a, b)
	if mid[0] != -121.5 || mid[1] != 37.5 {
		t.Errorf("Lerp2LL midpoint = %v, want (-121.5, 37.5)", mid)
	}
}
