// util/util_test.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"slices"
	"testing"
)

func TestFilterSlice(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := FilterSlice(a, func(i int) bool { return i%2 == 0 })
	if !slices.Equal(b, []int{2, 4}) {
		t.Errorf("FilterSlice gave %v", b)
	}
}

func TestReduceSlice(t *testing.T) {
	a := []int{1, 2, 3, 4}
	sum := ReduceSlice(a, func(v int, r int) int { return v + r }, 10)
	if sum != 20 {
		t.Errorf("ReduceSlice sum = %d, want 20", sum)
	}
}
