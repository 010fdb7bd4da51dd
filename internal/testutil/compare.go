package testutil

import (
	"math"
	"testing"
)

// RequireClose fails t at the first index where got and want differ by
// more than eps, or when their lengths differ.
func RequireClose(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, g := range got {
		if d := math.Abs(g - want[i]); !(d <= eps) {
			t.Fatalf("[%d] = %g, want %g (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireFinite fails t on the first NaN or infinity in data.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("[%d] = %v, want finite", i, v)
		}
	}
}
