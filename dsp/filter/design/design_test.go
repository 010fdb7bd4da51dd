package design

import (
	"math"
	"testing"

	"github.com/ItzJonatan/Set-List-Pro/dsp/filter/biquad"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func magDB(c biquad.Coefficients, f, sr float64) float64 {
	return c.MagnitudeDB(f, sr)
}

func TestResonantLowpass(t *testing.T) {
	const sr = 44100.0

	flat := ResonantLowpass(2000, 0, sr)
	if got := magDB(flat, 2000, sr); !almostEqual(got, 0, 0.05) {
		t.Fatalf("0 dB resonance corner gain = %v, want ~0 (Q=1)", got)
	}

	peaky := ResonantLowpass(2000, 12, sr)
	if got := magDB(peaky, 2000, sr); !almostEqual(got, 12, 0.1) {
		t.Fatalf("12 dB resonance corner gain = %v, want ~12", got)
	}

	if !(magDB(flat, 200, sr) > magDB(flat, 10000, sr)+20) {
		t.Fatal("lowpass does not attenuate above the cutoff")
	}

	if got := ResonantLowpass(20000, 0, 32000); got != biquad.Identity() {
		t.Fatalf("cutoff above Nyquist should pass through, got %+v", got)
	}
}

func TestPeak(t *testing.T) {
	const sr = 44100.0
	up := Peak(1000, 6, 0.5, sr)
	down := Peak(1000, -6, 0.5, sr)
	if !almostEqual(magDB(up, 1000, sr), 6, 1e-6) || !almostEqual(magDB(down, 1000, sr), -6, 1e-6) {
		t.Fatal("peak centre gain mismatch")
	}

	flat := Peak(1000, 0, 0.5, sr)
	for _, f := range []float64{50, 1000, 15000} {
		if got := magDB(flat, f, sr); !almostEqual(got, 0, 1e-9) {
			t.Fatalf("0 dB peak at %v Hz = %v dB", f, got)
		}
	}
}

func TestShelves(t *testing.T) {
	const sr = 44100.0
	ls := LowShelf(320, 10, ShelfQ, sr)
	if got := magDB(ls, 20, sr); !almostEqual(got, 10, 0.2) {
		t.Fatalf("low shelf DC gain = %v, want ~10", got)
	}
	if got := magDB(ls, 320, sr); !almostEqual(got, 5, 0.1) {
		t.Fatalf("low shelf corner gain = %v, want ~5", got)
	}

	hs := HighShelf(3200, -10, ShelfQ, sr)
	if got := magDB(hs, 20000, sr); !almostEqual(got, -10, 0.3) {
		t.Fatalf("high shelf top gain = %v, want ~-10", got)
	}
	if got := magDB(hs, 50, sr); !almostEqual(got, 0, 0.05) {
		t.Fatalf("high shelf low gain = %v, want ~0", got)
	}
}

func TestInvalidInputs(t *testing.T) {
	zero := biquad.Coefficients{}
	tests := []struct {
		name string
		got  biquad.Coefficients
	}{
		{"peak zero freq", Peak(0, 6, 1, 44100)},
		{"peak above nyquist", Peak(30000, 6, 1, 44100)},
		{"shelf bad rate", LowShelf(320, 6, ShelfQ, 0)},
		{"shelf NaN freq", HighShelf(math.NaN(), 6, ShelfQ, 44100)},
		{"lowpass zero freq", ResonantLowpass(0, 0, 44100)},
		{"lowpass NaN freq", ResonantLowpass(math.NaN(), 1, 44100)},
		{"lowpass bad rate", ResonantLowpass(1000, 0, -1)},
	}
	for _, tt := range tests {
		if tt.got != zero {
			t.Errorf("%s: got %+v, want zero coefficients", tt.name, tt.got)
		}
	}

	// Non-positive Q falls back to ShelfQ.
	if Peak(1000, 6, 0, 44100) != Peak(1000, 6, ShelfQ, 44100) {
		t.Fatal("Q fallback mismatch")
	}
}
