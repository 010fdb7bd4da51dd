package testutil

import (
	"math"
	"slices"
	"testing"
)

func TestSine(t *testing.T) {
	s := Sine(1000, 8000, 0.5, 8)
	want := []float64{0, 0.5 * math.Sqrt2 / 2, 0.5, 0.5 * math.Sqrt2 / 2, 0, -0.5 * math.Sqrt2 / 2, -0.5, -0.5 * math.Sqrt2 / 2}
	RequireClose(t, s, want, 1e-12)

	// length must survive rounding of n/sampleRate
	if got := len(Sine(440, 44100, 1, 1001)); got != 1001 {
		t.Fatalf("len = %d, want 1001", got)
	}
}

func TestNoise(t *testing.T) {
	a := Noise(7, 0.25, 256)
	if !slices.Equal(a, Noise(7, 0.25, 256)) {
		t.Fatal("same seed, different samples")
	}
	if slices.Equal(a, Noise(8, 0.25, 256)) {
		t.Fatal("different seeds, same samples")
	}
	for i, v := range a {
		if v < -0.25 || v >= 0.25 {
			t.Fatalf("[%d] = %v outside [-0.25, 0.25)", i, v)
		}
	}
}

func TestImpulse(t *testing.T) {
	tests := []struct {
		n, pos int
		want   []float64
	}{
		{4, 0, []float64{1, 0, 0, 0}},
		{4, 3, []float64{0, 0, 0, 1}},
		{4, 4, []float64{0, 0, 0, 0}},
		{4, -1, []float64{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := Impulse(tt.n, tt.pos); !slices.Equal(got, tt.want) {
			t.Errorf("Impulse(%d, %d) = %v, want %v", tt.n, tt.pos, got, tt.want)
		}
	}
}

func TestConstant(t *testing.T) {
	if got := Constant(-0.5, 3); !slices.Equal(got, []float64{-0.5, -0.5, -0.5}) {
		t.Fatalf("Constant = %v", got)
	}
}

func TestToneSequence(t *testing.T) {
	got := ToneSequence(1000, 1, Tone{FreqHz: 250, Seconds: 0.004}, Tone{Seconds: 0.002})
	RequireClose(t, got, []float64{0, 1, 0, -1, 0, 0}, 1e-12)
}

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		midi int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653},
	}
	for _, tt := range tests {
		if got := NoteFrequency(tt.midi); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("NoteFrequency(%d) = %v, want %v", tt.midi, got, tt.want)
		}
	}
}
