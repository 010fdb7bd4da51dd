// Package testutil holds the synthetic signals and float comparisons the
// package tests share.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns n samples of amp*sin(2πft) starting at phase zero.
func Sine(freqHz, sampleRate, amp float64, n int) []float64 {
	return ToneSequence(sampleRate, amp, Tone{FreqHz: freqHz, Seconds: float64(n) / sampleRate})[:n:n]
}

// Noise returns n uniform samples in [-amp, amp). The same seed always
// yields the same samples.
func Noise(seed int64, amp float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * (2*rng.Float64() - 1)
	}
	return out
}

// Impulse returns n zeros with a single 1 at pos; pos outside [0, n)
// leaves the buffer silent.
func Impulse(n, pos int) []float64 {
	out := make([]float64, n)
	if uint(pos) < uint(n) {
		out[pos] = 1
	}
	return out
}

// Constant returns n copies of v.
func Constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Tone is one segment of a ToneSequence. A zero FreqHz renders silence.
type Tone struct {
	FreqHz  float64
	Seconds float64
}

// ToneSequence renders tones back to back. Phase carries across segment
// boundaries so note changes do not click.
func ToneSequence(sampleRate, amp float64, tones ...Tone) []float64 {
	var out []float64
	phase := 0.0
	for _, tone := range tones {
		n := int(math.Round(tone.Seconds * sampleRate))
		inc := 2 * math.Pi * tone.FreqHz / sampleRate
		for range n {
			out = append(out, amp*math.Sin(phase))
			phase = math.Mod(phase+inc, 2*math.Pi)
		}
	}
	return out
}

// NoteFrequency is the equal-tempered pitch of MIDI note midi, tuned to
// A4 = 440 Hz.
func NoteFrequency(midi int) float64 {
	return 440 * math.Exp2(float64(midi-69)/12)
}
