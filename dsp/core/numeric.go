package core

import "math"

// denormalFloor is the magnitude below which FlushDenormals returns zero.
const denormalFloor = 1e-30

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, value))
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals returns zero for values that feedback loops decay into
// and that stall arithmetic on some CPUs.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// DBToLinear converts dB to an amplitude ratio.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts an amplitude to dB: -Inf for zero, NaN below zero.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}

// SemitonesToRatio is the equal-tempered frequency ratio 2^(st/12).
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// HzToMidi returns the fractional MIDI note of freq, with A4 = 440 Hz = 69.
// Non-positive frequencies give NaN.
func HzToMidi(freq float64) float64 {
	if freq <= 0 {
		return math.NaN()
	}
	return 69 + 12*math.Log2(freq/440)
}
