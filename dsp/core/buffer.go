package core

import "math"

// EnsureLen resizes buf to n samples, keeping the backing array when it is
// large enough. Contents are unspecified after growth.
func EnsureLen(buf []float64, n int) []float64 {
	switch {
	case n <= 0:
		return buf[:0]
	case n <= cap(buf):
		return buf[:n]
	}
	return make([]float64, n)
}

// RMS is the root-mean-square level of buf; empty input is silent.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	var energy float64
	for _, x := range buf {
		energy += x * x
	}
	return math.Sqrt(energy / float64(len(buf)))
}

// Peak is the largest magnitude in buf.
func Peak(buf []float64) float64 {
	var p float64
	for _, x := range buf {
		p = math.Max(p, math.Abs(x))
	}
	return p
}
