// Package interp holds the fractional-read kernels of the delay lines:
// two-point [Linear2] for the echo and four-point [Hermite4] for the
// swept pitch-shift taps.
package interp
