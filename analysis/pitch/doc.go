// Package pitch estimates the fundamental frequency of a short mono window
// by time-domain autocorrelation.
//
// The detector gates silence by RMS, trims the window to start and end near
// zero crossings, picks the strongest autocorrelation lag after the initial
// decay and refines it with parabolic interpolation. Windows without a
// usable period report [Unvoiced].
package pitch
