// Package biquad runs second-order IIR sections for the equalizer and the
// resonant filter. Coefficients come from dsp/filter/design; a [Section]
// holds the two state words of the transposed direct form II recursion.
package biquad
