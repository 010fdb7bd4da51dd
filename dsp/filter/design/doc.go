// Package design provides RBJ-style biquad coefficient designers for the
// tone-shaping stages: a resonant lowpass, a peaking band and low/high
// shelves. The results are consumable by dsp/filter/biquad.
package design
