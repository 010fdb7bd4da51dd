// Package tonal turns pitch observations into musical structure: pitch
// classes, a chroma histogram, a Krumhansl-Schmuckler key estimate and a
// debounced chord timeline relative to that key.
package tonal
