// Package spectrum provides the visualization tap of the effects graph.
//
// [Analyser] keeps the most recent fftSize output samples, windows them
// with a Blackman window and reports smoothed per-bin magnitudes, either in
// dB or scaled to bytes for drawing. It is written to from the render
// goroutine and read from the UI goroutine.
package spectrum
