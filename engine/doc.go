// Package engine is the live effects graph. It pulls audio from a
// connected source, runs it through a fixed chain of stages and hands the
// result to the host, which drives rendering through the beep.Streamer
// contract.
//
// Chain:
//
//	source -> pitch shifter -> distortion -> resonant lowpass
//	       -> low shelf 320 Hz -> peak 1 kHz -> high shelf 3.2 kHz
//	       -> dry + feedback delay -> tremolo -> compressor
//	       -> master gain -> spectrum tap -> output
//
// Parameters are set by name from any goroutine and take effect at the
// start of the next render block. Continuous parameters glide; the
// distortion curve switches at once.
package engine
