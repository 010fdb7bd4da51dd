// Package effects provides the processing stages of the live effects graph.
//
//   - Waveshaper: curve-lookup distortion with an amount-controlled soft clip.
//   - ResonantFilter: lowpass with cutoff and resonance automation.
//   - Equalizer: low shelf, mid peak and high shelf in series.
//   - FeedbackDelay: bounded delay line with a feedback loop and dry mix.
//   - Tremolo: sinusoidal gain modulation around unity.
//   - PitchShifter: two crossfaded sawtooth-modulated delay taps.
//   - Compressor: soft-knee downward compressor with automatic makeup gain.
//
// Continuous parameters glide toward new values with an exponential ramp
// (see dsp/smooth); setters validate and return errors, processing never
// allocates.
package effects
