// Package analysis runs the key and chord pass over a decoded track.
//
// [Run] steps through the samples in fixed windows, detects the pitch of
// each, accumulates a chroma histogram, estimates the key and labels the
// chord timeline. It yields to the scheduler periodically and honours
// context cancellation.
//
// [Tracker] owns the single in-flight pass for the current track: starting
// a new pass cancels the previous one, and a result is only published if
// its pass is still the current generation.
package analysis
