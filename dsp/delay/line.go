// Package delay provides the circular sample store behind the echo and
// pitch-shift effects.
package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/interp"
)

// ErrInvalid is returned for non-positive or non-finite line dimensions.
var ErrInvalid = errors.New("delay: invalid line size")

// guard is the headroom kept past the longest delay so the 4-point reader
// never touches the slot being overwritten.
const guard = 3

// Line is a fixed-capacity ring. Tap 0 is the newest sample.
type Line struct {
	ring []float64
	next int
	mode interp.Mode
}

// Option adjusts a Line at construction.
type Option func(*Line)

// WithMode picks the interpolator used by ReadFractional. Lines read
// linearly unless told otherwise.
func WithMode(mode interp.Mode) Option {
	return func(l *Line) { l.mode = mode }
}

// New allocates a line holding size samples.
func New(size int, opts ...Option) (*Line, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalid, size)
	}
	l := &Line{ring: make([]float64, size), mode: interp.Linear}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// ForDuration sizes a line so ReadFractional can reach seconds of delay at
// sampleRate.
func ForDuration(seconds, sampleRate float64, opts ...Option) (*Line, error) {
	if !core.IsFinite(seconds) || !core.IsFinite(sampleRate) || seconds <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %gs at %g Hz", ErrInvalid, seconds, sampleRate)
	}
	return New(int(math.Ceil(seconds*sampleRate))+guard+1, opts...)
}

// Len is the ring capacity in samples.
func (l *Line) Len() int { return len(l.ring) }

// MaxDelay is the longest delay, in samples, ReadFractional will honour.
func (l *Line) MaxDelay() float64 { return float64(len(l.ring) - guard) }

// Write pushes one sample, evicting the oldest.
func (l *Line) Write(x float64) {
	l.ring[l.next] = x
	if l.next++; l.next == len(l.ring) {
		l.next = 0
	}
}

// Read returns the sample pushed tap writes ago. Taps wrap modulo Len.
func (l *Line) Read(tap int) float64 {
	n := len(l.ring)
	i := (l.next - 1 - tap) % n
	if i < 0 {
		i += n
	}
	return l.ring[i]
}

// ReadFractional reads between taps. The delay is clamped to
// [0, MaxDelay]; NaN reads tap 0.
func (l *Line) ReadFractional(delay float64) float64 {
	delay = core.Clamp(delay, 0, l.MaxDelay())
	if math.IsNaN(delay) {
		delay = 0
	}
	tap := int(delay)
	frac := delay - float64(tap)
	if l.mode != interp.Hermite {
		return interp.Linear2(frac, l.Read(tap), l.Read(tap+1))
	}
	return interp.Hermite4(frac, l.Read(max(tap-1, 0)), l.Read(tap), l.Read(tap+1), l.Read(tap+2))
}

// Reset silences the ring.
func (l *Line) Reset() {
	clear(l.ring)
	l.next = 0
}
