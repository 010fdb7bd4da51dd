package pitch

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"gonum.org/v1/gonum/floats"
)

// Unvoiced is returned for windows without a detectable period.
const Unvoiced = -1.0

const (
	// DefaultRMSGate is the RMS level below which a window is silence.
	DefaultRMSGate = 0.01
	// DefaultTrimThreshold is the amplitude treated as "near zero" when
	// trimming the window edges.
	DefaultTrimThreshold = 0.2
)

// Option configures a Detector.
type Option func(*Detector) error

// WithRMSGate sets the silence gate.
func WithRMSGate(rms float64) Option {
	return func(d *Detector) error {
		if rms < 0 || !core.IsFinite(rms) {
			return fmt.Errorf("pitch rms gate must be >= 0: %f", rms)
		}
		d.rmsGate = rms
		return nil
	}
}

// WithTrimThreshold sets the edge-trimming amplitude.
func WithTrimThreshold(threshold float64) Option {
	return func(d *Detector) error {
		if threshold <= 0 || !core.IsFinite(threshold) {
			return fmt.Errorf("pitch trim threshold must be > 0: %f", threshold)
		}
		d.trim = threshold
		return nil
	}
}

// Detector estimates pitch and reuses its correlation scratch between
// calls. A Detector is not safe for concurrent use.
type Detector struct {
	sampleRate float64
	rmsGate    float64
	trim       float64
	corr       []float64
}

// NewDetector returns a detector for audio at sampleRate.
func NewDetector(sampleRate float64, opts ...Option) (*Detector, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("pitch sample rate must be > 0: %f", sampleRate)
	}

	d := &Detector{
		sampleRate: sampleRate,
		rmsGate:    DefaultRMSGate,
		trim:       DefaultTrimThreshold,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// SampleRate returns the configured sample rate.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// Detect returns the fundamental frequency of window in Hz, or Unvoiced.
func (d *Detector) Detect(window []float64) float64 {
	n := len(window)
	if n == 0 {
		return Unvoiced
	}

	if math.Sqrt(floats.Dot(window, window)/float64(n)) < d.rmsGate {
		return Unvoiced
	}

	s := window[d.trimStart(window):d.trimEnd(window)]
	m := len(s)
	if m < 2 {
		return Unvoiced
	}

	d.corr = core.EnsureLen(d.corr, m)
	c := d.corr
	for lag := 0; lag < m; lag++ {
		c[lag] = floats.Dot(s[:m-lag], s[lag:])
	}

	// skip the zero-lag lobe
	start := 0
	for start+1 < m && c[start] > c[start+1] {
		start++
	}
	peak := start + floats.MaxIdx(c[start:])

	left := c[max(peak-1, 0)]
	right := c[min(peak+1, m-1)]
	a := (left + right - 2*c[peak]) / 2
	b := (right - left) / 2
	lag := float64(peak)
	if a != 0 {
		lag -= b / (2 * a)
	}

	if lag <= 0 || !core.IsFinite(lag) {
		return Unvoiced
	}
	freq := d.sampleRate / lag
	if !core.IsFinite(freq) {
		return Unvoiced
	}
	return freq
}

// trimStart is the first index in the first half whose magnitude is below
// the trim threshold, or 0.
func (d *Detector) trimStart(w []float64) int {
	for i := 0; 2*i < len(w); i++ {
		if math.Abs(w[i]) < d.trim {
			return i
		}
	}
	return 0
}

// trimEnd scans back from the end through the last half; the slice end
// defaults to excluding the final sample.
func (d *Detector) trimEnd(w []float64) int {
	n := len(w)
	for i := 1; 2*i < n; i++ {
		if math.Abs(w[n-i]) < d.trim {
			return n - i
		}
	}
	return n - 1
}

// Detect is a convenience wrapper around a default Detector. It returns
// Unvoiced for an invalid sample rate.
func Detect(window []float64, sampleRate float64) float64 {
	d, err := NewDetector(sampleRate)
	if err != nil {
		return Unvoiced
	}
	return d.Detect(window)
}
