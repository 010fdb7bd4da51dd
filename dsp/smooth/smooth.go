// Package smooth provides click-free parameter automation: a value that
// approaches its target exponentially, sample by sample.
package smooth

import (
	"fmt"
	"math"
)

// DefaultTimeConstant is the smoothing time constant in seconds used for
// live control changes (about 10 ms, inaudible as a ramp, long enough to
// avoid zipper noise).
const DefaultTimeConstant = 0.01

// settleFactor is the number of time constants after which a ramp is
// treated as finished (e^-7 < 0.1 %).
const settleFactor = 7

// Param is a smoothed scalar. The zero value is not usable; call New.
type Param struct {
	current float64
	target  float64
	coef    float64
	tau     float64
	sr      float64
	// remaining samples until the ramp is snapped to the target
	remaining int
}

// New returns a Param resting at initial.
func New(initial, tauSeconds, sampleRate float64) (*Param, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("smoothing sample rate must be > 0: %f", sampleRate)
	}
	if tauSeconds < 0 || math.IsNaN(tauSeconds) || math.IsInf(tauSeconds, 0) {
		return nil, fmt.Errorf("smoothing time constant must be >= 0: %f", tauSeconds)
	}

	p := &Param{current: initial, target: initial, tau: tauSeconds, sr: sampleRate}
	p.updateCoefficient()
	return p, nil
}

// SetTarget starts a ramp from the current value toward target.
func (p *Param) SetTarget(target float64) {
	if target == p.target && p.remaining == 0 {
		return
	}
	p.target = target
	if p.coef >= 1 {
		p.current = target
		p.remaining = 0
		return
	}
	p.remaining = int(math.Ceil(settleFactor * p.tau * p.sr))
}

// SetImmediate jumps to value with no ramp.
func (p *Param) SetImmediate(value float64) {
	p.current = value
	p.target = value
	p.remaining = 0
}

// Next advances one sample and returns the new value.
func (p *Param) Next() float64 {
	if p.remaining == 0 {
		return p.current
	}
	p.remaining--
	if p.remaining == 0 {
		p.current = p.target
		return p.current
	}
	p.current += (p.target - p.current) * p.coef
	return p.current
}

// Fill writes the next len(dst) values into dst.
func (p *Param) Fill(dst []float64) {
	if p.remaining == 0 {
		for i := range dst {
			dst[i] = p.current
		}
		return
	}
	for i := range dst {
		dst[i] = p.Next()
	}
}

// Value returns the current (possibly mid-ramp) value.
func (p *Param) Value() float64 { return p.current }

// Target returns the value being approached.
func (p *Param) Target() float64 { return p.target }

// Settled reports whether the ramp has finished.
func (p *Param) Settled() bool { return p.remaining == 0 }

// TimeConstant returns the smoothing time constant in seconds.
func (p *Param) TimeConstant() float64 { return p.tau }

func (p *Param) updateCoefficient() {
	if p.tau <= 0 {
		p.coef = 1
		return
	}
	p.coef = 1 - math.Exp(-1/(p.tau*p.sr))
}
