package effects

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
)

// MaxTremoloRateHz bounds the LFO speed accepted by a Tremolo.
const MaxTremoloRateHz = 100.0

// TremoloOption adjusts a Tremolo at construction.
type TremoloOption func(*tremoloConfig) error

type tremoloConfig struct {
	rateHz, depth, tau float64
}

// WithTremoloRateHz sets the starting LFO speed.
func WithTremoloRateHz(rateHz float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		cfg.rateHz = rateHz
		return checkTremolo(rateHz, cfg.depth)
	}
}

// WithTremoloDepth sets the starting depth in [0, 1].
func WithTremoloDepth(depth float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		cfg.depth = depth
		return checkTremolo(cfg.rateHz, depth)
	}
}

// WithTremoloSmoothing sets the glide time constant shared by rate and
// depth. Zero disables the glide.
func WithTremoloSmoothing(tauSeconds float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		if !core.IsFinite(tauSeconds) || tauSeconds < 0 {
			return fmt.Errorf("tremolo smoothing must be >= 0 and finite: %g", tauSeconds)
		}
		cfg.tau = tauSeconds
		return nil
	}
}

// Tremolo scales each sample by 1 + depth·sin(2π·rate·t). Depth 0 is an
// exact pass-through at any rate.
type Tremolo struct {
	period float64 // seconds per sample
	rate   *smooth.Param
	depth  *smooth.Param
	cycle  float64 // LFO position in [0, 1)
}

// NewTremolo returns a tremolo at 4 Hz with zero depth unless options say
// otherwise.
func NewTremolo(sampleRate float64, opts ...TremoloOption) (*Tremolo, error) {
	if err := validateSampleRate("tremolo", sampleRate); err != nil {
		return nil, err
	}
	cfg := tremoloConfig{rateHz: 4, tau: smooth.DefaultTimeConstant}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	t := &Tremolo{period: 1 / sampleRate}
	var err error
	if t.rate, err = smooth.New(cfg.rateHz, cfg.tau, sampleRate); err != nil {
		return nil, err
	}
	if t.depth, err = smooth.New(cfg.depth, cfg.tau, sampleRate); err != nil {
		return nil, err
	}
	return t, nil
}

// SetRateHz glides the LFO towards rateHz. Zero holds the current phase.
func (t *Tremolo) SetRateHz(rateHz float64) error {
	if err := checkTremolo(rateHz, 0); err != nil {
		return err
	}
	t.rate.SetTarget(rateHz)
	return nil
}

// SetDepth glides the modulation depth towards depth.
func (t *Tremolo) SetDepth(depth float64) error {
	if err := checkTremolo(0, depth); err != nil {
		return err
	}
	t.depth.SetTarget(depth)
	return nil
}

// RateHz is the LFO speed in effect for the next sample.
func (t *Tremolo) RateHz() float64 { return t.rate.Value() }

// Depth is the modulation depth in effect for the next sample.
func (t *Tremolo) Depth() float64 { return t.depth.Value() }

// Reset rewinds the LFO and lands both glides on their targets.
func (t *Tremolo) Reset() {
	t.cycle = 0
	t.rate.SetImmediate(t.rate.Target())
	t.depth.SetImmediate(t.depth.Target())
}

// ProcessSample modulates one sample and advances the LFO.
func (t *Tremolo) ProcessSample(x float64) float64 {
	gain := 1 + t.depth.Next()*math.Sin(2*math.Pi*t.cycle)
	t.cycle += t.rate.Next() * t.period
	t.cycle -= math.Floor(t.cycle)
	return gain * x
}

// ProcessInPlace modulates buf.
func (t *Tremolo) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = t.ProcessSample(x)
	}
}

func checkTremolo(rateHz, depth float64) error {
	switch {
	case !(rateHz >= 0 && rateHz <= MaxTremoloRateHz):
		return fmt.Errorf("tremolo rate must be in [0, %g]: %g", MaxTremoloRateHz, rateHz)
	case !(depth >= 0 && depth <= 1):
		return fmt.Errorf("tremolo depth must be in [0, 1]: %g", depth)
	}
	return nil
}
