package effects

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/filter/biquad"
	"github.com/ItzJonatan/Set-List-Pro/dsp/filter/design"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
)

const (
	defaultCutoffHz   = 20000.0
	minCutoffHz       = 10.0
	maxCutoffHz       = 22050.0
	maxResonanceDB    = 40.0
	minResonanceDB    = -40.0
	eqLowShelfHz      = 320.0
	eqPeakHz          = 1000.0
	eqPeakQ           = 0.5
	eqHighShelfHz     = 3200.0
	maxEQGainDB       = 40.0
	coefficientStride = 16
)

// StageOption configures the smoothing of a stage's continuous parameters.
type StageOption func(*stageConfig) error

type stageConfig struct {
	tau float64
}

func defaultStageConfig() stageConfig {
	return stageConfig{tau: smooth.DefaultTimeConstant}
}

// WithSmoothing sets the parameter ramp time constant in seconds.
// Zero makes parameter changes immediate.
func WithSmoothing(tauSeconds float64) StageOption {
	return func(cfg *stageConfig) error {
		if tauSeconds < 0 || math.IsNaN(tauSeconds) || math.IsInf(tauSeconds, 0) {
			return fmt.Errorf("smoothing time constant must be >= 0: %f", tauSeconds)
		}
		cfg.tau = tauSeconds
		return nil
	}
}

func applyStageOptions(opts []StageOption) (stageConfig, error) {
	cfg := defaultStageConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func validateSampleRate(stage string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", stage, sampleRate)
	}
	return nil
}

// ResonantFilter is a lowpass with smoothed cutoff (Hz) and resonance (dB).
// Coefficients are recomputed every few samples while either parameter
// is ramping.
type ResonantFilter struct {
	sampleRate float64
	section    *biquad.Section
	cutoff     *smooth.Param
	resonance  *smooth.Param
	countdown  int
}

// NewResonantFilter returns a fully open lowpass (20 kHz, 0 dB resonance).
func NewResonantFilter(sampleRate float64, opts ...StageOption) (*ResonantFilter, error) {
	if err := validateSampleRate("filter", sampleRate); err != nil {
		return nil, err
	}
	cfg, err := applyStageOptions(opts)
	if err != nil {
		return nil, err
	}

	cutoff, err := smooth.New(defaultCutoffHz, cfg.tau, sampleRate)
	if err != nil {
		return nil, err
	}
	resonance, err := smooth.New(0, cfg.tau, sampleRate)
	if err != nil {
		return nil, err
	}

	f := &ResonantFilter{
		sampleRate: sampleRate,
		cutoff:     cutoff,
		resonance:  resonance,
	}
	f.section = biquad.NewSection(f.design())
	return f, nil
}

// SetCutoff sets the cutoff frequency target in Hz.
func (f *ResonantFilter) SetCutoff(hz float64) error {
	if hz < minCutoffHz || hz > maxCutoffHz || math.IsNaN(hz) {
		return fmt.Errorf("filter cutoff must be in [%g, %g]: %f", minCutoffHz, maxCutoffHz, hz)
	}
	f.cutoff.SetTarget(hz)
	f.retune()
	return nil
}

// SetResonance sets the resonance target in dB.
func (f *ResonantFilter) SetResonance(db float64) error {
	if db < minResonanceDB || db > maxResonanceDB || math.IsNaN(db) {
		return fmt.Errorf("filter resonance must be in [%g, %g]: %f", minResonanceDB, maxResonanceDB, db)
	}
	f.resonance.SetTarget(db)
	f.retune()
	return nil
}

// Cutoff returns the current (possibly ramping) cutoff in Hz.
func (f *ResonantFilter) Cutoff() float64 { return f.cutoff.Value() }

// Resonance returns the current (possibly ramping) resonance in dB.
func (f *ResonantFilter) Resonance() float64 { return f.resonance.Value() }

// Coefficients returns the active biquad coefficients.
func (f *ResonantFilter) Coefficients() biquad.Coefficients { return f.section.Coefficients }

// ProcessSample filters one sample.
func (f *ResonantFilter) ProcessSample(x float64) float64 {
	if !f.cutoff.Settled() || !f.resonance.Settled() {
		f.cutoff.Next()
		f.resonance.Next()
		if f.countdown <= 0 || (f.cutoff.Settled() && f.resonance.Settled()) {
			f.section.SetCoefficients(f.design())
			f.countdown = coefficientStride
		}
		f.countdown--
	}
	return f.section.ProcessSample(x)
}

// ProcessInPlace filters buf in place.
func (f *ResonantFilter) ProcessInPlace(buf []float64) {
	if f.cutoff.Settled() && f.resonance.Settled() {
		f.section.ProcessBlock(buf)
		return
	}
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears the filter memory and snaps parameters to their targets.
func (f *ResonantFilter) Reset() {
	f.cutoff.SetImmediate(f.cutoff.Target())
	f.resonance.SetImmediate(f.resonance.Target())
	f.section.SetCoefficients(f.design())
	f.section.Reset()
	f.countdown = 0
}

// retune restarts coefficient updates, or applies them at once when
// smoothing is disabled.
func (f *ResonantFilter) retune() {
	f.countdown = 0
	if f.cutoff.Settled() && f.resonance.Settled() {
		f.section.SetCoefficients(f.design())
	}
}

func (f *ResonantFilter) design() biquad.Coefficients {
	return design.ResonantLowpass(f.cutoff.Value(), f.resonance.Value(), f.sampleRate)
}

// Band identifies one of the three equalizer bands.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// Equalizer is the fixed three-band tone stack: low shelf at 320 Hz,
// peak at 1 kHz (Q 0.5) and high shelf at 3.2 kHz. Band gains are in dB.
type Equalizer struct {
	sampleRate float64
	sections   [3]*biquad.Section
	gains      [3]*smooth.Param
	countdown  [3]int
}

// NewEqualizer returns a flat equalizer.
func NewEqualizer(sampleRate float64, opts ...StageOption) (*Equalizer, error) {
	if err := validateSampleRate("equalizer", sampleRate); err != nil {
		return nil, err
	}
	cfg, err := applyStageOptions(opts)
	if err != nil {
		return nil, err
	}

	eq := &Equalizer{sampleRate: sampleRate}
	for b := range eq.gains {
		p, err := smooth.New(0, cfg.tau, sampleRate)
		if err != nil {
			return nil, err
		}
		eq.gains[b] = p
		eq.sections[b] = biquad.NewSection(eq.design(Band(b)))
	}
	return eq, nil
}

// SetGain sets a band's gain target in dB.
func (eq *Equalizer) SetGain(band Band, db float64) error {
	if band < BandLow || band > BandHigh {
		return fmt.Errorf("equalizer band out of range: %d", band)
	}
	if db < -maxEQGainDB || db > maxEQGainDB || math.IsNaN(db) {
		return fmt.Errorf("equalizer gain must be in [%g, %g]: %f", -maxEQGainDB, maxEQGainDB, db)
	}
	eq.gains[band].SetTarget(db)
	eq.countdown[band] = 0
	if eq.gains[band].Settled() {
		eq.sections[band].SetCoefficients(eq.design(band))
	}
	return nil
}

// Gain returns a band's current gain in dB.
func (eq *Equalizer) Gain(band Band) float64 {
	if band < BandLow || band > BandHigh {
		return 0
	}
	return eq.gains[band].Value()
}

// MagnitudeDB returns the combined response of the three bands at freq.
func (eq *Equalizer) MagnitudeDB(freq float64) float64 {
	total := 0.0
	for _, s := range eq.sections {
		total += s.Coefficients.MagnitudeDB(freq, eq.sampleRate)
	}
	return total
}

// ProcessSample runs one sample through the three bands.
func (eq *Equalizer) ProcessSample(x float64) float64 {
	for b, s := range eq.sections {
		g := eq.gains[b]
		if !g.Settled() {
			g.Next()
			if eq.countdown[b] <= 0 || g.Settled() {
				s.SetCoefficients(eq.design(Band(b)))
				eq.countdown[b] = coefficientStride
			}
			eq.countdown[b]--
		}
		x = s.ProcessSample(x)
	}
	return x
}

// ProcessInPlace runs buf through the three bands.
func (eq *Equalizer) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = eq.ProcessSample(x)
	}
}

// Reset clears filter memory and snaps gains to their targets.
func (eq *Equalizer) Reset() {
	for b, s := range eq.sections {
		eq.gains[b].SetImmediate(eq.gains[b].Target())
		s.SetCoefficients(eq.design(Band(b)))
		s.Reset()
		eq.countdown[b] = 0
	}
}

func (eq *Equalizer) design(b Band) biquad.Coefficients {
	g := eq.gains[b].Value()
	var c biquad.Coefficients
	switch b {
	case BandLow:
		c = design.LowShelf(eqLowShelfHz, g, design.ShelfQ, eq.sampleRate)
	case BandMid:
		c = design.Peak(eqPeakHz, g, eqPeakQ, eq.sampleRate)
	default:
		c = design.HighShelf(eqHighShelfHz, g, design.ShelfQ, eq.sampleRate)
	}
	// Band centre above Nyquist at very low sample rates.
	if c == (biquad.Coefficients{}) {
		return biquad.Identity()
	}
	return c
}
