package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/ItzJonatan/Set-List-Pro/dsp/effects"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
	"github.com/ItzJonatan/Set-List-Pro/dsp/spectrum"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

// Engine owns the stage chain, the parameter table and the transport.
//
// Control methods may be called from any goroutine. Stream is the render
// callback and runs on the host's audio goroutine.
type Engine struct {
	cfg config
	log logging.Logger

	// control side, guarded by mu
	mu           sync.Mutex
	values       [paramCount]float64
	pending      [paramCount]bool
	pendingCurve []float64
	transport    Transport
	source       beep.Streamer
	err          error

	closed atomic.Bool

	// render side, guarded by renderMu
	renderMu sync.Mutex
	shifter  *effects.PitchShifter
	shaper   *effects.Waveshaper
	lowpass  *effects.ResonantFilter
	eq       *effects.Equalizer
	delay    *effects.FeedbackDelay
	tremolo  *effects.Tremolo
	comp     *effects.Compressor
	master   *smooth.Param
	analyser *spectrum.Analyser
	apply    [paramCount]float64
	applyMsk [paramCount]bool
	mono     []float64
}

var _ beep.Streamer = (*Engine)(nil)

// New builds an engine with every parameter at its default. On failure no
// engine is returned.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Engine{cfg: cfg, log: cfg.log}
	if err := e.buildStages(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoOutput, err)
	}

	for _, d := range descriptors {
		e.values[d.Param] = d.Default
		e.apply[d.Param] = d.Default
		e.applyMsk[d.Param] = true
	}
	e.applyParams(effects.DistortionCurve(0, effects.DistortionCurveSize))
	e.resetStages()
	return e, nil
}

func (e *Engine) buildStages() error {
	sr := e.cfg.proc.SampleRate
	stage := effects.WithSmoothing(e.cfg.smoothing)

	var err error
	if e.shifter, err = effects.NewPitchShifter(sr, stage); err != nil {
		return err
	}
	if e.shaper, err = effects.NewWaveshaper(0); err != nil {
		return err
	}
	if e.lowpass, err = effects.NewResonantFilter(sr, stage); err != nil {
		return err
	}
	if e.eq, err = effects.NewEqualizer(sr, stage); err != nil {
		return err
	}
	if e.delay, err = effects.NewFeedbackDelay(sr, effects.WithDelaySmoothing(e.cfg.smoothing)); err != nil {
		return err
	}
	if e.tremolo, err = effects.NewTremolo(sr, effects.WithTremoloSmoothing(e.cfg.smoothing)); err != nil {
		return err
	}
	if e.comp, err = effects.NewCompressor(sr, stage); err != nil {
		return err
	}
	if e.master, err = smooth.New(1, e.cfg.smoothing, sr); err != nil {
		return err
	}
	if e.analyser, err = spectrum.NewAnalyser(sr, spectrum.WithFFTSize(e.cfg.fftSize)); err != nil {
		return err
	}
	e.mono = make([]float64, e.cfg.proc.BlockSize)
	return nil
}

// SampleRate returns the output sample rate.
func (e *Engine) SampleRate() float64 { return e.cfg.proc.SampleRate }

// BlockSize returns the render quantum in frames.
func (e *Engine) BlockSize() int { return e.cfg.proc.BlockSize }

// Frames converts seconds to whole output frames.
func (e *Engine) Frames(seconds float64) int { return e.cfg.proc.Frames(seconds) }

// SetParameter sets a parameter by name. Out-of-range values are clamped;
// the applied value is returned.
func (e *Engine) SetParameter(name string, value float64) (float64, error) {
	p, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return e.Set(p, value)
}

// Set sets parameter p and returns the clamped value.
func (e *Engine) Set(p Param, value float64) (float64, error) {
	d, ok := p.Descriptor()
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownParameter, p)
	}
	v, err := d.Clamp(value)
	if err != nil {
		return 0, err
	}
	if e.closed.Load() {
		return 0, ErrTornDown
	}

	// curves are large; build them off the render goroutine
	var curve []float64
	if p == Distortion {
		curve = effects.DistortionCurve(v, effects.DistortionCurveSize)
	}

	e.mu.Lock()
	e.values[p] = v
	e.pending[p] = true
	if curve != nil {
		e.pendingCurve = curve
	}
	e.mu.Unlock()
	return v, nil
}

// ResetParameters returns every parameter to its default. Like Set, the
// new values reach the stages at the next block boundary and continuous
// parameters glide there.
func (e *Engine) ResetParameters() error {
	if e.closed.Load() {
		return ErrTornDown
	}
	curve := effects.DistortionCurve(descriptors[Distortion].Default, effects.DistortionCurveSize)

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, d := range descriptors {
		e.values[i] = d.Default
		e.pending[i] = true
	}
	e.pendingCurve = curve
	return nil
}

// Parameter returns the current target of a parameter.
func (e *Engine) Parameter(name string) (float64, error) {
	p, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[p], nil
}

// Parameters returns every parameter with its current target.
func (e *Engine) Parameters() []ParamValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ParamValue, paramCount)
	for i, d := range descriptors {
		out[i] = ParamValue{Descriptor: d, Value: e.values[i]}
	}
	return out
}

// SpectrumSnapshot fills dst with byte-scaled magnitudes of the latest
// output. It returns (0, false) once the engine is torn down.
func (e *Engine) SpectrumSnapshot(dst []byte) (int, bool) {
	if e == nil || e.analyser == nil || e.closed.Load() {
		return 0, false
	}
	n := e.analyser.ByteFrequencyData(dst)
	return n, n > 0
}

// SpectrumSnapshotDB fills dst with per-bin levels in dB.
func (e *Engine) SpectrumSnapshotDB(dst []float64) (int, bool) {
	if e == nil || e.analyser == nil || e.closed.Load() {
		return 0, false
	}
	n := e.analyser.FloatFrequencyData(dst)
	return n, n > 0
}

// SpectrumBins returns the number of bins in a snapshot.
func (e *Engine) SpectrumBins() int {
	if e == nil || e.analyser == nil {
		return 0
	}
	return e.analyser.FrequencyBinCount()
}

// Teardown stops playback, clears every stage and releases the analyser.
// It is safe to call more than once.
func (e *Engine) Teardown() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	e.transport = Transport{}
	e.source = nil
	e.mu.Unlock()

	e.renderMu.Lock()
	e.resetStages()
	e.renderMu.Unlock()

	_ = e.analyser.Close()
	e.log.Debug("engine torn down")
}

// Err returns the error of the last source that failed, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// applyParams pushes the staged values in e.apply to the stages. Caller
// holds renderMu (or owns the engine during construction).
func (e *Engine) applyParams(curve []float64) {
	for i := range e.applyMsk {
		if !e.applyMsk[i] {
			continue
		}
		e.applyMsk[i] = false
		if err := e.applyParam(Param(i), e.apply[i], curve); err != nil {
			e.log.Error(err, "apply parameter", logging.Fields{"param": Param(i).String()})
		}
	}
}

func (e *Engine) applyParam(p Param, v float64, curve []float64) error {
	switch p {
	case MasterVolume:
		e.master.SetTarget(v)
	case Low:
		return e.eq.SetGain(effects.BandLow, v)
	case Mid:
		return e.eq.SetGain(effects.BandMid, v)
	case High:
		return e.eq.SetGain(effects.BandHigh, v)
	case Distortion:
		if curve != nil {
			e.shaper.SetCurve(curve)
		}
	case DelayTime:
		return e.delay.SetTime(v)
	case DelayFeedback:
		return e.delay.SetFeedback(v)
	case FilterFreq:
		return e.lowpass.SetCutoff(v)
	case Resonance:
		return e.lowpass.SetResonance(v)
	case Release:
		return e.comp.SetRelease(v)
	case Pitch:
		return e.shifter.SetSemitones(v)
	case TremoloDepth:
		return e.tremolo.SetDepth(v)
	case TremoloRate:
		return e.tremolo.SetRateHz(v)
	}
	return nil
}

// resetStages clears all stage memory and snaps parameters to their
// targets. Caller holds renderMu.
func (e *Engine) resetStages() {
	e.shifter.Reset()
	e.lowpass.Reset()
	e.eq.Reset()
	e.delay.Reset()
	e.tremolo.Reset()
	e.comp.Reset()
	e.master.SetImmediate(e.master.Target())
	e.analyser.Reset()
}
