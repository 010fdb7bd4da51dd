package effects

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/delay"
	"github.com/ItzJonatan/Set-List-Pro/dsp/interp"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
)

const (
	// PitchWindowSeconds is the sweep range of each modulated delay tap.
	PitchWindowSeconds = 0.05

	maxPitchShiftSemitones = 24.0
	pitchLineSeconds       = 1.0
)

// PitchRatio returns the frequency ratio 2^(semitones/12).
func PitchRatio(semitones float64) float64 {
	return core.SemitonesToRatio(semitones)
}

// PitchModulation returns the sawtooth frequency (Hz) and delay depth
// (seconds) that shift by the given number of semitones. A zero shift
// yields zero depth: the shifter becomes a pass-through.
func PitchModulation(semitones float64) (freqHz, depthSeconds float64) {
	ratio := PitchRatio(semitones)
	freqHz = math.Abs((1 - ratio) / PitchWindowSeconds)
	if semitones == 0 {
		return freqHz, 0
	}
	return freqHz, PitchWindowSeconds * 0.5
}

// PitchShifter changes pitch without changing duration by reading the
// input through two delay lines whose delay times sweep as sawtooth
// waves. Sweeping the delay at a constant slope resamples the signal;
// each sweep wraps once per cycle, so the second tap runs half a cycle
// behind and the two are crossfaded with complementary sin^2 gains that
// vanish at each tap's wrap point.
type PitchShifter struct {
	sampleRate float64
	semitones  float64
	lines      [2]*delay.Line
	freq       *smooth.Param
	depth      *smooth.Param
	phase      float64
	// +1 when the delay shrinks over a cycle (upward shift)
	direction float64
}

// NewPitchShifter returns a shifter at 0 semitones.
func NewPitchShifter(sampleRate float64, opts ...StageOption) (*PitchShifter, error) {
	if err := validateSampleRate("pitch shifter", sampleRate); err != nil {
		return nil, err
	}
	cfg, err := applyStageOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &PitchShifter{sampleRate: sampleRate, direction: 1}
	for i := range p.lines {
		// swept taps read between samples; cubic reads keep the shifted
		// tone free of linear-interpolation droop
		line, err := delay.ForDuration(pitchLineSeconds, sampleRate, delay.WithMode(interp.Hermite))
		if err != nil {
			return nil, err
		}
		p.lines[i] = line
	}
	if p.freq, err = smooth.New(0, cfg.tau, sampleRate); err != nil {
		return nil, err
	}
	if p.depth, err = smooth.New(0, cfg.tau, sampleRate); err != nil {
		return nil, err
	}
	return p, nil
}

// SetSemitones sets the shift amount. Modulator frequency and depth glide
// to their new values.
func (p *PitchShifter) SetSemitones(semitones float64) error {
	if semitones < -maxPitchShiftSemitones || semitones > maxPitchShiftSemitones ||
		math.IsNaN(semitones) {
		return fmt.Errorf("pitch shift must be in [%g, %g] semitones: %f",
			-maxPitchShiftSemitones, maxPitchShiftSemitones, semitones)
	}

	freq, depth := PitchModulation(semitones)
	p.semitones = semitones
	p.freq.SetTarget(freq)
	p.depth.SetTarget(depth)
	if semitones > 0 {
		p.direction = 1
	} else if semitones < 0 {
		p.direction = -1
	}
	return nil
}

// Semitones returns the requested shift.
func (p *PitchShifter) Semitones() float64 { return p.semitones }

// Ratio returns the requested frequency ratio.
func (p *PitchShifter) Ratio() float64 { return PitchRatio(p.semitones) }

// ModulatorFrequency returns the current sawtooth frequency in Hz.
func (p *PitchShifter) ModulatorFrequency() float64 { return p.freq.Value() }

// ModulatorDepth returns the current delay depth in seconds.
func (p *PitchShifter) ModulatorDepth() float64 { return p.depth.Value() }

// ProcessSample processes one sample.
func (p *PitchShifter) ProcessSample(x float64) float64 {
	freq := p.freq.Next()
	depth := p.depth.Next()

	for _, line := range p.lines {
		line.Write(x)
	}

	phase2 := p.phase + 0.5
	if phase2 >= 1 {
		phase2 -= 1
	}

	y := p.tap(0, p.phase, depth) + p.tap(1, phase2, depth)

	p.phase += freq / p.sampleRate
	if p.phase >= 1 {
		p.phase -= math.Floor(p.phase)
	}
	return y
}

// ProcessInPlace processes buf in place.
func (p *PitchShifter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = p.ProcessSample(x)
	}
}

// Reset clears both lines and the modulator phase.
func (p *PitchShifter) Reset() {
	for _, line := range p.lines {
		line.Reset()
	}
	p.phase = 0
	p.freq.SetImmediate(p.freq.Target())
	p.depth.SetImmediate(p.depth.Target())
}

// tap reads one line at depth*(1+saw), where saw sweeps [-1, 1) once per
// cycle.
func (p *PitchShifter) tap(i int, phase, depth float64) float64 {
	saw := 2*phase - 1
	delaySeconds := depth * (1 - p.direction*saw)
	gain := math.Sin(math.Pi * phase)
	return gain * gain * p.lines[i].ReadFractional(delaySeconds*p.sampleRate)
}
