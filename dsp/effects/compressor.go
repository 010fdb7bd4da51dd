package effects

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
)

// Defaults match the host graph's dynamics compressor.
const (
	DefaultCompressorThresholdDB = -24.0
	DefaultCompressorKneeDB      = 30.0
	DefaultCompressorRatio       = 12.0
	DefaultCompressorAttack      = 0.003
	DefaultCompressorRelease     = 0.25

	minCompressorThresholdDB = -100.0
	maxCompressorKneeDB      = 40.0
	minCompressorRatio       = 1.0
	maxCompressorRatio       = 20.0
	maxCompressorAttack      = 1.0
	maxCompressorRelease     = 1.0
	// releases shorter than this would make the detector follow the waveform
	minCompressorTimeSeconds = 0.001
	makeupExponent           = 0.6

	log2Of10Div20 = 0.166096404744
)

// CompressorMetrics reports level statistics since the last reset.
type CompressorMetrics struct {
	InputPeak     float64
	OutputPeak    float64
	GainReduction float64 // minimum applied gain (linear)
}

// Compressor is a feed-forward peak compressor with a soft knee evaluated
// in the log2 domain. Makeup gain is derived from the static curve so a
// full-scale signal keeps roughly its loudness.
type Compressor struct {
	sampleRate  float64
	thresholdDB float64
	kneeDB      float64
	ratio       float64
	attack      float64
	release     *smooth.Param

	peakLevel      float64
	attackCoeff    float64
	releaseCoeff   float64
	countdown      int
	thresholdLog2  float64
	kneeWidthLog2  float64
	invKneeLog2    float64
	makeupGainLin  float64
	reductionGain  float64
	metrics        CompressorMetrics
	releaseRamping bool
}

// NewCompressor returns a compressor with host defaults.
func NewCompressor(sampleRate float64, opts ...StageOption) (*Compressor, error) {
	if err := validateSampleRate("compressor", sampleRate); err != nil {
		return nil, err
	}
	cfg, err := applyStageOptions(opts)
	if err != nil {
		return nil, err
	}

	release, err := smooth.New(DefaultCompressorRelease, cfg.tau, sampleRate)
	if err != nil {
		return nil, err
	}

	c := &Compressor{
		sampleRate:    sampleRate,
		thresholdDB:   DefaultCompressorThresholdDB,
		kneeDB:        DefaultCompressorKneeDB,
		ratio:         DefaultCompressorRatio,
		attack:        DefaultCompressorAttack,
		release:       release,
		reductionGain: 1,
	}
	c.updateCurve()
	c.updateTimeConstants()
	c.ResetMetrics()
	return c, nil
}

// SetThreshold sets the threshold in dBFS.
func (c *Compressor) SetThreshold(dB float64) error {
	if dB < minCompressorThresholdDB || dB > 0 || math.IsNaN(dB) {
		return fmt.Errorf("compressor threshold must be in [%g, 0]: %f", minCompressorThresholdDB, dB)
	}
	c.thresholdDB = dB
	c.updateCurve()
	return nil
}

// SetKnee sets the soft-knee width in dB.
func (c *Compressor) SetKnee(dB float64) error {
	if dB < 0 || dB > maxCompressorKneeDB || math.IsNaN(dB) {
		return fmt.Errorf("compressor knee must be in [0, %g]: %f", maxCompressorKneeDB, dB)
	}
	c.kneeDB = dB
	c.updateCurve()
	return nil
}

// SetRatio sets the compression ratio.
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompressorRatio || ratio > maxCompressorRatio || math.IsNaN(ratio) {
		return fmt.Errorf("compressor ratio must be in [%g, %g]: %f",
			minCompressorRatio, maxCompressorRatio, ratio)
	}
	c.ratio = ratio
	c.updateCurve()
	return nil
}

// SetAttack sets the attack time in seconds.
func (c *Compressor) SetAttack(seconds float64) error {
	if seconds < 0 || seconds > maxCompressorAttack || math.IsNaN(seconds) {
		return fmt.Errorf("compressor attack must be in [0, %g]: %f", maxCompressorAttack, seconds)
	}
	c.attack = seconds
	c.updateTimeConstants()
	return nil
}

// SetRelease sets the release time target in seconds. The release glides
// like any other continuous parameter.
func (c *Compressor) SetRelease(seconds float64) error {
	if seconds < 0 || seconds > maxCompressorRelease || math.IsNaN(seconds) {
		return fmt.Errorf("compressor release must be in [0, %g]: %f", maxCompressorRelease, seconds)
	}
	c.release.SetTarget(seconds)
	c.releaseRamping = !c.release.Settled()
	c.countdown = 0
	c.updateTimeConstants()
	return nil
}

// Threshold returns the threshold in dBFS.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Attack returns the attack time in seconds.
func (c *Compressor) Attack() float64 { return c.attack }

// Release returns the current release time in seconds.
func (c *Compressor) Release() float64 { return c.release.Value() }

// MakeupGain returns the linear makeup gain.
func (c *Compressor) MakeupGain() float64 { return c.makeupGainLin }

// Reduction returns the gain reduction applied to the last sample in dB
// (zero or negative).
func (c *Compressor) Reduction() float64 {
	return core.LinearToDB(c.reductionGain)
}

// ProcessSample compresses one sample.
func (c *Compressor) ProcessSample(input float64) float64 {
	if c.releaseRamping {
		c.release.Next()
		c.countdown--
		if c.countdown <= 0 || c.release.Settled() {
			c.updateTimeConstants()
			c.countdown = coefficientStride
		}
		c.releaseRamping = !c.release.Settled()
	}

	level := math.Abs(input)
	if level > c.peakLevel {
		c.peakLevel += (level - c.peakLevel) * c.attackCoeff
	} else {
		c.peakLevel = level + (c.peakLevel-level)*c.releaseCoeff
	}

	c.reductionGain = c.staticGain(c.peakLevel)
	out := input * c.reductionGain * c.makeupGainLin
	c.updateMetrics(level, math.Abs(out), c.reductionGain)
	return out
}

// ProcessInPlace compresses buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// OutputLevel returns the steady-state output for a constant input level.
func (c *Compressor) OutputLevel(inputLevel float64) float64 {
	inputLevel = math.Abs(inputLevel)
	return inputLevel * c.staticGain(inputLevel) * c.makeupGainLin
}

// Reset clears the envelope detector.
func (c *Compressor) Reset() {
	c.peakLevel = 0
	c.reductionGain = 1
	c.release.SetImmediate(c.release.Target())
	c.releaseRamping = false
	c.updateTimeConstants()
}

// Metrics returns level statistics since the last ResetMetrics.
func (c *Compressor) Metrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears level statistics.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{GainReduction: 1}
}

func (c *Compressor) updateCurve() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20
	if c.kneeDB > 0 {
		c.invKneeLog2 = 1 / c.kneeWidthLog2
	} else {
		c.invKneeLog2 = 0
	}

	fullRangeGain := c.staticGain(1)
	c.makeupGainLin = math.Pow(1/fullRangeGain, makeupExponent)
}

func (c *Compressor) updateTimeConstants() {
	attack := math.Max(c.attack, minCompressorTimeSeconds)
	release := math.Max(c.release.Value(), minCompressorTimeSeconds)
	c.attackCoeff = 1 - math.Exp(-math.Ln2/(attack*c.sampleRate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (release * c.sampleRate))
}

func (c *Compressor) staticGain(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := math.Log2(level) - c.thresholdLog2
	if c.kneeDB <= 0 {
		if overshoot <= 0 {
			return 1
		}
		return math.Exp2(-overshoot * (1 - 1/c.ratio))
	}

	halfWidth := c.kneeWidthLog2 * 0.5
	var effective float64
	switch {
	case overshoot < -halfWidth:
		return 1
	case overshoot > halfWidth:
		effective = overshoot
	default:
		scratch := overshoot + halfWidth
		effective = scratch * scratch * 0.5 * c.invKneeLog2
	}
	return math.Exp2(-effective * (1 - 1/c.ratio))
}

func (c *Compressor) updateMetrics(inputLevel, outputLevel, gain float64) {
	if inputLevel > c.metrics.InputPeak {
		c.metrics.InputPeak = inputLevel
	}
	if outputLevel > c.metrics.OutputPeak {
		c.metrics.OutputPeak = outputLevel
	}
	if gain < c.metrics.GainReduction {
		c.metrics.GainReduction = gain
	}
}
