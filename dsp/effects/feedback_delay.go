package effects

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/delay"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
)

const (
	// MaxDelaySeconds bounds the delay line.
	MaxDelaySeconds = 5.0

	maxDelayFeedback = 0.99
	// DefaultLoopQuantum is the shortest recirculation delay in samples.
	// A cycle in the graph can never be shorter than one render quantum.
	DefaultLoopQuantum = 128
)

// FeedbackDelayOption mutates delay construction parameters.
type FeedbackDelayOption func(*feedbackDelayConfig) error

type feedbackDelayConfig struct {
	stage       stageConfig
	loopQuantum int
}

// WithDelaySmoothing sets the parameter ramp time constant in seconds.
func WithDelaySmoothing(tauSeconds float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		return WithSmoothing(tauSeconds)(&cfg.stage)
	}
}

// WithLoopQuantum sets the minimum loop delay in samples.
func WithLoopQuantum(samples int) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if samples < 1 {
			return fmt.Errorf("delay loop quantum must be >= 1: %d", samples)
		}
		cfg.loopQuantum = samples
		return nil
	}
}

// FeedbackDelay is a delay whose output is fed back into its own input.
//
//	line <- in + feedback*wet
//	out   = in + wet
//
// The dry signal always passes; the wet tap is summed on top, as two
// graph branches merging into one input.
type FeedbackDelay struct {
	sampleRate float64
	line       *delay.Line
	time       *smooth.Param
	feedback   *smooth.Param
	minDelay   float64
}

// NewFeedbackDelay returns a delay holding up to MaxDelaySeconds.
func NewFeedbackDelay(sampleRate float64, opts ...FeedbackDelayOption) (*FeedbackDelay, error) {
	if err := validateSampleRate("delay", sampleRate); err != nil {
		return nil, err
	}

	cfg := feedbackDelayConfig{stage: defaultStageConfig(), loopQuantum: DefaultLoopQuantum}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	line, err := delay.ForDuration(MaxDelaySeconds, sampleRate)
	if err != nil {
		return nil, err
	}
	timeParam, err := smooth.New(0, cfg.stage.tau, sampleRate)
	if err != nil {
		return nil, err
	}
	feedback, err := smooth.New(0, cfg.stage.tau, sampleRate)
	if err != nil {
		return nil, err
	}

	return &FeedbackDelay{
		sampleRate: sampleRate,
		line:       line,
		time:       timeParam,
		feedback:   feedback,
		minDelay:   float64(cfg.loopQuantum),
	}, nil
}

// SetTime sets the delay time target in seconds.
func (d *FeedbackDelay) SetTime(seconds float64) error {
	if seconds < 0 || seconds > MaxDelaySeconds || math.IsNaN(seconds) {
		return fmt.Errorf("delay time must be in [0, %g]: %f", MaxDelaySeconds, seconds)
	}
	d.time.SetTarget(seconds)
	return nil
}

// SetFeedback sets the loop gain target.
func (d *FeedbackDelay) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > maxDelayFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("delay feedback must be in [0, %g]: %f", maxDelayFeedback, feedback)
	}
	d.feedback.SetTarget(feedback)
	return nil
}

// Time returns the current delay time in seconds.
func (d *FeedbackDelay) Time() float64 { return d.time.Value() }

// Feedback returns the current loop gain.
func (d *FeedbackDelay) Feedback() float64 { return d.feedback.Value() }

// EffectiveDelaySamples returns the delay actually applied, after the loop
// minimum.
func (d *FeedbackDelay) EffectiveDelaySamples() float64 {
	return math.Max(d.time.Value()*d.sampleRate, d.minDelay)
}

// ProcessSample processes one sample.
func (d *FeedbackDelay) ProcessSample(in float64) float64 {
	d.time.Next()
	fb := d.feedback.Next()

	// Read before write: Read(k) is k+1 samples old at this point.
	wet := d.line.ReadFractional(d.EffectiveDelaySamples() - 1)
	d.line.Write(core.FlushDenormals(in + fb*wet))

	return in + wet
}

// ProcessInPlace processes buf in place.
func (d *FeedbackDelay) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// Reset empties the loop immediately, so nothing keeps recirculating after
// playback stops.
func (d *FeedbackDelay) Reset() {
	d.line.Reset()
	d.time.SetImmediate(d.time.Target())
	d.feedback.SetImmediate(d.feedback.Target())
}
