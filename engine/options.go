package engine

import (
	"fmt"
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
	"github.com/ItzJonatan/Set-List-Pro/dsp/spectrum"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

type config struct {
	proc      core.ProcessorConfig
	smoothing float64
	fftSize   int
	log       logging.Logger
}

func defaultConfig() config {
	return config{
		proc:      core.DefaultProcessorConfig(),
		smoothing: smooth.DefaultTimeConstant,
		fftSize:   spectrum.DefaultFFTSize,
		log:       logging.NoOpLogger{},
	}
}

func validate(proc core.ProcessorConfig) error {
	if err := proc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrNoOutput, err)
	}
	return nil
}

// Option configures an Engine.
type Option func(*config) error

// WithSampleRate sets the output sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) error {
		cfg.proc.SampleRate = sampleRate
		return validate(cfg.proc)
	}
}

// WithBlockSize sets the render quantum in frames. Parameter changes are
// picked up at block boundaries.
func WithBlockSize(frames int) Option {
	return func(cfg *config) error {
		cfg.proc.BlockSize = frames
		return validate(cfg.proc)
	}
}

// WithSmoothing sets the glide time constant of continuous parameters in
// seconds. Zero makes every change immediate.
func WithSmoothing(tauSeconds float64) Option {
	return func(cfg *config) error {
		if tauSeconds < 0 || math.IsNaN(tauSeconds) || math.IsInf(tauSeconds, 0) {
			return fmt.Errorf("smoothing time constant must be >= 0: %f", tauSeconds)
		}
		cfg.smoothing = tauSeconds
		return nil
	}
}

// WithFFTSize sets the spectrum analyser transform length.
func WithFFTSize(n int) Option {
	return func(cfg *config) error {
		cfg.fftSize = n
		return nil
	}
}

// WithLogger sets the logger for transport and source events.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.log = logging.OrNoOp(l)
		return nil
	}
}
