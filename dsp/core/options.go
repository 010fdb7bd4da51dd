package core

import (
	"errors"
	"fmt"
)

// ErrProcessorConfig reports a render geometry no stage can run at.
var ErrProcessorConfig = errors.New("core: invalid processor config")

// ProcessorConfig is the render geometry shared by every stage of a graph.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the render quantum: the number of frames processed
	// between parameter updates.
	BlockSize int
}

// DefaultProcessorConfig is 44.1 kHz with a 128-frame quantum.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{SampleRate: 44100, BlockSize: 128}
}

// Validate rejects non-finite or non-positive rates and empty blocks.
func (c ProcessorConfig) Validate() error {
	switch {
	case !IsFinite(c.SampleRate) || c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %g", ErrProcessorConfig, c.SampleRate)
	case c.BlockSize < 1:
		return fmt.Errorf("%w: block size %d", ErrProcessorConfig, c.BlockSize)
	}
	return nil
}

// Frames converts seconds to a whole frame count, rounding down.
func (c ProcessorConfig) Frames(seconds float64) int {
	if !(seconds > 0) || !IsFinite(seconds) {
		return 0
	}
	return int(seconds * c.SampleRate)
}

// BlockSeconds is the wall-clock length of one quantum.
func (c ProcessorConfig) BlockSeconds() float64 {
	return float64(c.BlockSize) / c.SampleRate
}
