package audio

import (
	"context"
	"errors"
	"sync"
)

// ErrCaptureDenied reports that the platform refused microphone access.
var ErrCaptureDenied = errors.New("audio: capture permission denied")

// Capturer records from an input device. Implementations must leave no
// partial state behind when Start fails.
type Capturer interface {
	// Start begins capturing and delivers mono blocks to sink until ctx
	// is cancelled or Stop is called.
	Start(ctx context.Context, sink func(block []float64)) error
	Stop() error
	SampleRate() float64
}

// Record collects everything c delivers until ctx is done. The sink never
// blocks, so c may deliver from inside Start or from its own goroutine.
// Blocks arriving after Stop are dropped. Start failures, such as
// ErrCaptureDenied, are returned with an empty buffer.
func Record(ctx context.Context, c Capturer) (Buffer, error) {
	var (
		mu      sync.Mutex
		samples []float64
		stopped bool
	)
	sink := func(block []float64) {
		mu.Lock()
		defer mu.Unlock()
		if !stopped {
			samples = append(samples, block...)
		}
	}
	if err := c.Start(ctx, sink); err != nil {
		return Buffer{}, err
	}

	<-ctx.Done()
	err := c.Stop()

	mu.Lock()
	defer mu.Unlock()
	stopped = true
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Samples: samples, SampleRate: c.SampleRate()}, nil
}
