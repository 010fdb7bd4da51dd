package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/ItzJonatan/Set-List-Pro/analysis/pitch"
	"github.com/ItzJonatan/Set-List-Pro/analysis/tonal"
	"github.com/ItzJonatan/Set-List-Pro/audio"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

var (
	// ErrInvalidOptions reports unusable pass options or sample rate.
	ErrInvalidOptions = errors.New("analysis: invalid options")
	// ErrPanicked wraps a panic recovered inside a pass.
	ErrPanicked = errors.New("analysis: pass panicked")
)

// Options controls a pass.
type Options struct {
	WindowSize      int     // samples per pitch window
	StrideSeconds   float64 // distance between window starts
	MaxSeconds      float64 // analyse only this prefix; 0 means the whole track
	MinFreq         float64 // exclusive lower bound of counted pitches (Hz)
	MaxFreq         float64 // exclusive upper bound of counted pitches (Hz)
	DebounceSeconds float64
	// YieldEvery is the number of windows between scheduler yields,
	// cancellation checks and progress reports.
	YieldEvery int

	// OnProgress receives non-decreasing percentages ending with 100.
	OnProgress func(percent int)
	Logger     logging.Logger
}

// DefaultOptions returns the standard pass settings.
func DefaultOptions() Options {
	return Options{
		WindowSize:      2048,
		StrideSeconds:   0.5,
		MinFreq:         30,
		MaxFreq:         2000,
		DebounceSeconds: tonal.DefaultDebounceSeconds,
		YieldEvery:      10,
	}
}

func (o Options) validate() error {
	switch {
	case o.WindowSize < 2:
		return fmt.Errorf("%w: window size must be >= 2: %d", ErrInvalidOptions, o.WindowSize)
	case !(o.StrideSeconds > 0) || math.IsInf(o.StrideSeconds, 0):
		return fmt.Errorf("%w: stride must be > 0: %f", ErrInvalidOptions, o.StrideSeconds)
	case o.MaxSeconds < 0 || math.IsNaN(o.MaxSeconds):
		return fmt.Errorf("%w: max seconds must be >= 0: %f", ErrInvalidOptions, o.MaxSeconds)
	case !(o.MinFreq < o.MaxFreq):
		return fmt.Errorf("%w: frequency band must satisfy min < max: [%f, %f]",
			ErrInvalidOptions, o.MinFreq, o.MaxFreq)
	case o.YieldEvery < 1:
		return fmt.Errorf("%w: yield interval must be >= 1: %d", ErrInvalidOptions, o.YieldEvery)
	}
	return nil
}

// Result is the outcome of a pass. A failed pass reports Unknown with no
// chords.
type Result struct {
	Key          tonal.Key
	Chords       []tonal.ChordEvent
	Chroma       tonal.Chroma
	Observations []tonal.Observation
	Windows      int // windows examined
}

func unknownResult() Result {
	return Result{Key: tonal.Unknown}
}

// Run analyses buf. On cancellation or failure it returns an Unknown
// result together with the error.
func Run(ctx context.Context, buf audio.Buffer, opts Options) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = unknownResult()
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()

	if err := opts.validate(); err != nil {
		return unknownResult(), err
	}
	sr := buf.SampleRate
	if !(sr > 0) || math.IsInf(sr, 0) {
		return unknownResult(), fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidOptions, sr)
	}

	stride := int(math.Floor(sr * opts.StrideSeconds))
	if stride < 1 {
		return unknownResult(), fmt.Errorf("%w: stride shorter than one sample", ErrInvalidOptions)
	}

	detector, err := pitch.NewDetector(sr)
	if err != nil {
		return unknownResult(), err
	}

	log := logging.OrNoOp(opts.Logger)
	limit := len(buf.Samples)
	if opts.MaxSeconds > 0 {
		limit = min(limit, int(math.Floor(sr*opts.MaxSeconds)))
	}

	progress := newProgress(opts.OnProgress)
	acc := tonal.NewAccumulator(opts.MinFreq, opts.MaxFreq)
	windows := 0
	for start := 0; start < limit; start += stride {
		if windows > 0 && windows%opts.YieldEvery == 0 {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return unknownResult(), err
			}
			progress.report(int(math.Round(float64(start) / float64(limit) * 100)))
		}

		window, ok := buf.Window(start, opts.WindowSize)
		if !ok {
			break
		}
		windows++

		t := float64(start) / sr
		if o, ok := acc.Observe(t, detector.Detect(window)); ok {
			log.Debug("voiced window", logging.Fields{"t": t, "freq": o.Freq, "class": o.Class.Name()})
		}
	}
	if err := ctx.Err(); err != nil {
		return unknownResult(), err
	}

	hist := acc.Chroma()
	key := tonal.EstimateKey(hist)
	chords := tonal.LabelChords(key, acc.Observations(), tonal.WithDebounce(opts.DebounceSeconds))
	progress.report(100)

	log.Info("analysis complete", logging.Fields{
		"key":     key.String(),
		"chords":  len(chords),
		"windows": windows,
	})
	return Result{
		Key:          key,
		Chords:       chords,
		Chroma:       hist,
		Observations: acc.Observations(),
		Windows:      windows,
	}, nil
}

type progress struct {
	fn   func(int)
	last int
}

func newProgress(fn func(int)) *progress {
	return &progress{fn: fn, last: -1}
}

func (p *progress) report(percent int) {
	percent = max(0, min(percent, 100))
	if p.fn == nil || percent <= p.last {
		return
	}
	p.last = percent
	p.fn(percent)
}
