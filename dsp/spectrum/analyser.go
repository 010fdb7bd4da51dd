package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/window"
	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Analyser defaults follow the host analyser node.
const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0

	minFFTSize = 32
	maxFFTSize = 32768
	// reported for bins with zero magnitude
	silenceDB = -1000.0
)

var errAnalyserClosed = errors.New("spectrum: analyser closed")

// Option configures an Analyser.
type Option func(*config) error

type config struct {
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64
}

func defaultConfig() config {
	return config{
		fftSize:   DefaultFFTSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
}

// WithFFTSize sets the transform length, a power of two in [32, 32768].
func WithFFTSize(n int) Option {
	return func(cfg *config) error {
		if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
			return fmt.Errorf("spectrum fft size must be a power of two in [%d, %d]: %d",
				minFFTSize, maxFFTSize, n)
		}
		cfg.fftSize = n
		return nil
	}
}

// WithSmoothing sets the time-smoothing constant in [0, 1]. Zero disables
// averaging between frames.
func WithSmoothing(tau float64) Option {
	return func(cfg *config) error {
		if tau < 0 || tau > 1 || math.IsNaN(tau) {
			return fmt.Errorf("spectrum smoothing must be in [0, 1]: %f", tau)
		}
		cfg.smoothing = tau
		return nil
	}
}

// WithDecibelRange sets the dB range mapped onto bytes 0..255.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(cfg *config) error {
		if !(minDB < maxDB) || math.IsInf(minDB, 0) || math.IsInf(maxDB, 0) {
			return fmt.Errorf("spectrum decibel range must satisfy min < max: [%f, %f]", minDB, maxDB)
		}
		cfg.minDB = minDB
		cfg.maxDB = maxDB
		return nil
	}
}

// Analyser produces magnitude snapshots of the latest fftSize samples.
type Analyser struct {
	sampleRate float64
	cfg        config

	mu     sync.Mutex
	ring   []float64
	write  int
	fresh  bool
	closed bool

	plan     *algofft.Plan[complex128]
	win      []float64
	frame    []float64
	in       []complex128
	out      []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyser returns an analyser for audio at sampleRate.
func NewAnalyser(sampleRate float64, opts ...Option) (*Analyser, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum sample rate must be > 0: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum init fft plan: %w", err)
	}

	win, err := window.New(window.Blackman, cfg.fftSize, true)
	if err != nil {
		return nil, fmt.Errorf("spectrum init window: %w", err)
	}

	n := cfg.fftSize
	bins := n / 2
	return &Analyser{
		sampleRate: sampleRate,
		cfg:        cfg,
		ring:       make([]float64, n),
		plan:       plan,
		win:        win,
		frame:      make([]float64, n),
		in:         make([]complex128, n),
		out:        make([]complex128, n),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		smoothed:   make([]float64, bins),
	}, nil
}

// FFTSize returns the transform length.
func (a *Analyser) FFTSize() int { return a.cfg.fftSize }

// FrequencyBinCount returns the number of reported bins (fftSize/2).
func (a *Analyser) FrequencyBinCount() int { return a.cfg.fftSize / 2 }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyser) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.cfg.fftSize)
}

// Push appends rendered samples. Only the newest fftSize samples are kept.
func (a *Analyser) Push(block []float64) {
	if len(block) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	n := len(a.ring)
	if len(block) > n {
		block = block[len(block)-n:]
	}
	for _, x := range block {
		a.ring[a.write] = x
		a.write++
		if a.write == n {
			a.write = 0
		}
	}
	a.fresh = true
}

// FloatFrequencyData writes per-bin levels in dB into dst and returns the
// number of bins written.
func (a *Analyser) FloatFrequencyData(dst []float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0
	}

	a.update()
	n := min(len(dst), len(a.smoothed))
	for k := 0; k < n; k++ {
		dst[k] = toDB(a.smoothed[k])
	}
	return n
}

// ByteFrequencyData writes per-bin levels scaled from the decibel range to
// 0..255 into dst and returns the number of bins written.
func (a *Analyser) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0
	}

	a.update()
	n := min(len(dst), len(a.smoothed))
	scale := 255 / (a.cfg.maxDB - a.cfg.minDB)
	for k := 0; k < n; k++ {
		v := (toDB(a.smoothed[k]) - a.cfg.minDB) * scale
		switch {
		case v <= 0:
			dst[k] = 0
		case v >= 255:
			dst[k] = 255
		default:
			dst[k] = byte(v)
		}
	}
	return n
}

// Reset clears buffered samples and smoothing history.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.ring)
	clear(a.smoothed)
	a.write = 0
	a.fresh = false
}

// Close releases the analyser; later reads return 0 bins and pushes are
// dropped.
func (a *Analyser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errAnalyserClosed
	}
	a.closed = true
	return nil
}

// update runs one transform if samples arrived since the last one. Caller
// holds a.mu.
func (a *Analyser) update() {
	if !a.fresh {
		return
	}
	a.fresh = false

	n := len(a.ring)
	copy(a.frame, a.ring[a.write:])
	copy(a.frame[n-a.write:], a.ring[:a.write])
	if err := window.Apply(a.frame, a.win); err != nil {
		return
	}
	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)
	vecmath.ScaleBlock(a.mag, a.mag, 1/float64(n))

	tau := a.cfg.smoothing
	for k, m := range a.mag {
		v := tau*a.smoothed[k] + (1-tau)*m
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
	}
}

func toDB(linear float64) float64 {
	if linear <= 0 {
		return silenceDB
	}
	return core.LinearToDB(linear)
}
