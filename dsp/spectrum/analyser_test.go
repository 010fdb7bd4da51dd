package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/ItzJonatan/Set-List-Pro/dsp/window"
	"github.com/ItzJonatan/Set-List-Pro/internal/testutil"
	"github.com/mjibson/go-dsp/fft"
)

func newTestAnalyser(t *testing.T, sampleRate float64, opts ...Option) *Analyser {
	t.Helper()
	a, err := NewAnalyser(sampleRate, opts...)
	if err != nil {
		t.Fatalf("NewAnalyser() error = %v", err)
	}
	return a
}

func TestAnalyserDefaults(t *testing.T) {
	a := newTestAnalyser(t, 44100)
	if a.FFTSize() != 256 || a.FrequencyBinCount() != 128 {
		t.Fatalf("size = %d/%d, want 256/128", a.FFTSize(), a.FrequencyBinCount())
	}
	if got := a.BinFrequency(1); math.Abs(got-44100.0/256) > 1e-12 {
		t.Fatalf("BinFrequency(1) = %v", got)
	}

	dst := make([]byte, 128)
	if n := a.ByteFrequencyData(dst); n != 128 {
		t.Fatalf("ByteFrequencyData() = %d bins, want 128", n)
	}
	for k, v := range dst {
		if v != 0 {
			t.Fatalf("bin %d = %d before any audio, want 0", k, v)
		}
	}
}

func TestAnalyserBinCentredTone(t *testing.T) {
	// 100 Hz bins; 2 kHz is bin 20
	const sr = 25600.0
	a := newTestAnalyser(t, sr, WithSmoothing(0))
	a.Push(testutil.Sine(2000, sr, 0.01, 256))

	db := make([]float64, a.FrequencyBinCount())
	a.FloatFrequencyData(db)

	// a bin-centred tone reports amplitude * coherent gain / 2
	want := 20 * math.Log10(0.01*0.42/2)
	if math.Abs(db[20]-want) > 1e-6 {
		t.Fatalf("bin 20 = %v dB, want %v", db[20], want)
	}
	for k, v := range db {
		if k >= 18 && k <= 22 {
			continue
		}
		if v > want-100 {
			t.Fatalf("bin %d = %v dB, want far below the tone", k, v)
		}
	}

	bytes := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(bytes)
	if bytes[20] != 169 {
		t.Fatalf("byte bin 20 = %d, want 169", bytes[20])
	}
}

func TestAnalyserMatchesReferenceFFT(t *testing.T) {
	const n = 256
	a := newTestAnalyser(t, 48000, WithSmoothing(0))
	x := testutil.Noise(7, 0.5, n)
	a.Push(x)

	got := make([]float64, n/2)
	a.FloatFrequencyData(got)

	w, _ := window.New(window.Blackman, n, true)
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = x[i] * w[i]
	}
	bins := fft.FFTReal(frame)
	for k := 0; k < n/2; k++ {
		want := 20 * math.Log10(cmplx.Abs(bins[k])/n)
		if math.Abs(got[k]-want) > 1e-6 {
			t.Fatalf("bin %d = %v dB, want %v", k, got[k], want)
		}
	}
}

func TestAnalyserSmoothing(t *testing.T) {
	const sr = 25600.0
	a := newTestAnalyser(t, sr)
	tone := testutil.Sine(2000, sr, 1, 256)
	peak := 0.42 / 2

	db := make([]float64, a.FrequencyBinCount())
	a.Push(tone)
	a.FloatFrequencyData(db)
	first := db[20]
	if want := 20 * math.Log10(0.2*peak); math.Abs(first-want) > 1e-6 {
		t.Fatalf("first frame = %v dB, want %v", first, want)
	}

	// no new samples, no new frame
	a.FloatFrequencyData(db)
	if db[20] != first {
		t.Fatalf("repeated read changed bin 20: %v -> %v", first, db[20])
	}

	a.Push(tone)
	a.FloatFrequencyData(db)
	if want := 20 * math.Log10(0.36*peak); math.Abs(db[20]-want) > 1e-6 {
		t.Fatalf("second frame = %v dB, want %v", db[20], want)
	}
}

func TestAnalyserKeepsNewestSamples(t *testing.T) {
	const sr = 25600.0
	a := newTestAnalyser(t, sr, WithSmoothing(0))
	b := newTestAnalyser(t, sr, WithSmoothing(0))

	long := testutil.Noise(3, 0.5, 1000)
	a.Push(long)
	b.Push(long[:500])
	b.Push(long[500:])

	ga := make([]float64, 128)
	gb := make([]float64, 128)
	a.FloatFrequencyData(ga)
	b.FloatFrequencyData(gb)
	testutil.RequireClose(t, ga, gb, 1e-9)
}

func TestAnalyserResetAndClose(t *testing.T) {
	a := newTestAnalyser(t, 44100)
	a.Push(testutil.Sine(1000, 44100, 0.5, 512))
	a.Reset()

	dst := make([]byte, 128)
	a.ByteFrequencyData(dst)
	for k, v := range dst {
		if v != 0 {
			t.Fatalf("bin %d = %d after Reset, want 0", k, v)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err == nil {
		t.Fatal("expected error on second Close")
	}
	a.Push([]float64{1, 1, 1})
	if n := a.ByteFrequencyData(dst); n != 0 {
		t.Fatalf("ByteFrequencyData() after Close = %d, want 0", n)
	}
}

func TestAnalyserOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		sr   float64
		opt  Option
	}{
		{"zero sample rate", 0, nil},
		{"non power of two", 44100, WithFFTSize(100)},
		{"fft too small", 44100, WithFFTSize(16)},
		{"smoothing above one", 44100, WithSmoothing(1.5)},
		{"inverted range", 44100, WithDecibelRange(-30, -100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyser(tt.sr, tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	a := newTestAnalyser(t, 44100, WithFFTSize(2048))
	if a.FrequencyBinCount() != 1024 {
		t.Fatalf("FrequencyBinCount() = %d, want 1024", a.FrequencyBinCount())
	}
}
