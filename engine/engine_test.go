package engine

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gopxl/beep/v2"

	"github.com/ItzJonatan/Set-List-Pro/audio"
	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/effects"
	"github.com/ItzJonatan/Set-List-Pro/internal/testutil"
)

const testRate = 44100.0

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e, err := New(append([]Option{WithSampleRate(testRate)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(e.Teardown)
	return e
}

func render(t *testing.T, e *Engine, frames int) []float64 {
	t.Helper()

	buf := make([][2]float64, frames)
	n, ok := e.Stream(buf)
	if !ok || n != frames {
		t.Fatalf("Stream() = (%d, %v), want (%d, true)", n, ok, frames)
	}
	out := make([]float64, frames)
	for i, f := range buf {
		if f[0] != f[1] {
			t.Fatalf("frame %d: channels differ: %v", i, f)
		}
		out[i] = f[0]
	}
	return out
}

func source(samples []float64) *audio.Streamer {
	return audio.NewStreamer(audio.Buffer{Samples: samples, SampleRate: testRate})
}

func TestNewRejectsUnusableOutput(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero rate", WithSampleRate(0)},
		{"negative rate", WithSampleRate(-44100)},
		{"infinite rate", WithSampleRate(math.Inf(1))},
		{"zero block", WithBlockSize(0)},
		{"bad fft size", WithFFTSize(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.opt)
			if err == nil {
				t.Fatal("expected error")
			}
			if e != nil {
				t.Fatal("engine returned on failure")
			}
		})
	}

	if _, err := New(WithSampleRate(0)); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("error = %v, want ErrNoOutput", err)
	}
	if _, err := New(WithSmoothing(-1)); err == nil {
		t.Fatal("expected error for negative smoothing")
	}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t)

	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
	if e.BlockSize() != 128 {
		t.Fatalf("block size = %d, want 128", e.BlockSize())
	}
	if e.SpectrumBins() != 128 {
		t.Fatalf("bins = %d, want 128", e.SpectrumBins())
	}
	for _, pv := range e.Parameters() {
		if pv.Value != pv.Default {
			t.Errorf("%s = %g, want default %g", pv.Name, pv.Value, pv.Default)
		}
	}
}

func TestSetParameterClamps(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"pitch", 30, 12},
		{"pitch", -30, -12},
		{"masterVolume", -1, 0},
		{"DelayTime", 2.5, 2.5},
		{"delayfeedback", 1, 0.9},
		{"filterFreq", 5, 20},
		{"distortion", 400, 100},
		{"tremoloRate", 6, 6},
	}
	for _, tt := range tests {
		got, err := e.SetParameter(tt.name, tt.value)
		if err != nil {
			t.Fatalf("SetParameter(%q, %g) error = %v", tt.name, tt.value, err)
		}
		if got != tt.want {
			t.Errorf("SetParameter(%q, %g) = %g, want %g", tt.name, tt.value, got, tt.want)
		}
		stored, err := e.Parameter(tt.name)
		if err != nil || stored != tt.want {
			t.Errorf("Parameter(%q) = (%g, %v), want %g", tt.name, stored, err, tt.want)
		}
	}
}

func TestSetParameterRejects(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.SetParameter("reverb", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("unknown name: error = %v", err)
	}
	if _, err := e.Parameter("reverb"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("unknown name read: error = %v", err)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := e.SetParameter("low", v); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("SetParameter(low, %v) error = %v", v, err)
		}
	}
	if _, err := e.Set(paramCount, 0); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Set(paramCount) error = %v", err)
	}
	if v, _ := e.Parameter("low"); v != 0 {
		t.Fatalf("rejected value was stored: %g", v)
	}
}

func TestParameterSmoothingConverges(t *testing.T) {
	const tau = 0.01
	e := newTestEngine(t, WithSmoothing(tau))

	if _, err := e.SetParameter("masterVolume", 0); err != nil {
		t.Fatal(err)
	}
	render(t, e, 1)
	if v := e.master.Value(); v < 0.9 {
		t.Fatalf("master gain jumped to %g after one sample", v)
	}

	render(t, e, int(5*tau*testRate))
	if v := e.master.Value(); v > 0.01 {
		t.Fatalf("master gain = %g after 5 tau, want < 0.01", v)
	}
}

func TestDistortionSwitchesAtBlockBoundary(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.SetParameter("distortion", 50); err != nil {
		t.Fatal(err)
	}
	want := effects.DistortionCurve(50, effects.DistortionCurveSize)
	if got := e.shaper.Curve(); got[0] == want[0] {
		t.Fatal("curve installed before render")
	}

	render(t, e, 1)
	got := e.shaper.Curve()
	for _, i := range []int{0, 1000, len(want) - 1} {
		if got[i] != want[i] {
			t.Fatalf("curve[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestTransport(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Play(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Play() without source: error = %v", err)
	}
	if err := e.Pause(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Pause() in idle: error = %v", err)
	}
	if err := e.ConnectSource(nil); !errors.Is(err, ErrNoSource) {
		t.Fatalf("ConnectSource(nil) error = %v", err)
	}

	src := source(testutil.Sine(440, testRate, 0.5, 1000))
	if err := e.ConnectSource(src); err != nil {
		t.Fatal(err)
	}
	if e.State() != Loading {
		t.Fatalf("state = %v, want loading", e.State())
	}
	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	render(t, e, 256)
	if src.Position() != 0 {
		t.Fatalf("paused source advanced to %d", src.Position())
	}

	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	render(t, e, 2048)
	if e.State() != Ended {
		t.Fatalf("state = %v, want ended", e.State())
	}
	if err := e.Pause(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Pause() when ended: error = %v", err)
	}

	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	if src.Position() != 0 {
		t.Fatalf("restart position = %d, want 0", src.Position())
	}
	render(t, e, 128)
	if src.Position() != 128 {
		t.Fatalf("position = %d, want 128", src.Position())
	}

	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
	if err := e.Play(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Play() after stop: error = %v", err)
	}
}

func TestNextTable(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
		want State
		ok   bool
	}{
		{Idle, EventLoad, Loading, true},
		{Idle, EventPlay, Idle, false},
		{Idle, EventStop, Idle, false},
		{Loading, EventPlay, Playing, true},
		{Loading, EventPause, Loading, false},
		{Loading, EventEnd, Loading, false},
		{Playing, EventPause, Paused, true},
		{Playing, EventEnd, Ended, true},
		{Playing, EventLoad, Loading, true},
		{Playing, EventPlay, Playing, false},
		{Paused, EventPlay, Playing, true},
		{Paused, EventEnd, Paused, false},
		{Ended, EventPlay, Playing, true},
		{Ended, EventStop, Idle, true},
		{Idle, EventSeek, Idle, false},
		{Loading, EventSeek, Loading, true},
		{Playing, EventSeek, Playing, true},
		{Paused, EventSeek, Paused, true},
		{Ended, EventSeek, Paused, true},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.ev)
		if (err == nil) != tt.ok {
			t.Fatalf("Next(%s, %s) error = %v, want ok=%v", tt.from, tt.ev, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Next(%s, %s) error = %v", tt.from, tt.ev, err)
		}
		if got != tt.want {
			t.Fatalf("Next(%s, %s) = %s, want %s", tt.from, tt.ev, got, tt.want)
		}
	}
}

func TestStopClearsFeedbackLoop(t *testing.T) {
	impulse := testutil.Impulse(8192, 0)

	run := func(t *testing.T, halt func(*Engine) error) []float64 {
		e := newTestEngine(t, WithSmoothing(0))
		for name, v := range map[string]float64{"delayTime": 0.01, "delayFeedback": 0.9} {
			if _, err := e.SetParameter(name, v); err != nil {
				t.Fatal(err)
			}
		}
		if err := e.ConnectSource(source(impulse)); err != nil {
			t.Fatal(err)
		}
		if err := e.Play(); err != nil {
			t.Fatal(err)
		}
		render(t, e, 256)
		if err := halt(e); err != nil {
			t.Fatal(err)
		}
		return render(t, e, 4096)
	}

	paused := run(t, (*Engine).Pause)
	if peak := core.Peak(paused); peak == 0 {
		t.Fatal("pause should keep the echo tail")
	}

	stopped := run(t, (*Engine).Stop)
	if peak := core.Peak(stopped); peak != 0 {
		t.Fatalf("echo survived stop: peak %g", peak)
	}
}

func TestSilenceIn(t *testing.T) {
	for _, drive := range []float64{0, 50, 1000} {
		t.Run(fmt.Sprint("distortion=", drive), func(t *testing.T) {
			e := newTestEngine(t)
			if _, err := e.SetParameter("distortion", drive); err != nil {
				t.Fatal(err)
			}
			if _, err := e.SetParameter("delayFeedback", 0.9); err != nil {
				t.Fatal(err)
			}
			if err := e.ConnectSource(source(make([]float64, 4096))); err != nil {
				t.Fatal(err)
			}
			if err := e.Play(); err != nil {
				t.Fatal(err)
			}
			if peak := core.Peak(render(t, e, 8192)); peak != 0 {
				t.Fatalf("silence produced peak %g", peak)
			}
		})
	}
}

func TestToneThroughChain(t *testing.T) {
	e := newTestEngine(t)

	tone := testutil.Sine(1000, testRate, 0.5, 8192)
	if err := e.ConnectSource(source(tone)); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	out := render(t, e, 4096)
	testutil.RequireFinite(t, out)
	if core.Peak(out) == 0 {
		t.Fatal("no output")
	}

	snap := make([]byte, e.SpectrumBins())
	n, ok := e.SpectrumSnapshot(snap)
	if !ok || n != len(snap) {
		t.Fatalf("SpectrumSnapshot() = (%d, %v)", n, ok)
	}
	peak := 0
	for i := range snap {
		if snap[i] > snap[peak] {
			peak = i
		}
	}
	// 1 kHz sits between bins 5 and 6 at 44.1 kHz / 256.
	if peak != 5 && peak != 6 {
		t.Fatalf("peak bin = %d, want 5 or 6", peak)
	}

	db := make([]float64, e.SpectrumBins())
	if n, ok := e.SpectrumSnapshotDB(db); !ok || n != len(db) {
		t.Fatalf("SpectrumSnapshotDB() = (%d, %v)", n, ok)
	}
}

func TestTeardownIsIdempotent(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	e.Teardown()
	e.Teardown()

	if n, ok := e.SpectrumSnapshot(make([]byte, 128)); n != 0 || ok {
		t.Fatalf("SpectrumSnapshot() after teardown = (%d, %v)", n, ok)
	}
	if n, ok := e.Stream(make([][2]float64, 16)); n != 0 || ok {
		t.Fatalf("Stream() after teardown = (%d, %v)", n, ok)
	}
	if _, err := e.SetParameter("low", 3); !errors.Is(err, ErrTornDown) {
		t.Fatalf("SetParameter() after teardown: error = %v", err)
	}
	for name, op := range map[string]func() error{
		"Load":            e.Load,
		"Play":            e.Play,
		"Pause":           e.Pause,
		"Stop":            e.Stop,
		"TogglePlay":      e.TogglePlay,
		"ResetParameters": e.ResetParameters,
		"Seek":            func() error { return e.Seek(0) },
	} {
		if err := op(); !errors.Is(err, ErrTornDown) {
			t.Fatalf("%s() after teardown: error = %v", name, err)
		}
	}
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
}

func TestSnapshotBeforeInit(t *testing.T) {
	var e *Engine
	if n, ok := e.SpectrumSnapshot(make([]byte, 128)); n != 0 || ok {
		t.Fatalf("nil engine snapshot = (%d, %v)", n, ok)
	}
	if n, ok := (&Engine{}).SpectrumSnapshot(make([]byte, 128)); n != 0 || ok {
		t.Fatalf("zero engine snapshot = (%d, %v)", n, ok)
	}
	if n := e.SpectrumBins(); n != 0 {
		t.Fatalf("nil engine bins = %d", n)
	}
	if n := (&Engine{}).SpectrumBins(); n != 0 {
		t.Fatalf("zero engine bins = %d", n)
	}
}

func TestSeek(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Seek(0); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Seek() without source: error = %v", err)
	}
	if e.Position() != 0 || e.Duration() != 0 {
		t.Fatalf("no source: position %v, duration %v", e.Position(), e.Duration())
	}

	src := source(testutil.Sine(440, testRate, 0.5, int(testRate)))
	if err := e.ConnectSource(src); err != nil {
		t.Fatal(err)
	}
	if d := e.Duration(); d != 1 {
		t.Fatalf("Duration() = %v, want 1", d)
	}

	tests := []struct {
		seconds float64
		frame   int
	}{
		{0.5, int(testRate) / 2},
		{-3, 0},
		{7, int(testRate)},
		{0.25, int(testRate) / 4},
	}
	for _, tt := range tests {
		if err := e.Seek(tt.seconds); err != nil {
			t.Fatalf("Seek(%v) error = %v", tt.seconds, err)
		}
		if src.Position() != tt.frame {
			t.Fatalf("Seek(%v): source at %d, want %d", tt.seconds, src.Position(), tt.frame)
		}
		if want := float64(tt.frame) / testRate; e.Position() != want {
			t.Fatalf("Seek(%v): Position() = %v, want %v", tt.seconds, e.Position(), want)
		}
	}
	if e.State() != Loading {
		t.Fatalf("state after seeking a loading source = %v", e.State())
	}

	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	render(t, e, 128)
	if want := int(testRate)/4 + 128; src.Position() != want {
		t.Fatalf("position after render = %d, want %d", src.Position(), want)
	}

	if err := e.Seek(1); err != nil {
		t.Fatal(err)
	}
	render(t, e, 128)
	if e.State() != Ended {
		t.Fatalf("state after seeking to the end = %v, want ended", e.State())
	}
	if err := e.Seek(0.5); err != nil {
		t.Fatal(err)
	}
	if e.State() != Paused {
		t.Fatalf("state after seeking from ended = %v, want paused", e.State())
	}

	if err := e.Seek(math.NaN()); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Seek(NaN) error = %v", err)
	}
}

func TestSeekClearsFeedbackLoop(t *testing.T) {
	e := newTestEngine(t, WithSmoothing(0))
	for name, v := range map[string]float64{"delayTime": 0.01, "delayFeedback": 0.9} {
		if _, err := e.SetParameter(name, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.ConnectSource(source(testutil.Impulse(8192, 0))); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(); err != nil {
		t.Fatal(err)
	}
	render(t, e, 256)
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := e.Seek(0); err != nil {
		t.Fatal(err)
	}
	if peak := core.Peak(render(t, e, 4096)); peak != 0 {
		t.Fatalf("echo survived seek: peak %g", peak)
	}
}

func TestSeekNeedsSeekableSource(t *testing.T) {
	e := newTestEngine(t)
	endless := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		clear(samples)
		return len(samples), true
	})
	if err := e.ConnectSource(endless); err != nil {
		t.Fatal(err)
	}
	if err := e.Seek(1); !errors.Is(err, ErrNotSeekable) {
		t.Fatalf("Seek() error = %v, want ErrNotSeekable", err)
	}
	if e.Position() != 0 || e.Duration() != 0 {
		t.Fatalf("position %v, duration %v, want 0", e.Position(), e.Duration())
	}
}

func TestTogglePlay(t *testing.T) {
	e := newTestEngine(t)
	if err := e.ConnectSource(source(make([]float64, 4096))); err != nil {
		t.Fatal(err)
	}
	for _, want := range []State{Playing, Paused, Playing} {
		if err := e.TogglePlay(); err != nil {
			t.Fatal(err)
		}
		if e.State() != want {
			t.Fatalf("state = %v, want %v", e.State(), want)
		}
	}
}

func TestResetParameters(t *testing.T) {
	e := newTestEngine(t, WithSmoothing(0))
	for name, v := range map[string]float64{"distortion": 60, "low": 9, "pitch": -5, "tremoloRate": 11} {
		if _, err := e.SetParameter(name, v); err != nil {
			t.Fatal(err)
		}
	}
	render(t, e, 128)

	if err := e.ResetParameters(); err != nil {
		t.Fatal(err)
	}
	for _, pv := range e.Parameters() {
		if pv.Value != pv.Default {
			t.Errorf("%s = %v, want default %v", pv.Name, pv.Value, pv.Default)
		}
	}

	render(t, e, 128)
	want := effects.DistortionCurve(0, effects.DistortionCurveSize)
	if got := e.shaper.Curve(); got[0] != want[0] {
		t.Fatalf("curve[0] = %g, want %g", got[0], want[0])
	}
	if got := e.shifter.Semitones(); got != 0 {
		t.Fatalf("pitch stage at %v st, want 0", got)
	}
}
