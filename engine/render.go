package engine

import (
	"fmt"

	"github.com/gopxl/beep/v2"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

// State returns the transport state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transport.State()
}

// Load enters Loading: the current source is dropped and all stage memory
// cleared before Load returns.
func (e *Engine) Load() error {
	if e.closed.Load() {
		return ErrTornDown
	}

	e.mu.Lock()
	if _, err := e.transport.Fire(EventLoad); err != nil {
		e.mu.Unlock()
		return err
	}
	e.source = nil
	e.err = nil
	e.mu.Unlock()

	e.clear()
	e.log.Debug("transport", logging.Fields{"state": Loading.String()})
	return nil
}

// ConnectSource attaches src as the playback source. If no load is in
// progress one is started first.
func (e *Engine) ConnectSource(src beep.Streamer) error {
	if src == nil {
		return ErrNoSource
	}
	if e.State() != Loading {
		if err := e.Load(); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return ErrTornDown
	}
	e.source = src
	return nil
}

// Play starts or resumes playback. From Ended a seekable source restarts
// at its beginning.
func (e *Engine) Play() error {
	if e.closed.Load() {
		return ErrTornDown
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source == nil {
		return fmt.Errorf("%w: play in %s", ErrNoSource, e.transport.State())
	}
	prev := e.transport.State()
	if _, err := e.transport.Fire(EventPlay); err != nil {
		return err
	}
	if prev == Ended {
		if s, ok := e.source.(beep.StreamSeeker); ok {
			if err := s.Seek(0); err != nil {
				e.log.Warn("restart source", logging.Fields{"error": err.Error()})
			}
		}
	}
	e.log.Debug("transport", logging.Fields{"state": Playing.String()})
	return nil
}

// Pause holds playback. Stage tails keep rendering.
func (e *Engine) Pause() error {
	if e.closed.Load() {
		return ErrTornDown
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.transport.Fire(EventPause)
	return err
}

// Stop returns to Idle, drops the source and clears every stage so no
// delay feedback survives.
func (e *Engine) Stop() error {
	if e.closed.Load() {
		return ErrTornDown
	}

	e.mu.Lock()
	if _, err := e.transport.Fire(EventStop); err != nil {
		e.mu.Unlock()
		return err
	}
	e.source = nil
	e.mu.Unlock()

	e.clear()
	e.log.Debug("transport", logging.Fields{"state": Idle.String()})
	return nil
}

// TogglePlay pauses a playing engine and plays otherwise.
func (e *Engine) TogglePlay() error {
	if e.State() == Playing {
		return e.Pause()
	}
	return e.Play()
}

// Seek moves the source to seconds, clamped to [0, Duration]. Stage memory
// is cleared as on Load so no tail from the old position bleeds in. A seek
// from Ended leaves the transport Paused.
func (e *Engine) Seek(seconds float64) error {
	if e.closed.Load() {
		return ErrTornDown
	}
	if !core.IsFinite(seconds) {
		return fmt.Errorf("%w: seek to %v", ErrInvalidValue, seconds)
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	s, err := e.seeker()
	if err == nil {
		frame := s.Len()
		if seconds*e.cfg.proc.SampleRate < float64(frame) {
			frame = e.cfg.proc.Frames(seconds)
		}
		if _, err = Next(e.transport.State(), EventSeek); err == nil {
			if err = s.Seek(frame); err == nil {
				_, err = e.transport.Fire(EventSeek)
			}
		}
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.resetStages()
	e.log.Debug("transport", logging.Fields{"seek": seconds})
	return nil
}

// Position returns the playback position of the source in seconds, or 0
// when the source cannot report one.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.seeker()
	if err != nil {
		return 0
	}
	return float64(s.Position()) / e.cfg.proc.SampleRate
}

// Duration returns the length of the source in seconds, or 0 when the
// source has no known length.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.seeker()
	if err != nil {
		return 0
	}
	return float64(s.Len()) / e.cfg.proc.SampleRate
}

// seeker returns the source as a StreamSeeker. Caller holds mu.
func (e *Engine) seeker() (beep.StreamSeeker, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	s, ok := e.source.(beep.StreamSeeker)
	if !ok {
		return nil, ErrNotSeekable
	}
	return s, nil
}

func (e *Engine) clear() {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	e.resetStages()
}

// Stream renders len(samples) frames. It always fills the buffer; silence
// is produced while no source is playing. After Teardown it returns
// (0, false).
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	if e.closed.Load() {
		return 0, false
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	bs := e.cfg.proc.BlockSize
	for done := 0; done < len(samples); done += bs {
		block := samples[done:min(done+bs, len(samples))]
		src := e.beginBlock()
		e.pull(src, block)
		e.process(block)
	}
	return len(samples), true
}

// beginBlock moves pending parameters into the render stages and returns
// the source to pull from, or nil when not playing.
func (e *Engine) beginBlock() beep.Streamer {
	var curve []float64

	e.mu.Lock()
	for i, p := range e.pending {
		if p {
			e.apply[i] = e.values[i]
			e.applyMsk[i] = true
			e.pending[i] = false
		}
	}
	curve, e.pendingCurve = e.pendingCurve, nil
	var src beep.Streamer
	if e.transport.State() == Playing {
		src = e.source
	}
	e.mu.Unlock()

	e.applyParams(curve)
	return src
}

// pull fills block from src and zeroes what the source did not provide.
func (e *Engine) pull(src beep.Streamer, block [][2]float64) {
	n := 0
	if src != nil {
		var ok bool
		n, ok = src.Stream(block)
		if !ok {
			n = 0
			e.sourceEnded(src)
		}
	}
	clear(block[n:])
}

func (e *Engine) sourceEnded(src beep.Streamer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source != src || e.transport.State() != Playing {
		return
	}
	if err := src.Err(); err != nil {
		e.err = err
		e.log.Error(err, "source failed")
	}
	_, _ = e.transport.Fire(EventEnd)
}

// process runs the mono chain over block and writes the result to both
// channels.
func (e *Engine) process(block [][2]float64) {
	mono := e.mono[:len(block)]
	for i, f := range block {
		mono[i] = 0.5 * (f[0] + f[1])
	}

	e.shifter.ProcessInPlace(mono)
	e.shaper.ProcessInPlace(mono)
	e.lowpass.ProcessInPlace(mono)
	e.eq.ProcessInPlace(mono)
	e.delay.ProcessInPlace(mono)
	e.tremolo.ProcessInPlace(mono)
	e.comp.ProcessInPlace(mono)
	for i := range mono {
		mono[i] *= e.master.Next()
	}

	e.analyser.Push(mono)
	for i, x := range mono {
		block[i] = [2]float64{x, x}
	}
}
