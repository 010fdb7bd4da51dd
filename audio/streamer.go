package audio

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep/v2"
)

// Streamer plays a Buffer as a beep.StreamSeeker, duplicating the mono
// channel to both outputs.
type Streamer struct {
	mu  sync.Mutex
	buf Buffer
	pos int
}

var _ beep.StreamSeeker = (*Streamer)(nil)

// NewStreamer returns a streamer positioned at the start of buf.
func NewStreamer(buf Buffer) *Streamer {
	return &Streamer{buf: buf}
}

// Format returns the beep format for the buffer's sample rate.
func (s *Streamer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(int(s.buf.SampleRate)),
		NumChannels: 2,
		Precision:   2,
	}
}

// Stream fills samples from the current position.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.buf.Samples) {
		return 0, false
	}
	n := copyFrames(samples, s.buf.Samples[s.pos:])
	s.pos += n
	return n, true
}

// Err always returns nil.
func (s *Streamer) Err() error { return nil }

// Len returns the length in samples.
func (s *Streamer) Len() int { return len(s.buf.Samples) }

// Position returns the next sample to be streamed.
func (s *Streamer) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Seek moves to sample p.
func (s *Streamer) Seek(p int) error {
	if p < 0 || p > len(s.buf.Samples) {
		return fmt.Errorf("seek position %v out of range [%v, %v]", p, 0, len(s.buf.Samples))
	}
	s.mu.Lock()
	s.pos = p
	s.mu.Unlock()
	return nil
}

func copyFrames(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}
