package audio

import "time"

// Buffer is mono PCM in [-1, 1]. A Buffer is treated as immutable once
// produced; Window returns views into Samples.
type Buffer struct {
	Samples    []float64
	SampleRate float64
}

// Len returns the number of samples.
func (b Buffer) Len() int { return len(b.Samples) }

// Duration returns the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / b.SampleRate * float64(time.Second))
}

// Window returns the n samples starting at start. It reports false when
// fewer than n samples remain.
func (b Buffer) Window(start, n int) ([]float64, bool) {
	if start < 0 || n < 0 || start+n > len(b.Samples) {
		return nil, false
	}
	return b.Samples[start : start+n : start+n], true
}
