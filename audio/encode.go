package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode writes buf as a mono integer PCM WAV with the given bit depth
// (16, 24 or 32). Samples are clipped to [-1, 1].
func Encode(w io.WriteSeeker, buf Buffer, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: encode bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
	sr := int(math.Round(buf.SampleRate))
	if sr <= 0 {
		return fmt.Errorf("encode sample rate must be > 0: %f", buf.SampleRate)
	}

	full := float64(int64(1)<<(bitDepth-1)) - 1
	data := make([]int, len(buf.Samples))
	for i, x := range buf.Samples {
		x = math.Max(-1, math.Min(1, x))
		data[i] = int(math.Round(x * full))
	}

	enc := wav.NewEncoder(w, sr, bitDepth, 1, wavFormatPCM)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sr},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
