package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/h2non/filetype"
)

var (
	// ErrUnsupportedFormat reports a container or encoding that cannot be
	// decoded.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	// ErrDecode reports a recognised container with unreadable data.
	ErrDecode = errors.New("audio: decode failed")
)

// sniffLen covers every signature filetype matches on.
const sniffLen = 262

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Sniff identifies the container of r and rewinds it. It returns the
// file extension filetype reports, e.g. "wav" or "mp3".
func Sniff(r io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
		}
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind: %v", ErrDecode, err)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("%w: unrecognised container", ErrUnsupportedFormat)
	}
	return kind.Extension, nil
}

// Decode reads a WAV stream into a mono Buffer. Integer PCM is normalized
// by its bit depth and channels are averaged.
func Decode(r io.ReadSeeker) (Buffer, error) {
	ext, err := Sniff(r)
	if err != nil {
		return Buffer{}, err
	}
	if ext != "wav" {
		return Buffer{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, fmt.Errorf("%w: invalid WAV file", ErrDecode)
	}
	if f := dec.WavAudioFormat; f != wavFormatPCM && f != wavFormatExtensible {
		return Buffer{}, fmt.Errorf("%w: WAV encoding %d", ErrUnsupportedFormat, f)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fromIntBuffer(pcm)
}

func fromIntBuffer(pcm *goaudio.IntBuffer) (Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return Buffer{}, fmt.Errorf("%w: missing format", ErrDecode)
	}
	channels := pcm.Format.NumChannels
	if channels < 1 || pcm.Format.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: format %d ch @ %d Hz", ErrDecode, channels, pcm.Format.SampleRate)
	}
	bits := pcm.SourceBitDepth
	if bits < 8 || bits > 32 {
		return Buffer{}, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bits)
	}

	scale := 1 / float64(int64(1)<<(bits-1))
	// 8-bit WAV is unsigned
	offset := 0
	if bits == 8 {
		offset = 128
	}

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	inv := 1 / float64(channels)
	for i := range samples {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += pcm.Data[i*channels+c] - offset
		}
		samples[i] = float64(sum) * scale * inv
	}

	return Buffer{Samples: samples, SampleRate: float64(pcm.Format.SampleRate)}, nil
}
