package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ItzJonatan/Set-List-Pro/audio"
	"github.com/ItzJonatan/Set-List-Pro/internal/testutil"
)

func writeWAV(t *testing.T, buf audio.Buffer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, audio.Encode(f, buf, 16))
	require.NoError(t, f.Close())
	return path
}

func toneBuffer(seconds float64) audio.Buffer {
	const sr = 44100
	return audio.Buffer{
		Samples: testutil.ToneSequence(sr, 0.5,
			testutil.Tone{FreqHz: testutil.NoteFrequency(60), Seconds: seconds}),
		SampleRate: sr,
	}
}

func exec(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUsage(t *testing.T) {
	code, _, stderr := exec()
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "Usage: setlist")

	code, _, stderr = exec("mix")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, `unknown command "mix"`)

	code, stdout, _ := exec("help")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "render")
}

func TestParams(t *testing.T) {
	code, stdout, _ := exec("params")
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 14)
	require.Contains(t, stdout, "delayTime")
	require.Contains(t, stdout, "tremoloRate")
}

func TestAnalyze(t *testing.T) {
	in := writeWAV(t, toneBuffer(3))

	code, stdout, stderr := exec("analyze", "-progress", in)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "key:    C Major")
	require.Contains(t, stdout, "0:00.0  C")
	require.Contains(t, stderr, "100%")
}

func TestAnalyzeSoftFails(t *testing.T) {
	code, stdout, stderr := exec("analyze", filepath.Join(t.TempDir(), "missing.wav"))
	require.Equal(t, 1, code)
	require.Contains(t, stdout, "key:    Unknown")
	require.Contains(t, stderr, "missing.wav")

	notAudio := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notAudio, []byte("not audio at all"), 0o600))
	code, stdout, stderr = exec("analyze", notAudio)
	require.Equal(t, 1, code)
	require.Contains(t, stdout, "key:    Unknown")
	require.Contains(t, stderr, "unsupported format")
}

func TestRender(t *testing.T) {
	in := writeWAV(t, toneBuffer(1))
	out := filepath.Join(t.TempDir(), "out.wav")

	code, stdout, stderr := exec("render", "-set", "pitch=-2", "-set", "delayTime=0.2", "-tail", "0.5", in, out)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "wrote")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	buf, err := audio.Decode(f)
	require.NoError(t, err)
	require.InDelta(t, 44100.0, buf.SampleRate, 0)
	require.GreaterOrEqual(t, buf.Len(), 44100+22050)
	require.Less(t, buf.Len(), 44100+22050+2*128)
}

func TestRenderResamplesToEngineRate(t *testing.T) {
	t.Setenv("SETLIST_ENGINE_SAMPLE_RATE", "22050")
	in := writeWAV(t, toneBuffer(1))
	out := filepath.Join(t.TempDir(), "out.wav")

	code, _, stderr := exec("render", "-tail", "0", in, out)
	require.Equal(t, 0, code, stderr)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	buf, err := audio.Decode(f)
	require.NoError(t, err)
	require.InDelta(t, 22050.0, buf.SampleRate, 0)
	require.InDelta(t, 22050, buf.Len(), 4*128)
}

func TestRenderErrors(t *testing.T) {
	in := writeWAV(t, toneBuffer(0.1))
	out := filepath.Join(t.TempDir(), "out.wav")

	code, _, _ := exec("render", "-set", "pitch", in, out)
	require.Equal(t, 2, code)

	code, _, stderr := exec("render", "-set", "reverb=1", in, out)
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "unknown parameter")

	code, _, _ = exec("render", in)
	require.Equal(t, 2, code)

	code, _, _ = exec("render", "-bits", "12", in, out)
	require.Equal(t, 1, code)
}
