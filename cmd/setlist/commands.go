package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gopxl/beep/v2"

	"github.com/ItzJonatan/Set-List-Pro/analysis"
	"github.com/ItzJonatan/Set-List-Pro/audio"
	"github.com/ItzJonatan/Set-List-Pro/engine"
	"github.com/ItzJonatan/Set-List-Pro/internal/config"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

const resampleQuality = 4

func setup(path string, stderr io.Writer) (config.Config, logging.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logging.NewWriterLogger(stderr, stderr)
	log.SetLevel(cfg.LogLevel())
	logging.SetGlobal(log)
	return cfg, log, nil
}

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config file (yaml, json or toml)")
	progress := fs.Bool("progress", false, "report progress on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "error: analyze needs exactly one input file\n")
		return 2
	}

	cfg, log, err := setup(*cfgPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	opts := cfg.AnalysisOptions()
	opts.Logger = log
	if *progress {
		opts.OnProgress = func(p int) { fmt.Fprintf(stderr, "\ranalysing %3d%%", p) }
	}
	tracker := analysis.NewTracker(opts)

	name := fs.Arg(0)
	tags, buf, err := load(name)
	if err != nil {
		tracker.Fail(err)
	} else {
		tracker.Start(ctx, buf)
		tracker.Wait()
	}
	if *progress {
		fmt.Fprintln(stderr)
	}

	res, _ := tracker.Result()
	printAnalysis(stdout, tags, res)
	if err := tracker.Err(); err != nil {
		fmt.Fprintf(stderr, "error: %s: %v\n", name, err)
		return 1
	}
	return 0
}

func load(name string) (audio.Tags, audio.Buffer, error) {
	f, err := os.Open(name)
	if err != nil {
		return audio.Tags{}, audio.Buffer{}, err
	}
	defer f.Close()

	tags, err := audio.ReadTags(f)
	if err != nil {
		logging.Global().Warn("unreadable tags", logging.Fields{"file": name, "error": err.Error()})
	}
	buf, err := audio.Decode(f)
	return tags, buf, err
}

func printAnalysis(w io.Writer, tags audio.Tags, res analysis.Result) {
	if tags.Title != "" {
		fmt.Fprintf(w, "title:  %s\n", tags.Title)
	}
	if tags.Artist != "" {
		fmt.Fprintf(w, "artist: %s\n", tags.Artist)
	}
	fmt.Fprintf(w, "key:    %s\n", res.Key)
	if len(res.Chords) == 0 {
		return
	}
	fmt.Fprintf(w, "chords:\n")
	for _, ev := range res.Chords {
		m := int(ev.Time) / 60
		s := ev.Time - float64(60*m)
		fmt.Fprintf(w, "  %d:%04.1f  %s\n", m, s, ev)
	}
}

// settings collects repeated -set name=value flags.
type settings []setting

type setting struct {
	name  string
	value float64
}

func (s *settings) String() string {
	parts := make([]string, len(*s))
	for i, kv := range *s {
		parts[i] = fmt.Sprintf("%s=%g", kv.name, kv.value)
	}
	return strings.Join(parts, ",")
}

func (s *settings) Set(v string) error {
	name, raw, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", name, err)
	}
	*s = append(*s, setting{name: strings.TrimSpace(name), value: f})
	return nil
}

func runRender(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config file (yaml, json or toml)")
	tail := fs.Float64("tail", 2, "seconds rendered after the source ends")
	bits := fs.Int("bits", 16, "output bit depth (16, 24 or 32)")
	var params settings
	fs.Var(&params, "set", "parameter `name=value` (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(stderr, "error: render needs an input and an output file\n")
		return 2
	}
	if *tail < 0 || math.IsNaN(*tail) {
		fmt.Fprintf(stderr, "error: tail must be >= 0\n")
		return 2
	}

	cfg, log, err := setup(*cfgPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := render(cfg, log, fs.Arg(0), fs.Arg(1), params, *tail, *bits, stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func render(cfg config.Config, log logging.Logger, in, out string, params settings,
	tail float64, bits int, stdout io.Writer,
) error {
	_, buf, err := load(in)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	e, err := engine.New(append(cfg.EngineOptions(), engine.WithLogger(log))...)
	if err != nil {
		return err
	}
	defer e.Teardown()

	for _, p := range params {
		v, err := e.SetParameter(p.name, p.value)
		if err != nil {
			return err
		}
		if v != p.value {
			log.Warn("parameter clamped", logging.Fields{"param": p.name, "requested": p.value, "value": v})
		}
	}

	rendered, err := renderOffline(e, buf, tail)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := audio.Encode(f, rendered, bits); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s (%.2f s at %g Hz)\n", out, rendered.Duration().Seconds(), rendered.SampleRate)
	return nil
}

// renderOffline plays buf through e until the source ends, then keeps
// rendering for tail seconds so delay and release tails are captured. A
// source at a different rate is resampled on the way in.
func renderOffline(e *engine.Engine, buf audio.Buffer, tail float64) (audio.Buffer, error) {
	sr := e.SampleRate()
	var src beep.Streamer = audio.NewStreamer(buf)
	if int(buf.SampleRate) != int(sr) {
		src = beep.Resample(resampleQuality, beep.SampleRate(int(buf.SampleRate)), beep.SampleRate(int(sr)), src)
	}

	if err := e.ConnectSource(src); err != nil {
		return audio.Buffer{}, err
	}
	if err := e.Play(); err != nil {
		return audio.Buffer{}, err
	}

	expected := int(math.Ceil(float64(buf.Len()) * sr / buf.SampleRate))
	tailFrames := e.Frames(tail)
	limit := expected + tailFrames + e.Frames(1)

	frames := make([][2]float64, e.BlockSize())
	out := make([]float64, 0, expected+tailFrames)
	for e.State() == engine.Playing {
		if len(out) > limit {
			return audio.Buffer{}, errors.New("source did not end")
		}
		out = appendLeft(out, e, frames)
	}
	if err := e.Err(); err != nil {
		return audio.Buffer{}, err
	}
	for end := len(out) + tailFrames; len(out) < end; {
		out = appendLeft(out, e, frames[:min(len(frames), end-len(out))])
	}
	return audio.Buffer{Samples: out, SampleRate: sr}, nil
}

func appendLeft(out []float64, e *engine.Engine, frames [][2]float64) []float64 {
	n, _ := e.Stream(frames)
	for _, f := range frames[:n] {
		out = append(out, f[0])
	}
	return out
}

func runParams(stdout io.Writer) int {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMIN\tMAX\tDEFAULT\tUNIT\tSMOOTHED")
	for _, d := range engine.Descriptors() {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\t%v\n", d.Name, d.Min, d.Max, d.Default, d.Unit, d.Smoothed)
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}
