// Package config loads runtime settings from defaults, an optional config
// file and SETLIST_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ItzJonatan/Set-List-Pro/analysis"
	"github.com/ItzJonatan/Set-List-Pro/dsp/smooth"
	"github.com/ItzJonatan/Set-List-Pro/dsp/spectrum"
	"github.com/ItzJonatan/Set-List-Pro/engine"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g.
// SETLIST_ANALYSIS_STRIDE_SECONDS.
const EnvPrefix = "SETLIST"

// ErrInvalid reports a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid setting")

// Config is the full settings tree.
type Config struct {
	Analysis Analysis `mapstructure:"analysis"`
	Engine   Engine   `mapstructure:"engine"`
	Log      Log      `mapstructure:"log"`
}

// Analysis configures the key and chord pass.
type Analysis struct {
	WindowSize      int     `mapstructure:"window_size"`
	StrideSeconds   float64 `mapstructure:"stride_seconds"`
	MaxSeconds      float64 `mapstructure:"max_seconds"`
	MinFreq         float64 `mapstructure:"min_freq"`
	MaxFreq         float64 `mapstructure:"max_freq"`
	DebounceSeconds float64 `mapstructure:"debounce_seconds"`
	YieldEvery      int     `mapstructure:"yield_every"`
}

// Engine configures the effects engine.
type Engine struct {
	SampleRate       float64 `mapstructure:"sample_rate"`
	BlockSize        int     `mapstructure:"block_size"`
	SmoothingSeconds float64 `mapstructure:"smoothing_seconds"`
	FFTSize          int     `mapstructure:"fft_size"`
}

// Log configures the default logger.
type Log struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	a := analysis.DefaultOptions()
	v.SetDefault("analysis.window_size", a.WindowSize)
	v.SetDefault("analysis.stride_seconds", a.StrideSeconds)
	v.SetDefault("analysis.max_seconds", a.MaxSeconds)
	v.SetDefault("analysis.min_freq", a.MinFreq)
	v.SetDefault("analysis.max_freq", a.MaxFreq)
	v.SetDefault("analysis.debounce_seconds", a.DebounceSeconds)
	v.SetDefault("analysis.yield_every", a.YieldEvery)

	v.SetDefault("engine.sample_rate", 44100.0)
	v.SetDefault("engine.block_size", 128)
	v.SetDefault("engine.smoothing_seconds", smooth.DefaultTimeConstant)
	v.SetDefault("engine.fft_size", spectrum.DefaultFFTSize)

	v.SetDefault("log.level", "info")
}

// Default returns the built-in settings.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads settings. path may be empty; otherwise the file must exist
// and its extension selects the format (yaml, json, toml, ...).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings the consuming packages would reject later.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !(c.Engine.SampleRate > 0) {
		return fmt.Errorf("%w: engine.sample_rate must be > 0: %f", ErrInvalid, c.Engine.SampleRate)
	}
	if c.Engine.BlockSize < 1 {
		return fmt.Errorf("%w: engine.block_size must be >= 1: %d", ErrInvalid, c.Engine.BlockSize)
	}
	if c.Engine.SmoothingSeconds < 0 {
		return fmt.Errorf("%w: engine.smoothing_seconds must be >= 0: %f", ErrInvalid, c.Engine.SmoothingSeconds)
	}
	if n := c.Engine.FFTSize; n < 32 || n&(n-1) != 0 {
		return fmt.Errorf("%w: engine.fft_size must be a power of two >= 32: %d", ErrInvalid, n)
	}
	if c.Analysis.WindowSize < 2 {
		return fmt.Errorf("%w: analysis.window_size must be >= 2: %d", ErrInvalid, c.Analysis.WindowSize)
	}
	if !(c.Analysis.StrideSeconds > 0) {
		return fmt.Errorf("%w: analysis.stride_seconds must be > 0: %f", ErrInvalid, c.Analysis.StrideSeconds)
	}
	if !(c.Analysis.MinFreq < c.Analysis.MaxFreq) {
		return fmt.Errorf("%w: analysis band must satisfy min_freq < max_freq: [%f, %f]",
			ErrInvalid, c.Analysis.MinFreq, c.Analysis.MaxFreq)
	}
	if c.Analysis.YieldEvery < 1 {
		return fmt.Errorf("%w: analysis.yield_every must be >= 1: %d", ErrInvalid, c.Analysis.YieldEvery)
	}
	return nil
}

// AnalysisOptions converts the analysis section. Callbacks and the logger
// are left for the caller to set.
func (c Config) AnalysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.WindowSize = c.Analysis.WindowSize
	opts.StrideSeconds = c.Analysis.StrideSeconds
	opts.MaxSeconds = c.Analysis.MaxSeconds
	opts.MinFreq = c.Analysis.MinFreq
	opts.MaxFreq = c.Analysis.MaxFreq
	opts.DebounceSeconds = c.Analysis.DebounceSeconds
	opts.YieldEvery = c.Analysis.YieldEvery
	return opts
}

// EngineOptions converts the engine section.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithSampleRate(c.Engine.SampleRate),
		engine.WithBlockSize(c.Engine.BlockSize),
		engine.WithSmoothing(c.Engine.SmoothingSeconds),
		engine.WithFFTSize(c.Engine.FFTSize),
	}
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() logging.Level {
	l, _ := logging.ParseLevel(c.Log.Level)
	return l
}
