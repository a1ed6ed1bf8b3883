package console

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-console/dsp/core"
	"github.com/cwbudde/algo-console/dsp/smoothing"
	"github.com/sirupsen/logrus"
)

const (
	defaultChannels     = 2
	maxChannels         = 8
	defaultMeterDecayMs = 100.0
	minMeterDecayMs     = 1.0
	maxMeterDecayMs     = 10000.0
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	core.ProcessorConfig

	channels     int
	meterDecayMs float64
	smoothingMs  [NumParams]float64
	styles       [NumParams]smoothing.Style
	initial      [NumParams]float64
	logger       logrus.FieldLogger
}

func defaultConfig(sampleRate float64) config {
	cfg := config{
		ProcessorConfig: core.ApplyProcessorOptions(core.WithSampleRate(sampleRate)),
		channels:        defaultChannels,
		meterDecayMs:    defaultMeterDecayMs,
		logger:          logrus.StandardLogger(),
	}

	for _, s := range specs {
		cfg.smoothingMs[s.ID] = s.SmoothingMs
		cfg.styles[s.ID] = s.Style
		cfg.initial[s.ID] = s.Default
	}

	return cfg
}

// WithBlockSize sets the largest chunk processed in one pass, in [1, 65536].
// Host blocks longer than this are split internally.
func WithBlockSize(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > core.MaxBlockSize {
			return fmt.Errorf("console block size must be in [1, %d]: %d", core.MaxBlockSize, n)
		}

		core.WithBlockSize(n)(&cfg.ProcessorConfig)

		return nil
	}
}

// WithChannels declares the channel layout hosts should feed, in [1, 8].
func WithChannels(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > maxChannels {
			return fmt.Errorf("console channel count must be in [1, %d]: %d", maxChannels, n)
		}

		cfg.channels = n

		return nil
	}
}

// WithSmoothingTime overrides the smoothing time of one parameter.
func WithSmoothingTime(id ParamID, ms float64) Option {
	return func(cfg *config) error {
		if !id.Valid() {
			return fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
		}

		if ms < smoothing.MinTimeMs || ms > smoothing.MaxTimeMs || math.IsNaN(ms) {
			return fmt.Errorf("console smoothing time for %s must be in [%g, %g] ms: %f",
				id, smoothing.MinTimeMs, smoothing.MaxTimeMs, ms)
		}

		cfg.smoothingMs[id] = ms

		return nil
	}
}

// WithSmoothingStyle overrides the smoothing style of one parameter.
func WithSmoothingStyle(id ParamID, style smoothing.Style) Option {
	return func(cfg *config) error {
		if !id.Valid() {
			return fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
		}

		if !style.Valid() {
			return fmt.Errorf("console smoothing style for %s is invalid: %d", id, style)
		}

		cfg.styles[id] = style

		return nil
	}
}

// WithParameter sets the initial value of a parameter. The processor starts
// settled at this value, without a smoothing ramp.
func WithParameter(id ParamID, value float64) Option {
	return func(cfg *config) error {
		if !id.Valid() {
			return fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
		}

		if !core.IsFinite(value) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidValue, id, value)
		}

		cfg.initial[id] = specs[id].Clamp(value)

		return nil
	}
}

// WithMeterDecay sets the time for the peak meters to fall by 12 dB in
// silence, in [1, 10000] ms.
func WithMeterDecay(ms float64) Option {
	return func(cfg *config) error {
		if ms < minMeterDecayMs || ms > maxMeterDecayMs || math.IsNaN(ms) {
			return fmt.Errorf("console meter decay must be in [%g, %g] ms: %f", minMeterDecayMs, maxMeterDecayMs, ms)
		}

		cfg.meterDecayMs = ms

		return nil
	}
}

// WithLogger sets the logger used for control-path messages. Nil is ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if logger != nil {
			cfg.logger = logger
		}

		return nil
	}
}
