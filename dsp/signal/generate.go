// Package signal generates deterministic test signals.
package signal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-console/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg core.ProcessorConfig
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{cfg: core.ApplyProcessorOptions(opts...)}
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave starting at phase zero.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)

	err := g.SineInto(out, freqHz, amplitude)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// SineInto fills dst with a sine wave starting at phase zero.
func (g *Generator) SineInto(dst []float64, freqHz, amplitude float64) error {
	if g.cfg.SampleRate <= 0 {
		return fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}

	if !core.IsFinite(freqHz) || !core.IsFinite(amplitude) {
		return fmt.Errorf("sine frequency and amplitude must be finite: %f, %f", freqHz, amplitude)
	}

	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range dst {
		dst[i] = amplitude * math.Sin(step*float64(i))
	}

	return nil
}
