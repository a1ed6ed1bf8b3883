package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-console/dsp/core"
)

func TestSineLength(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))

	s, err := g.Sine(1000, 1, 64)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	if len(s) != 64 {
		t.Fatalf("len = %d, want 64", len(s))
	}
}

func TestSineMatchesFormula(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(44100))

	s, err := g.Sine(997, 0.5, 256)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	for i, v := range s {
		want := 0.5 * math.Sin(2*math.Pi*997*float64(i)/44100)
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestSineIntoFillsDestination(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))

	dst := make([]float64, 8)
	if err := g.SineInto(dst, 2000, 2); err != nil {
		t.Fatalf("SineInto() error = %v", err)
	}

	want := []float64{0, 2, 0, -2, 0, 2, 0, -2}
	for i := range dst {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestGeneratorConfig(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(96000), core.WithBlockSize(128))

	cfg := g.Config()
	if cfg.SampleRate != 96000 || cfg.BlockSize != 128 {
		t.Fatalf("Config() = %#v", cfg)
	}

	if NewGenerator().Config() != core.DefaultProcessorConfig() {
		t.Fatal("NewGenerator() should use the default config")
	}
}

func TestSineErrors(t *testing.T) {
	g := NewGenerator()

	if _, err := g.Sine(1000, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}

	if _, err := g.Sine(math.NaN(), 1, 8); err == nil {
		t.Fatal("expected error for NaN frequency")
	}

	if err := g.SineInto(make([]float64, 4), 1000, math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite amplitude")
	}

	var zero Generator
	if err := zero.SineInto(make([]float64, 4), 1000, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
