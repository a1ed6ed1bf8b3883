// Package coloration measures the harmonic signature of a console processor.
//
// An Analyzer renders a bin-centred sine through a console.Processor, applies
// a periodic Hann window and reads tone levels straight from the FFT bins.
// Because the console chain is memoryless the output is exactly periodic in
// the analysis frame, so every harmonic (and every harmonic that folds back
// past Nyquist) lands on a single bin.
package coloration

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-console/dsp/console"
	"github.com/cwbudde/algo-console/dsp/core"
	"github.com/cwbudde/algo-console/dsp/signal"
	"github.com/cwbudde/algo-console/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultSampleRate   = 48000.0
	defaultFrequency    = 1000.0
	defaultAmplitude    = 0.5
	defaultFFTSize      = 8192
	defaultWarmup       = 1024
	defaultMaxHarmonics = 16
)

// ErrSampleRateMismatch is returned when the processor runs at a different
// rate than the analyzer.
var ErrSampleRateMismatch = errors.New("coloration: sample rate mismatch")

// Config holds measurement parameters. Zero fields take defaults.
type Config struct {
	SampleRate   float64
	Frequency    float64
	Amplitude    float64
	FFTSize      int
	Warmup       int
	MaxHarmonics int
}

// Harmonic is one overtone of the test tone.
type Harmonic struct {
	Order     int
	Frequency float64
	// Bin is the FFT bin the harmonic lands on after folding.
	Bin int
	// Level is the amplitude relative to the fundamental.
	Level   float64
	LevelDB float64
	// Aliased is set when the harmonic lies above Nyquist and folded back.
	// A harmonic exactly at Nyquist is in band.
	Aliased bool
}

// Result holds one coloration measurement.
//
//nolint:revive
type Result struct {
	// Frequency is the bin-centred test frequency actually used.
	Frequency        float64
	FundamentalLevel float64
	Harmonics        []Harmonic
	THD              float64
	THD_dB           float64
	OddHD            float64
	EvenHD           float64
	// AliasPower is the power of folded harmonics relative to the
	// fundamental. Folded harmonics that coincide with the fundamental, DC
	// or an in-band harmonic cannot be separated and are not counted.
	AliasPower float64
	Alias_dB   float64
	DC         float64
	Peak       float64
}

// Analyzer measures processors. It owns its FFT plan and scratch memory and
// is not safe for concurrent use.
type Analyzer struct {
	cfg     Config
	binHz   float64
	fundBin int

	tone   *signal.Generator
	plan   *algofft.Plan[complex128]
	window []float64
	render []float64
	frame  []float64
	spec   []complex128
	out    []complex128
	re     []float64
	im     []float64
	power  []float64
}

// NewAnalyzer validates cfg and allocates the FFT plan.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	cfg = normalizeConfig(cfg)

	if !core.ValidSampleRate(cfg.SampleRate) {
		return nil, fmt.Errorf("coloration sample rate must be in [%g, %g]: %f",
			core.MinSampleRate, core.MaxSampleRate, cfg.SampleRate)
	}

	if cfg.FFTSize < 64 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("coloration FFT size must be a power of two >= 64: %d", cfg.FFTSize)
	}

	if cfg.Amplitude <= 0 || !core.IsFinite(cfg.Amplitude) {
		return nil, fmt.Errorf("coloration amplitude must be > 0 and finite: %f", cfg.Amplitude)
	}

	binHz := cfg.SampleRate / float64(cfg.FFTSize)
	half := cfg.FFTSize / 2

	fundBin := int(math.Round(cfg.Frequency / binHz))
	if fundBin < 2 || fundBin > half-2 || math.IsNaN(cfg.Frequency) {
		return nil, fmt.Errorf("coloration frequency must lie in [%g, %g] Hz: %f",
			2*binHz, float64(half-2)*binHz, cfg.Frequency)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("coloration: %w", err)
	}

	a := &Analyzer{
		cfg:     cfg,
		binHz:   binHz,
		fundBin: fundBin,
		tone:    signal.NewGenerator(core.WithSampleRate(cfg.SampleRate)),
		plan:    plan,
		window:  window.Generate(window.TypeHann, cfg.FFTSize, window.WithPeriodic()),
		render:  make([]float64, cfg.Warmup+cfg.FFTSize),
		frame:   make([]float64, cfg.FFTSize),
		spec:    make([]complex128, cfg.FFTSize),
		out:     make([]complex128, cfg.FFTSize),
		re:      make([]float64, half+1),
		im:      make([]float64, half+1),
		power:   make([]float64, half+1),
	}

	return a, nil
}

// Config returns the normalized configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Frequency returns the bin-centred test frequency.
func (a *Analyzer) Frequency() float64 { return float64(a.fundBin) * a.binHz }

// Measure resets p so pending parameter ramps settle, renders the test tone
// through it and analyzes the output.
func (a *Analyzer) Measure(p *console.Processor) (Result, error) {
	if p.SampleRate() != a.cfg.SampleRate {
		return Result{}, fmt.Errorf("%w: processor %g Hz, analyzer %g Hz",
			ErrSampleRateMismatch, p.SampleRate(), a.cfg.SampleRate)
	}

	p.Reset()

	err := a.tone.SineInto(a.render, a.Frequency(), a.cfg.Amplitude)
	if err != nil {
		return Result{}, fmt.Errorf("coloration: %w", err)
	}

	p.ProcessInPlace(a.render)

	return a.Analyze(a.render[a.cfg.Warmup:])
}

// Analyze measures a rendered frame of FFTSize samples holding the
// bin-centred test tone.
func (a *Analyzer) Analyze(samples []float64) (Result, error) {
	n := a.cfg.FFTSize
	if len(samples) != n {
		return Result{}, fmt.Errorf("coloration frame must hold %d samples: %d", n, len(samples))
	}

	res := Result{
		Frequency: a.Frequency(),
		DC:        vecmath.Sum(samples) / float64(n),
		Peak:      vecmath.MaxAbs(samples),
	}

	vecmath.MulBlock(a.frame, samples, a.window)

	for i, x := range a.frame {
		a.spec[i] = complex(x, 0)
	}

	err := a.plan.Forward(a.out, a.spec)
	if err != nil {
		return Result{}, fmt.Errorf("coloration: %w", err)
	}

	for i := range a.power {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	vecmath.Power(a.power, a.re, a.im)

	fund := a.amplitude(a.fundBin)
	res.FundamentalLevel = fund

	if fund <= 0 {
		res.THD_dB = math.Inf(-1)
		res.Alias_dB = math.Inf(-1)

		return res, nil
	}

	a.harmonics(&res, fund)

	return res, nil
}

func (a *Analyzer) harmonics(res *Result, fund float64) {
	n := a.cfg.FFTSize
	half := n / 2

	occupied := map[int]bool{0: true, a.fundBin: true}
	for k := 2; k <= a.cfg.MaxHarmonics && k*a.fundBin <= half; k++ {
		occupied[k*a.fundBin] = true
	}

	res.Harmonics = make([]Harmonic, 0, a.cfg.MaxHarmonics-1)

	var thd, odd, even, alias float64

	for k := 2; k <= a.cfg.MaxHarmonics; k++ {
		bin := (k * a.fundBin) % n
		aliased := k*a.fundBin > half

		if bin > half {
			bin = n - bin
		}

		level := a.amplitude(bin) / fund
		power := level * level

		res.Harmonics = append(res.Harmonics, Harmonic{
			Order:     k,
			Frequency: float64(k) * res.Frequency,
			Bin:       bin,
			Level:     level,
			LevelDB:   core.LinearToDB(level),
			Aliased:   aliased,
		})

		if aliased {
			if !occupied[bin] {
				alias += power
				occupied[bin] = true
			}

			continue
		}

		thd += power
		if k%2 == 0 {
			even += power
		} else {
			odd += power
		}
	}

	res.THD = math.Sqrt(thd)
	res.THD_dB = core.LinearToDB(res.THD)
	res.OddHD = math.Sqrt(odd)
	res.EvenHD = math.Sqrt(even)
	res.AliasPower = alias
	res.Alias_dB = core.LinearPowerToDB(alias)
}

// amplitude converts a bin to the amplitude of a bin-centred sine. A periodic
// Hann window sums to N/2, so a tone of amplitude A reads A*N/4.
func (a *Analyzer) amplitude(bin int) float64 {
	p := a.power[bin]
	if p <= 0 {
		return 0
	}

	scale := 4 / float64(a.cfg.FFTSize)
	if bin == 0 || bin == a.cfg.FFTSize/2 {
		scale = 2 / float64(a.cfg.FFTSize)
	}

	return math.Sqrt(p) * scale
}

func normalizeConfig(cfg Config) Config {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}

	if cfg.Frequency == 0 {
		cfg.Frequency = defaultFrequency
	}

	if cfg.Amplitude == 0 {
		cfg.Amplitude = defaultAmplitude
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.Warmup <= 0 {
		cfg.Warmup = defaultWarmup
	}

	if cfg.MaxHarmonics < 2 {
		cfg.MaxHarmonics = defaultMaxHarmonics
	}

	return cfg
}
