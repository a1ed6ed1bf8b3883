// Command gladedesk renders a test tone through the console and prints its
// coloration.
//
// Usage:
//
//	gladedesk [flags]
//
// Examples:
//
//	gladedesk -list
//	gladedesk -set coefficient=0.3 -set skew=0.1
//	gladedesk -preset warm.json -freq 5000 -amp 0.8
//	gladedesk -set push=1 -save pushed.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-console/dsp/console"
	"github.com/cwbudde/algo-console/dsp/core"
	"github.com/cwbudde/algo-console/dsp/signal"
	"github.com/cwbudde/algo-console/host/goaudio"
	"github.com/cwbudde/algo-console/measure/coloration"
	"github.com/go-audio/audio"
	"github.com/sirupsen/logrus"
)

// assignments collects repeated -set key=value flags.
type assignments []assignment

type assignment struct {
	key   string
	value float64
}

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, s := range *a {
		parts[i] = fmt.Sprintf("%s=%g", s.key, s.value)
	}

	return strings.Join(parts, ",")
}

func (a *assignments) Set(v string) error {
	key, raw, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected key=value: %q", v)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("value for %s: %w", key, err)
	}

	*a = append(*a, assignment{key: strings.ToLower(strings.TrimSpace(key)), value: value})

	return nil
}

type options struct {
	rate      float64
	freq      float64
	amp       float64
	fftSize   int
	harmonics int
	seconds   float64
	preset    string
	save      string
	list      bool
	verbose   bool
	sets      assignments
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gladedesk", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options

	fs.Float64Var(&opts.rate, "rate", 48000, "sample rate in Hz")
	fs.Float64Var(&opts.freq, "freq", 1000, "test tone frequency in Hz (snapped to an FFT bin)")
	fs.Float64Var(&opts.amp, "amp", 0.5, "test tone amplitude (linear, 1 = full scale)")
	fs.IntVar(&opts.fftSize, "fft", 8192, "analysis FFT size (power of two)")
	fs.IntVar(&opts.harmonics, "harmonics", 16, "highest harmonic order to report")
	fs.Float64Var(&opts.seconds, "seconds", 1, "length of the stereo render used for metering")
	fs.StringVar(&opts.preset, "preset", "", "JSON state file to load before -set")
	fs.StringVar(&opts.save, "save", "", "write the resulting state to this JSON file")
	fs.BoolVar(&opts.list, "list", false, "list parameters and exit")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.Var(&opts.sets, "set", "set a parameter, key=value (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gladedesk [flags]\n\n")
		fmt.Fprintf(stderr, "Renders a sine through the console and prints its harmonic signature.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  gladedesk -list\n")
		fmt.Fprintf(stderr, "  gladedesk -set coefficient=0.3 -set skew=0.1\n")
		fmt.Fprintf(stderr, "  gladedesk -preset warm.json -freq 5000 -amp 0.8\n")
	}

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	err = checkRate(opts.rate)
	if err != nil {
		fmt.Fprintf(stderr, "invalid value %q for flag -rate: %v\n", strconv.FormatFloat(opts.rate, 'g', -1, 64), err)
		fs.Usage()

		return 2
	}

	logger := logrus.New()
	logger.SetOutput(stderr)

	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if opts.list {
		return report(logger, printList(stdout))
	}

	return report(logger, render(opts, logger, stdout))
}

// checkRate rejects rates the go-audio formats cannot carry, which store the
// sample rate as an integer.
func checkRate(rate float64) error {
	if rate <= 0 || math.IsInf(rate, 0) || rate != math.Trunc(rate) {
		return errors.New("sample rate must be a positive whole number of Hz")
	}

	return nil
}

func report(logger *logrus.Logger, err error) int {
	if err == nil {
		return 0
	}

	logger.WithError(err).Error("gladedesk failed")

	return 1
}

func printList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Key\tName\tMin\tMax\tDefault\tSmoothing\n")
	fmt.Fprintf(tw, "---\t----\t---\t---\t-------\t---------\n")

	for _, s := range console.Specs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%g ms %s\n",
			s.Key, s.Name, s.Format(s.Min), s.Format(s.Max), s.Format(s.Default), s.SmoothingMs, s.Style)
	}

	return tw.Flush()
}

func render(opts options, logger *logrus.Logger, w io.Writer) error {
	p, err := console.New(opts.rate, console.WithLogger(logger))
	if err != nil {
		return err
	}

	err = applyState(p, opts, logger)
	if err != nil {
		return err
	}

	p.Reset()

	err = printParameters(w, p)
	if err != nil {
		return err
	}

	err = meter(p, opts, logger, w)
	if err != nil {
		return err
	}

	a, err := coloration.NewAnalyzer(coloration.Config{
		SampleRate:   opts.rate,
		Frequency:    opts.freq,
		Amplitude:    opts.amp,
		FFTSize:      opts.fftSize,
		MaxHarmonics: opts.harmonics,
	})
	if err != nil {
		return err
	}

	res, err := a.Measure(p)
	if err != nil {
		return err
	}

	p.LogDiagnostics(logger)

	err = printColoration(w, res)
	if err != nil {
		return err
	}

	if opts.save != "" {
		return saveState(opts.save, p.State(), logger)
	}

	return nil
}

func applyState(p *console.Processor, opts options, logger *logrus.Logger) error {
	if opts.preset != "" {
		f, err := os.Open(opts.preset)
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := console.ReadState(f)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.preset, err)
		}

		err = p.SetState(s)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.preset, err)
		}

		logger.WithField("preset", opts.preset).Debug("preset loaded")
	}

	for _, a := range opts.sets {
		err := p.SetParameterByKey(a.key, a.value)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"key":   a.key,
			"value": a.value,
		}).Debug("parameter set")
	}

	return nil
}

func printParameters(w io.Writer, p *console.Processor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, s := range console.Specs() {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Format(p.Parameter(s.ID)))
	}

	fmt.Fprintln(tw)

	return tw.Flush()
}

// meter renders an interleaved stereo tone through the go-audio adapter and
// prints the resulting peak meters.
func meter(p *console.Processor, opts options, logger *logrus.Logger, w io.Writer) error {
	frames := int(math.Round(opts.seconds * opts.rate))
	if frames < 1 {
		return fmt.Errorf("render length must be at least one frame: %g s", opts.seconds)
	}

	gen := signal.NewGenerator(core.WithSampleRate(opts.rate))

	tone, err := gen.Sine(opts.freq, opts.amp, frames)
	if err != nil {
		return err
	}

	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: p.Channels(), SampleRate: int(opts.rate)},
		Data:   make([]float64, frames*p.Channels()),
	}

	for i, x := range tone {
		for ch := range p.Channels() {
			buf.Data[i*p.Channels()+ch] = x
		}
	}

	adapter, err := goaudio.New(p, p.BlockSize())
	if err != nil {
		return err
	}

	err = adapter.ProcessFloat(buf)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"frames":   frames,
		"channels": p.Channels(),
	}).Debug("meter render done")

	_, err = fmt.Fprintf(w, "Input peak\t%.2f dBFS\nOutput peak\t%.2f dBFS\n\n", p.InputLevelDB(), p.OutputLevelDB())

	return err
}

func printColoration(w io.Writer, res coloration.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Tone\t%.2f Hz\n", res.Frequency)
	fmt.Fprintf(tw, "Fundamental\t%.2f dBFS\n", 20*math.Log10(res.FundamentalLevel))
	fmt.Fprintf(tw, "THD\t%.4f%% (%.1f dB)\n", res.THD*100, res.THD_dB)
	fmt.Fprintf(tw, "Odd / even\t%.4f%% / %.4f%%\n", res.OddHD*100, res.EvenHD*100)
	fmt.Fprintf(tw, "DC\t%.6f\n", res.DC)
	fmt.Fprintf(tw, "Alias power\t%.1f dB\n", res.Alias_dB)
	fmt.Fprintf(tw, "Peak\t%.4f\n\n", res.Peak)

	fmt.Fprintf(tw, "Order\tFrequency [Hz]\tLevel [dB]\tFolded\n")
	fmt.Fprintf(tw, "-----\t--------------\t----------\t------\n")

	for _, h := range res.Harmonics {
		folded := ""
		if h.Aliased {
			folded = fmt.Sprintf("bin %d", h.Bin)
		}

		fmt.Fprintf(tw, "%d\t%.1f\t%.1f\t%s\n", h.Order, h.Frequency, h.LevelDB, folded)
	}

	return tw.Flush()
}

func saveState(path string, s console.State, logger *logrus.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = s.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	logger.WithField("path", path).Info("state saved")

	return nil
}
