// Command gladedesk-live runs the console on the default PortAudio duplex
// stream.
//
// Parameters are changed live by typing "key value" lines on stdin, for
// example "coefficient 0.3" or "push 1". "state" prints the current state as
// JSON, "list" prints every parameter and "quit" exits.
//
// Usage:
//
//	gladedesk-live [flags]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-console/dsp/console"
	pa "github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	frames := flag.Int("frames", 256, "frames per PortAudio buffer")
	channels := flag.Int("channels", 2, "input and output channels")
	preset := flag.String("preset", "", "JSON state file to load at start")
	interval := flag.Duration("meter", time.Second, "meter log interval")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	err := run(*rate, *frames, *channels, *preset, *interval, logger)
	if err != nil {
		logger.WithError(err).Error("gladedesk-live failed")
		os.Exit(1)
	}
}

func run(rate float64, frames, channels int, preset string, interval time.Duration, logger *logrus.Logger) error {
	p, err := console.New(rate,
		console.WithChannels(channels),
		console.WithBlockSize(frames),
		console.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if preset != "" {
		err = loadPreset(p, preset)
		if err != nil {
			return err
		}

		p.Reset()
	}

	err = pa.Initialize()
	if err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}

	defer func() {
		if terr := pa.Terminate(); terr != nil {
			logger.WithError(terr).Warn("portaudio terminate")
		}
	}()

	b := newBridge(p, frames)

	stream, err := pa.OpenDefaultStream(channels, channels, rate, frames, b.process)
	if err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer stream.Close()

	err = stream.Start()
	if err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}

	info := stream.Info()
	logger.WithFields(logrus.Fields{
		"sample_rate":    info.SampleRate,
		"input_latency":  info.InputLatency,
		"output_latency": info.OutputLatency,
		"channels":       channels,
	}).Info("stream started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands := make(chan string)
	go readCommands(commands)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return stream.Stop()
		case line, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}

			err := command(p, line, os.Stdout)
			if errors.Is(err, errQuit) {
				return stream.Stop()
			}

			if err != nil {
				logger.WithError(err).Warn("command rejected")
			}
		case <-ticker.C:
			logger.WithFields(logrus.Fields{
				"input_db":  fmt.Sprintf("%.1f", p.InputLevelDB()),
				"output_db": fmt.Sprintf("%.1f", p.OutputLevelDB()),
			}).Info("meters")

			p.LogDiagnostics(logger)
		}
	}
}

func loadPreset(p *console.Processor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := console.ReadState(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return p.SetState(s)
}

// readCommands forwards stdin lines until EOF.
func readCommands(out chan<- string) {
	defer close(out)

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
}
