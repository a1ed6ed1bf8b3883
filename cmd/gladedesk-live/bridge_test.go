package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/algo-console/dsp/console"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newProcessor(t *testing.T, opts ...console.Option) *console.Processor {
	t.Helper()

	logger, _ := logtest.NewNullLogger()

	p, err := console.New(48000, append([]console.Option{console.WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("console.New() error = %v", err)
	}

	return p
}

func TestBridgeNeutralPassThrough(t *testing.T) {
	b := newBridge(newProcessor(t), 4)

	in := [][]float32{{0.1, -0.2, 0.3, 0.4, 0.5, -0.6}, {1, 0, -1, 0.5, 0.25, 0}}
	out := [][]float32{make([]float32, 6), make([]float32, 6)}

	b.process(in, out)

	for ch := range in {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Fatalf("ch %d frame %d: got %v, want %v", ch, i, out[ch][i], in[ch][i])
			}
		}
	}
}

func TestBridgeMissingInputIsSilence(t *testing.T) {
	b := newBridge(newProcessor(t, console.WithParameter(console.ParamCoefficient, 0.5)), 8)

	in := [][]float32{{0.5, 0.5}}
	out := [][]float32{{9, 9}, {9, 9}}

	b.process(in, out)

	if out[1][0] != 0 || out[1][1] != 0 {
		t.Fatalf("missing input channel should render silence, got %v", out[1])
	}

	want := float32(0.5 + 0.5/3)
	if d := out[0][0] - want; d > 1e-6 || d < -1e-6 {
		t.Fatalf("colored sample = %v, want %v", out[0][0], want)
	}
}

func TestBridgeDoesNotAllocate(t *testing.T) {
	b := newBridge(newProcessor(t), 64)
	in := [][]float32{make([]float32, 256), make([]float32, 256)}
	out := [][]float32{make([]float32, 256), make([]float32, 256)}

	if allocs := testing.AllocsPerRun(20, func() { b.process(in, out) }); allocs != 0 {
		t.Fatalf("process allocated %.1f times per run", allocs)
	}
}

func TestCommand(t *testing.T) {
	p := newProcessor(t)

	var buf bytes.Buffer

	if err := command(p, "Coefficient 0.25", &buf); err != nil {
		t.Fatalf("command() error = %v", err)
	}

	if p.Parameter(console.ParamCoefficient) != 0.25 {
		t.Fatalf("coefficient = %g, want 0.25", p.Parameter(console.ParamCoefficient))
	}

	if err := command(p, "   ", &buf); err != nil {
		t.Fatalf("blank line error = %v", err)
	}

	if err := command(p, "state", &buf); err != nil || !strings.Contains(buf.String(), `"coefficient": 0.25`) {
		t.Fatalf("state output = %q, err = %v", buf.String(), err)
	}

	buf.Reset()

	if err := command(p, "list", &buf); err != nil || !strings.Contains(buf.String(), "output_gain") {
		t.Fatalf("list output = %q, err = %v", buf.String(), err)
	}

	if err := command(p, "quit", &buf); !errors.Is(err, errQuit) {
		t.Fatalf("quit error = %v", err)
	}

	for _, line := range []string{"push", "push loud", "warmth 1", "push 1 2"} {
		if err := command(p, line, &buf); err == nil {
			t.Fatalf("command(%q) should fail", line)
		}
	}

	if !errors.Is(command(p, "tone 1", &buf), console.ErrUnknownParameter) {
		t.Fatal("unknown key should wrap ErrUnknownParameter")
	}
}
