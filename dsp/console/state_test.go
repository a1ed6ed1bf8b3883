package console

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestStateRoundTripThroughProcessor(t *testing.T) {
	p := newTestProcessor(t)

	want := State{
		"input_gain":  -3,
		"push":        0.4,
		"multiplier":  2.5,
		"coefficient": 0.2,
		"skew":        -0.1,
		"output_gain": 6,
		"dry_wet":     0.75,
	}

	if err := p.SetState(want); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	got := p.State()
	for _, key := range want.Keys() {
		if got[key] != want[key] {
			t.Fatalf("%s = %g, want %g", key, got[key], want[key])
		}
	}
}

func TestSetStateDefaultsAndClamps(t *testing.T) {
	p := newTestProcessor(t, WithParameter(ParamPush, 0.9))

	if err := p.SetState(State{"multiplier": 50, "skew": -3}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if got := p.Parameter(ParamPush); got != 0 {
		t.Fatalf("missing key must fall back to default, got %g", got)
	}

	if p.Parameter(ParamMultiplier) != 10 || p.Parameter(ParamSkew) != -0.5 {
		t.Fatalf("values not clamped: %v", p.State())
	}
}

func TestSetStateIsAllOrNothing(t *testing.T) {
	p := newTestProcessor(t, WithParameter(ParamCoefficient, 0.3))
	before := p.State()

	err := p.SetState(State{"coefficient": -0.2, "warmth": 1})
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("unknown key error = %v", err)
	}

	err = p.SetState(State{"coefficient": -0.2, "push": math.NaN()})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("NaN value error = %v", err)
	}

	after := p.State()
	for _, key := range before.Keys() {
		if after[key] != before[key] {
			t.Fatalf("%s changed from %g to %g after a rejected state", key, before[key], after[key])
		}
	}
}

func TestSetStateIsSmoothed(t *testing.T) {
	p := newTestProcessor(t)

	if err := p.SetState(State{"coefficient": 0.5}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	p.ProcessInPlace(make([]float64, 1))

	if got := p.Smoothed(ParamCoefficient); got <= 0 || got >= 0.5 {
		t.Fatalf("state change must ramp, smoothed = %g", got)
	}

	p.Reset()

	if got := p.Smoothed(ParamCoefficient); got != 0.5 {
		t.Fatalf("Reset must jump to target, got %g", got)
	}
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	if len(s) != int(NumParams) {
		t.Fatalf("DefaultState has %d keys, want %d", len(s), NumParams)
	}

	p := newTestProcessor(t)
	got := p.State()

	for _, key := range s.Keys() {
		if got[key] != s[key] {
			t.Fatalf("%s = %g, want default %g", key, got[key], s[key])
		}
	}
}

func TestStateJSON(t *testing.T) {
	var buf bytes.Buffer

	in := State{"push": 0.5, "dry_wet": 0.25}

	n, err := in.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}

	out, err := ReadState(&buf)
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}

	if out["push"] != 0.5 || out["dry_wet"] != 0.25 || len(out) != 2 {
		t.Fatalf("ReadState() = %v", out)
	}
}

func TestReadStateRejects(t *testing.T) {
	cases := map[string]string{
		"syntax":      `{"push": }`,
		"unknown key": `{"push": 0.5, "tone": 1}`,
		"wrong type":  `{"push": "half"}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadState(strings.NewReader(input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStateKeysSorted(t *testing.T) {
	keys := DefaultState().Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
