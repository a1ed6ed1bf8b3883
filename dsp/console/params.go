package console

import (
	"fmt"

	"github.com/cwbudde/algo-console/dsp/core"
	"github.com/cwbudde/algo-console/dsp/smoothing"
)

// ParamID identifies a console parameter.
type ParamID int

const (
	ParamInputGain ParamID = iota
	ParamPush
	ParamMultiplier
	ParamCoefficient
	ParamSkew
	ParamOutputGain
	ParamDryWet

	// NumParams is the number of parameters.
	NumParams
)

// Spec describes one parameter: its state key, display name, range, default
// and smoothing behaviour. Values are plain (dB for gains), never normalized.
type Spec struct {
	ID          ParamID
	Key         string
	Name        string
	Unit        string
	Min         float64
	Max         float64
	Default     float64
	SmoothingMs float64
	Style       smoothing.Style
}

var specs = [NumParams]Spec{
	ParamInputGain: {
		ID: ParamInputGain, Key: "input_gain", Name: "Input Gain", Unit: "dB",
		Min: -24, Max: 24, Default: 0, SmoothingMs: 30,
	},
	ParamPush: {
		ID: ParamPush, Key: "push", Name: "Push", Unit: "%",
		Min: 0, Max: 1, Default: 0, SmoothingMs: 30,
	},
	ParamMultiplier: {
		ID: ParamMultiplier, Key: "multiplier", Name: "Multiplier", Unit: "x",
		Min: 0.1, Max: 10, Default: 1, SmoothingMs: 30,
	},
	ParamCoefficient: {
		ID: ParamCoefficient, Key: "coefficient", Name: "Coefficient",
		Min: -0.5, Max: 0.5, Default: 0, SmoothingMs: 30,
	},
	ParamSkew: {
		ID: ParamSkew, Key: "skew", Name: "Skew",
		Min: -0.5, Max: 0.5, Default: 0, SmoothingMs: 30,
	},
	ParamOutputGain: {
		ID: ParamOutputGain, Key: "output_gain", Name: "Output Gain", Unit: "dB",
		Min: -24, Max: 24, Default: 0, SmoothingMs: 50,
	},
	ParamDryWet: {
		ID: ParamDryWet, Key: "dry_wet", Name: "Dry/Wet", Unit: "%",
		Min: 0, Max: 1, Default: 1, SmoothingMs: 50,
	},
}

// Specs returns the parameter table in ParamID order.
func Specs() []Spec {
	out := make([]Spec, NumParams)
	copy(out, specs[:])
	return out
}

// SpecOf returns the description of id.
func SpecOf(id ParamID) (Spec, error) {
	if !id.Valid() {
		return Spec{}, fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
	}

	return specs[id], nil
}

// Lookup returns the parameter with the given state key.
func Lookup(key string) (Spec, error) {
	for _, s := range specs {
		if s.Key == key {
			return s, nil
		}
	}

	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
}

// Valid reports whether id names a parameter.
func (id ParamID) Valid() bool {
	return id >= 0 && id < NumParams
}

// String returns the parameter key.
func (id ParamID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}

	return specs[id].Key
}

// Clamp limits v to the parameter range. NaN maps to the default.
func (s Spec) Clamp(v float64) float64 {
	if v != v {
		return s.Default
	}

	return core.Clamp(v, s.Min, s.Max)
}

// Format renders v for display.
func (s Spec) Format(v float64) string {
	switch s.ID {
	case ParamInputGain, ParamOutputGain:
		return fmt.Sprintf("%+.1f dB", v)
	case ParamPush, ParamDryWet:
		return fmt.Sprintf("%.2f%%", v*100)
	case ParamMultiplier:
		return fmt.Sprintf("%.4f x", v)
	default:
		return fmt.Sprintf("%.6f", v)
	}
}
