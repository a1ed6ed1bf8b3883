package console

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/cwbudde/algo-console/dsp/core"
)

// State is a flat snapshot of parameter targets keyed by parameter key.
// Smoothing trajectories are not part of the state.
type State map[string]float64

// DefaultState returns every parameter at its default.
func DefaultState() State {
	s := make(State, NumParams)
	for _, spec := range specs {
		s[spec.Key] = spec.Default
	}
	return s
}

// State returns the current parameter targets.
func (p *Processor) State() State {
	values := p.targets.snapshot()

	s := make(State, NumParams)
	for _, spec := range specs {
		s[spec.Key] = values[spec.ID]
	}

	return s
}

// SetState replaces all parameter targets. Keys missing from s fall back to
// their defaults; values are clamped to range. Unknown keys or non-finite
// values fail the whole call and leave the targets untouched. The new targets
// are approached with the usual smoothing; call Reset to jump to them.
func (p *Processor) SetState(s State) error {
	values, err := s.resolve()
	if err != nil {
		return err
	}

	for id := ParamID(0); id < NumParams; id++ {
		p.targets.store(id, values[id])
	}

	return nil
}

// Keys returns the keys of s in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (s State) resolve() ([NumParams]float64, error) {
	var values [NumParams]float64
	for _, spec := range specs {
		values[spec.ID] = spec.Default
	}

	for _, key := range s.Keys() {
		spec, err := Lookup(key)
		if err != nil {
			return values, err
		}

		v := s[key]
		if !core.IsFinite(v) {
			return values, fmt.Errorf("%w: %s = %v", ErrInvalidValue, key, v)
		}

		values[spec.ID] = spec.Clamp(v)
	}

	return values, nil
}

// ReadState decodes a JSON object of parameter keys to values and validates
// it.
func ReadState(r io.Reader) (State, error) {
	var s State

	dec := json.NewDecoder(r)

	err := dec.Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("console state: %w", err)
	}

	_, err = s.resolve()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// WriteTo encodes s as indented JSON.
func (s State) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("console state: %w", err)
	}

	data = append(data, '\n')

	n, err := w.Write(data)

	return int64(n), err
}
