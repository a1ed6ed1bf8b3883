// Package smoothing provides per-sample parameter smoothers for real-time
// processors.
//
// A Smoother is owned by the audio goroutine: SetTarget and Next must not be
// called concurrently. Cross-goroutine delivery of targets is the caller's
// concern (see dsp/console for an atomic bridge).
package smoothing

import (
	"fmt"
	"math"
)

// Style selects how the current value approaches the target.
type Style int

const (
	// StyleExponential is a one-pole lowpass toward the target. The time
	// constant is the time to cover 1-1/e of the distance.
	StyleExponential Style = iota
	// StyleLinear ramps to the target in a fixed time regardless of distance.
	StyleLinear
)

const (
	// MinTimeMs and MaxTimeMs bound the configurable smoothing time.
	MinTimeMs = 0.0
	MaxTimeMs = 1000.0

	// settleThreshold is the distance below which the exponential style snaps
	// to the target and stops smoothing.
	settleThreshold = 1e-9
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleExponential:
		return "exponential"
	case StyleLinear:
		return "linear"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return s == StyleExponential || s == StyleLinear
}

// Smoother moves a current value toward a target once per sample.
type Smoother struct {
	style      Style
	timeMs     float64
	sampleRate float64

	current float64
	target  float64

	// coeff is the exponential pole, or the ramp length in samples for the
	// linear style.
	coeff float64
	step  float64
	steps int

	smoothing bool
}

// New returns a smoother resting at value 0.
func New(style Style, timeMs, sampleRate float64) (*Smoother, error) {
	if !style.Valid() {
		return nil, fmt.Errorf("smoothing style is invalid: %d", style)
	}

	if timeMs < MinTimeMs || timeMs > MaxTimeMs || math.IsNaN(timeMs) {
		return nil, fmt.Errorf("smoothing time must be in [%g, %g] ms: %f", MinTimeMs, MaxTimeMs, timeMs)
	}

	s := &Smoother{style: style, timeMs: timeMs}

	err := s.SetSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// SetSampleRate recomputes the per-sample coefficient. An active linear ramp
// restarts from the current value.
func (s *Smoother) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("smoothing sample rate must be > 0 and finite: %f", sampleRate)
	}

	s.sampleRate = sampleRate
	samples := s.timeMs * 0.001 * sampleRate

	switch s.style {
	case StyleExponential:
		if samples < 1 {
			s.coeff = 0
		} else {
			s.coeff = math.Exp(-1 / samples)
		}
	case StyleLinear:
		s.coeff = math.Max(1, math.Round(samples))
	}

	if s.smoothing {
		s.retarget(s.target)
	}

	return nil
}

// SetTarget sets the value the smoother moves toward. Setting the current
// target again is a no-op, so callers may republish every block.
func (s *Smoother) SetTarget(target float64) {
	if target == s.target {
		return
	}

	s.retarget(target)
}

func (s *Smoother) retarget(target float64) {
	s.target = target
	s.smoothing = s.current != target

	if s.style == StyleLinear && s.smoothing {
		s.steps = int(s.coeff)
		s.step = (target - s.current) / s.coeff
	}
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float64 {
	if !s.smoothing {
		return s.current
	}

	switch s.style {
	case StyleExponential:
		s.current = s.target + s.coeff*(s.current-s.target)
		if math.Abs(s.current-s.target) < settleThreshold {
			s.current = s.target
			s.smoothing = false
		}
	case StyleLinear:
		s.steps--
		if s.steps <= 0 {
			s.current = s.target
			s.smoothing = false
		} else {
			s.current += s.step
		}
	}

	return s.current
}

// Skip advances n samples and returns the resulting value.
func (s *Smoother) Skip(n int) float64 {
	if n <= 0 || !s.smoothing {
		return s.current
	}

	switch s.style {
	case StyleExponential:
		s.current = s.target + math.Pow(s.coeff, float64(n))*(s.current-s.target)
		if math.Abs(s.current-s.target) < settleThreshold {
			s.current = s.target
			s.smoothing = false
		}
	case StyleLinear:
		if n >= s.steps {
			s.current = s.target
			s.steps = 0
			s.smoothing = false
		} else {
			s.steps -= n
			s.current += s.step * float64(n)
		}
	}

	return s.current
}

// Reset jumps to value without smoothing.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.step = 0
	s.steps = 0
	s.smoothing = false
}

// MaxStep returns the largest change a single Next call can produce when the
// target moves across a distance of span.
func (s *Smoother) MaxStep(span float64) float64 {
	span = math.Abs(span)

	switch s.style {
	case StyleExponential:
		return (1 - s.coeff) * span
	case StyleLinear:
		return span / s.coeff
	default:
		return span
	}
}

// Current returns the most recent smoothed value.
func (s *Smoother) Current() float64 { return s.current }

// Target returns the value being approached.
func (s *Smoother) Target() float64 { return s.target }

// IsSmoothing reports whether the current value is still moving.
func (s *Smoother) IsSmoothing() bool { return s.smoothing }

// Style returns the smoothing style.
func (s *Smoother) Style() Style { return s.style }

// TimeMs returns the configured smoothing time in milliseconds.
func (s *Smoother) TimeMs() float64 { return s.timeMs }

// SampleRate returns the sample rate in Hz.
func (s *Smoother) SampleRate() float64 { return s.sampleRate }
