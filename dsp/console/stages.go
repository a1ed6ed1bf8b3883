package console

import (
	"math"

	"github.com/cwbudde/algo-console/dsp/core"
)

const (
	// PushScale is the sine-feed factor of the push stage. A small-signal
	// slope of 1.2 keeps full push a subtle lift rather than a drive.
	PushScale = 1.2

	// MaxStageLevel bounds the input-gain stage output so that every later
	// stage stays finite for any finite input.
	MaxStageLevel = 1e12

	sinePeak = math.Pi / 2 / PushScale
)

// Settings is a fully resolved set of per-sample values. Gains are linear.
type Settings struct {
	InputGain   float64
	Push        float64
	Multiplier  float64
	Coefficient float64
	Skew        float64
	OutputGain  float64
	Mix         float64
}

// NeutralSettings returns unity gains, no push, unity multiplier, zero
// coefficient and skew, and the given mix.
func NeutralSettings(mix float64) Settings {
	return Settings{InputGain: 1, Multiplier: 1, OutputGain: 1, Mix: mix}
}

// StageCoefficients drive the waveshaper for one sample.
type StageCoefficients struct {
	// Drive scales the odd (symmetric) part of the curve.
	Drive float64
	// Bias scales the even part, which treats positive and negative
	// excursions differently.
	Bias float64
}

// DeriveCoefficients scales coefficient and skew by the multiplier.
func DeriveCoefficients(multiplier, coefficient, skew float64) StageCoefficients {
	return StageCoefficients{
		Drive: multiplier * coefficient,
		Bias:  multiplier * skew,
	}
}

// InputGain applies the linear input gain. The result is held within
// ±MaxStageLevel.
func InputGain(x, gain float64) float64 {
	y := x * gain
	if y > MaxStageLevel {
		return MaxStageLevel
	}

	if y < -MaxStageLevel {
		return -MaxStageLevel
	}

	return y
}

// SineClip is sin(PushScale*x) up to the sine peak and ±1 beyond it. It is
// odd, monotonic and bounded by 1.
func SineClip(x float64) float64 {
	if x >= sinePeak {
		return 1
	}

	if x <= -sinePeak {
		return -1
	}

	return math.Sin(PushScale * x)
}

// Push blends x with its sine-clipped version. amount 0 is a bypass; amount 1
// is the pure sine curve. The result satisfies Push(-x) == -Push(x) and
// |Push(x)| <= (1-amount)*|x| + amount.
func Push(x, amount float64) float64 {
	if amount == 0 {
		return x
	}

	return (1-amount)*x + amount*SineClip(x)
}

// Shape is the coefficient/skew waveshaper. The input is first saturated to
// u = x/(1+|x|) in (-1, 1), then
//
//	y = u*(Drive + Bias*u)
//
// so |y| <= |Drive| + |Bias| for any input and y(0) = 0. The Bias*u^2 term is
// even, so a non-zero Bias adds even harmonics and a DC offset of the same
// sign as Bias. The console does not block DC.
func Shape(x float64, sc StageCoefficients) float64 {
	if sc.Drive == 0 && sc.Bias == 0 {
		return 0
	}

	u := x / (1 + math.Abs(x))

	return u * (sc.Drive + sc.Bias*u)
}

// OutputGain applies the linear output gain.
func OutputGain(x, gain float64) float64 {
	return x * gain
}

// Sum is the dry/wet law: dry + wet*mix.
func Sum(dry, wet, mix float64) float64 {
	return dry + wet*mix
}

// Chain runs the wet path on one sample: InputGain, Push, Shape, OutputGain.
func Chain(dry float64, s Settings) float64 {
	x := InputGain(dry, s.InputGain)
	x = Push(core.FlushDenormals(x), s.Push)
	x = Shape(x, DeriveCoefficients(s.Multiplier, s.Coefficient, s.Skew))

	return OutputGain(x, s.OutputGain)
}

// Render returns Sum(dry, Chain(dry, s), s.Mix).
func Render(dry float64, s Settings) float64 {
	return Sum(dry, Chain(dry, s), s.Mix)
}

// Ceiling returns the largest |wet| the chain can produce for s. It is
// independent of the input level.
func Ceiling(s Settings) float64 {
	sc := DeriveCoefficients(s.Multiplier, s.Coefficient, s.Skew)
	return (math.Abs(sc.Drive) + math.Abs(sc.Bias)) * math.Abs(s.OutputGain)
}
