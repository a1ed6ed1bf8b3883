//go:build fastmath

package console

import "github.com/meko-christian/algo-approx"

// ln10Over20 converts dB to the natural exponent of the amplitude ratio.
const ln10Over20 = 0.115129254649702284200899572734218210380055074431438

// dbToGain converts a smoothed dB value to linear gain using a fast
// exponential. 0 dB stays exactly unity.
func dbToGain(db float64) float64 {
	if db == 0 {
		return 1
	}

	return approx.FastExp(db * ln10Over20)
}
