//go:build !fastmath

package console

import "github.com/cwbudde/algo-console/dsp/core"

// dbToGain converts a smoothed dB value to linear gain.
func dbToGain(db float64) float64 {
	return core.DBToLinear(db)
}
