package console

import (
	"math"
	"sync/atomic"
)

// peakMeter tracks a decaying block peak. The audio goroutine updates it;
// any goroutine may read it.
type peakMeter struct {
	bits atomic.Uint64

	// weight is the per-sample decay factor.
	weight float64
}

// setDecay configures the meter to fall by 12 dB (a factor of 0.25) over
// decayMs of silence.
func (m *peakMeter) setDecay(decayMs, sampleRate float64) {
	m.weight = math.Pow(0.25, 1/(sampleRate*decayMs*0.001))
}

// update folds the peak of a block of frames into the meter.
func (m *peakMeter) update(peak float64, frames int) {
	cur := math.Float64frombits(m.bits.Load())

	next := peak
	if peak <= cur {
		w := math.Pow(m.weight, float64(frames))
		next = cur*w + peak*(1-w)
	}

	m.bits.Store(math.Float64bits(next))
}

func (m *peakMeter) level() float64 {
	return math.Float64frombits(m.bits.Load())
}

func (m *peakMeter) reset() {
	m.bits.Store(0)
}
