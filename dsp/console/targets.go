package console

import (
	"math"
	"sync/atomic"
)

// targets holds one lock-free slot per parameter. Writers on any goroutine
// store clamped plain values; the audio goroutine loads them once per block.
type targets struct {
	bits [NumParams]atomic.Uint64
}

func (t *targets) store(id ParamID, v float64) {
	t.bits[id].Store(math.Float64bits(v))
}

func (t *targets) load(id ParamID) float64 {
	return math.Float64frombits(t.bits[id].Load())
}

func (t *targets) snapshot() [NumParams]float64 {
	var out [NumParams]float64
	for id := ParamID(0); id < NumParams; id++ {
		out[id] = t.load(id)
	}
	return out
}
