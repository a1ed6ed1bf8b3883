// Package goaudio runs a console processor over interleaved go-audio buffers.
package goaudio

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-console/dsp/console"
	"github.com/go-audio/audio"
)

const defaultBitDepth = 16

var (
	// ErrFormat is returned for buffers without a usable PCM format.
	ErrFormat = errors.New("goaudio: buffer format")
	// ErrChannels is returned when a buffer's channel count differs from
	// the processor's.
	ErrChannels = errors.New("goaudio: channel count mismatch")
	// ErrSampleRate is returned when a buffer declares a different rate.
	ErrSampleRate = errors.New("goaudio: sample rate mismatch")
)

// Adapter de-interleaves go-audio buffers into preallocated planar scratch,
// runs the processor and interleaves the result back in place. Buffers longer
// than the scratch are processed in slices, so steady-state processing does
// not allocate.
type Adapter struct {
	proc    *console.Processor
	planar  [][]float64
	frames  int
	clipped atomic.Uint64
}

// New returns an adapter for p with scratch for maxFrames frames per slice.
func New(p *console.Processor, maxFrames int) (*Adapter, error) {
	if p == nil {
		return nil, errors.New("goaudio: nil processor")
	}

	if maxFrames < 1 {
		return nil, fmt.Errorf("goaudio: max frames must be >= 1: %d", maxFrames)
	}

	planar := make([][]float64, p.Channels())
	for i := range planar {
		planar[i] = make([]float64, maxFrames)
	}

	return &Adapter{proc: p, planar: planar, frames: maxFrames}, nil
}

// Processor returns the wrapped processor.
func (a *Adapter) Processor() *console.Processor { return a.proc }

// Clipped returns how many integer samples were clamped to the sample range.
func (a *Adapter) Clipped() uint64 { return a.clipped.Load() }

// Process dispatches on the buffer type.
func (a *Adapter) Process(buf audio.Buffer) error {
	switch b := buf.(type) {
	case *audio.FloatBuffer:
		return a.ProcessFloat(b)
	case *audio.IntBuffer:
		return a.ProcessInt(b)
	default:
		return fmt.Errorf("%w: unsupported buffer type %T", ErrFormat, buf)
	}
}

// ProcessFloat processes an interleaved float buffer in place.
func (a *Adapter) ProcessFloat(buf *audio.FloatBuffer) error {
	if buf == nil {
		return nil
	}

	channels, err := a.check(buf.PCMFormat(), len(buf.Data))
	if err != nil {
		return err
	}

	total := buf.NumFrames()

	for start := 0; start < total; start += a.frames {
		n := min(a.frames, total-start)
		data := buf.Data[start*channels : (start+n)*channels]

		for ch := range channels {
			dst := a.planar[ch][:n]
			for i := range dst {
				dst[i] = data[i*channels+ch]
			}
		}

		a.run(n)

		for ch := range channels {
			for i, v := range a.planar[ch][:n] {
				data[i*channels+ch] = v
			}
		}
	}

	return nil
}

// ProcessInt processes an interleaved integer buffer in place. Samples are
// scaled by the source bit depth (16 bits when unset) and results outside the
// integer range are clamped.
func (a *Adapter) ProcessInt(buf *audio.IntBuffer) error {
	if buf == nil {
		return nil
	}

	channels, err := a.check(buf.PCMFormat(), len(buf.Data))
	if err != nil {
		return err
	}

	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = defaultBitDepth
	}

	if bits < 8 || bits > 32 {
		return fmt.Errorf("%w: bit depth must be in [8, 32]: %d", ErrFormat, bits)
	}

	fullScale := float64(int64(1) << (bits - 1))
	lo, hi := -fullScale, fullScale-1
	total := buf.NumFrames()

	for start := 0; start < total; start += a.frames {
		n := min(a.frames, total-start)
		data := buf.Data[start*channels : (start+n)*channels]

		for ch := range channels {
			dst := a.planar[ch][:n]
			for i := range dst {
				dst[i] = float64(data[i*channels+ch]) / fullScale
			}
		}

		a.run(n)

		for ch := range channels {
			for i, v := range a.planar[ch][:n] {
				s := math.Round(v * fullScale)
				if s < lo || s > hi {
					s = math.Max(lo, math.Min(hi, s))
					a.clipped.Add(1)
				}

				data[i*channels+ch] = int(s)
			}
		}
	}

	return nil
}

func (a *Adapter) check(format *audio.Format, samples int) (int, error) {
	if format == nil {
		return 0, fmt.Errorf("%w: format is not defined", ErrFormat)
	}

	channels := format.NumChannels
	if channels != a.proc.Channels() {
		return 0, fmt.Errorf("%w: buffer has %d, processor expects %d", ErrChannels, channels, a.proc.Channels())
	}

	if format.SampleRate != 0 && float64(format.SampleRate) != a.proc.SampleRate() {
		return 0, fmt.Errorf("%w: buffer %d Hz, processor %g Hz", ErrSampleRate, format.SampleRate, a.proc.SampleRate())
	}

	if samples%channels != 0 {
		return 0, fmt.Errorf("%w: %d samples do not fill %d channels", ErrFormat, samples, channels)
	}

	return channels, nil
}

func (a *Adapter) run(n int) {
	for ch := range a.planar {
		a.planar[ch] = a.planar[ch][:n]
	}

	a.proc.Process(a.planar)

	for ch := range a.planar {
		a.planar[ch] = a.planar[ch][:a.frames]
	}
}
