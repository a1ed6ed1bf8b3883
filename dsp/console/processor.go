package console

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-console/dsp/core"
	"github.com/cwbudde/algo-console/dsp/smoothing"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
)

// Processor runs the console chain over blocks of planar audio.
//
// Process, ProcessInPlace, ProcessEvents, Reset and SetSampleRate must be
// called from a single goroutine. SetParameter, SetState, State, meter
// accessors and Diagnostics may be called from any goroutine.
type Processor struct {
	sampleRate   float64
	blockSize    int
	channels     int
	meterDecayMs float64
	logger       logrus.FieldLogger

	targets   targets
	smoothers [NumParams]*smoothing.Smoother

	// lanes hold the resolved per-frame value of every parameter for the
	// current chunk. Gain lanes are converted to linear in place.
	lanes [NumParams][]float64
	wet   []float64
	mono  [1][]float64

	inMeter  peakMeter
	outMeter peakMeter

	sanitizedInput  atomic.Uint64
	sanitizedWet    atomic.Uint64
	sanitizedOutput atomic.Uint64
	reported        atomic.Uint64
}

// New creates a console processor. All scratch memory is allocated here.
func New(sampleRate float64, opts ...Option) (*Processor, error) {
	if !core.ValidSampleRate(sampleRate) {
		return nil, fmt.Errorf("console sample rate must be in [%g, %g] and finite: %f",
			core.MinSampleRate, core.MaxSampleRate, sampleRate)
	}

	cfg := defaultConfig(sampleRate)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	p := &Processor{
		sampleRate:   cfg.SampleRate,
		blockSize:    cfg.BlockSize,
		channels:     cfg.channels,
		meterDecayMs: cfg.meterDecayMs,
		logger:       cfg.logger,
		wet:          make([]float64, cfg.BlockSize),
	}

	for id := ParamID(0); id < NumParams; id++ {
		s, err := smoothing.New(cfg.styles[id], cfg.smoothingMs[id], cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("console %s: %w", id, err)
		}

		s.Reset(cfg.initial[id])
		p.smoothers[id] = s
		p.targets.store(id, cfg.initial[id])
		p.lanes[id] = make([]float64, cfg.BlockSize)
	}

	p.inMeter.setDecay(p.meterDecayMs, p.sampleRate)
	p.outMeter.setDecay(p.meterDecayMs, p.sampleRate)

	p.logger.WithFields(logrus.Fields{
		"sample_rate": p.sampleRate,
		"block_size":  p.blockSize,
		"channels":    p.channels,
	}).Debug("console processor created")

	return p, nil
}

// SetSampleRate updates the sample rate. Smoothing trajectories continue from
// their current values.
func (p *Processor) SetSampleRate(sampleRate float64) error {
	if !core.ValidSampleRate(sampleRate) {
		return fmt.Errorf("console sample rate must be in [%g, %g] and finite: %f",
			core.MinSampleRate, core.MaxSampleRate, sampleRate)
	}

	for id := ParamID(0); id < NumParams; id++ {
		err := p.smoothers[id].SetSampleRate(sampleRate)
		if err != nil {
			return fmt.Errorf("console %s: %w", id, err)
		}
	}

	p.sampleRate = sampleRate
	p.inMeter.setDecay(p.meterDecayMs, sampleRate)
	p.outMeter.setDecay(p.meterDecayMs, sampleRate)

	p.logger.WithField("sample_rate", sampleRate).Debug("console sample rate changed")

	return nil
}

// SetParameter sets the target of id, clamped to its range, and returns the
// stored value. NaN resets the parameter to its default. Unknown ids are
// ignored and return NaN.
func (p *Processor) SetParameter(id ParamID, value float64) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	v := specs[id].Clamp(value)
	p.targets.store(id, v)

	return v
}

// SetParameterByKey sets a parameter by its state key with the same clamping
// as SetParameter. Only an unknown key is an error.
func (p *Processor) SetParameterByKey(key string, value float64) error {
	s, err := Lookup(key)
	if err != nil {
		return err
	}

	p.SetParameter(s.ID, value)

	return nil
}

// Parameter returns the target of id.
func (p *Processor) Parameter(id ParamID) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	return p.targets.load(id)
}

// Smoothed returns the current smoothed value of id. It reads audio-goroutine
// state and must only be called from that goroutine.
func (p *Processor) Smoothed(id ParamID) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	return p.smoothers[id].Current()
}

// Reset jumps every smoother to its target and clears the meters.
func (p *Processor) Reset() {
	for id := ParamID(0); id < NumParams; id++ {
		p.smoothers[id].Reset(p.targets.load(id))
	}

	p.inMeter.reset()
	p.outMeter.reset()
}

// Process runs the console over planar channels in place. The frame count is
// the length of the shortest channel. Blocks longer than BlockSize are
// processed in chunks; nothing is allocated.
func (p *Processor) Process(channels [][]float64) {
	n := frameCount(channels)
	if n == 0 {
		return
	}

	p.process(channels, 0, n)
}

// ProcessInPlace runs the console over a single mono buffer.
func (p *Processor) ProcessInPlace(buf []float64) {
	p.mono[0] = buf
	p.Process(p.mono[:])
	p.mono[0] = nil
}

// Event is a parameter change at a frame offset within a block.
type Event struct {
	Offset int
	ID     ParamID
	Value  float64
}

// ProcessEvents runs the console with sample-accurate parameter changes. The
// block is split at each event offset and the event is applied before the
// frames that follow it. Events should be sorted by offset; an event whose
// offset lies behind the current position applies at the current position.
func (p *Processor) ProcessEvents(channels [][]float64, events []Event) {
	n := frameCount(channels)
	pos := 0

	for _, ev := range events {
		at := min(max(ev.Offset, pos), n)
		if at > pos {
			p.process(channels, pos, at)
			pos = at
		}

		p.SetParameter(ev.ID, ev.Value)
	}

	if pos < n {
		p.process(channels, pos, n)
	}
}

func (p *Processor) process(channels [][]float64, start, end int) {
	for off := start; off < end; off += p.blockSize {
		m := min(p.blockSize, end-off)
		p.resolve(m)

		inPeak, outPeak := 0.0, 0.0

		for _, ch := range channels {
			in, out := p.processChannel(ch[off:off+m], m)
			inPeak = max(inPeak, in)
			outPeak = max(outPeak, out)
		}

		p.inMeter.update(inPeak, m)
		p.outMeter.update(outPeak, m)
	}
}

// resolve publishes the latest targets to the smoothers and fills the lanes
// with m frames of smoothed values.
func (p *Processor) resolve(m int) {
	for id := ParamID(0); id < NumParams; id++ {
		s := p.smoothers[id]
		s.SetTarget(p.targets.load(id))
		lane := p.lanes[id][:m]

		if !s.IsSmoothing() {
			fill(lane, s.Current())
			continue
		}

		for i := range lane {
			lane[i] = s.Next()
		}
	}

	p.convertGain(ParamInputGain, m)
	p.convertGain(ParamOutputGain, m)
}

func (p *Processor) convertGain(id ParamID, m int) {
	lane := p.lanes[id][:m]

	if !p.smoothers[id].IsSmoothing() && lane[0] == lane[m-1] {
		fill(lane, dbToGain(lane[0]))
		return
	}

	for i, db := range lane {
		lane[i] = dbToGain(db)
	}
}

// processChannel runs one chunk of one channel and returns its input and
// output peaks. The input peak is taken after the input gain stage.
func (p *Processor) processChannel(buf []float64, m int) (float64, float64) {
	inGain := p.lanes[ParamInputGain][:m]
	push := p.lanes[ParamPush][:m]
	mult := p.lanes[ParamMultiplier][:m]
	coeff := p.lanes[ParamCoefficient][:m]
	skew := p.lanes[ParamSkew][:m]
	outGain := p.lanes[ParamOutputGain][:m]
	mix := p.lanes[ParamDryWet][:m]
	wet := p.wet[:m]
	inPeak := 0.0

	for i, x := range buf {
		dry, bad := core.Sanitize(x)
		if bad {
			buf[i] = 0
			p.sanitizedInput.Add(1)
		}

		inPeak = max(inPeak, math.Abs(InputGain(dry, inGain[i])))

		y := Chain(dry, Settings{
			InputGain:   inGain[i],
			Push:        push[i],
			Multiplier:  mult[i],
			Coefficient: coeff[i],
			Skew:        skew[i],
			OutputGain:  outGain[i],
		})

		y, bad = core.Sanitize(y)
		if bad {
			p.sanitizedWet.Add(1)
		}

		wet[i] = y
	}

	vecmath.MulAddBlock(buf, wet, mix, buf)

	for i, y := range buf {
		if !core.IsFinite(y) {
			buf[i] = 0
			p.sanitizedOutput.Add(1)
		}
	}

	return inPeak, vecmath.MaxAbs(buf)
}

// InputLevel returns the input peak meter as linear amplitude.
func (p *Processor) InputLevel() float64 { return p.inMeter.level() }

// OutputLevel returns the output peak meter as linear amplitude.
func (p *Processor) OutputLevel() float64 { return p.outMeter.level() }

// InputLevelDB returns the input peak meter in dBFS.
func (p *Processor) InputLevelDB() float64 { return core.LinearToDB(p.inMeter.level()) }

// OutputLevelDB returns the output peak meter in dBFS.
func (p *Processor) OutputLevelDB() float64 { return core.LinearToDB(p.outMeter.level()) }

// SampleRate returns the sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// BlockSize returns the internal chunk size.
func (p *Processor) BlockSize() int { return p.blockSize }

// Channels returns the declared channel layout.
func (p *Processor) Channels() int { return p.channels }

func frameCount(channels [][]float64) int {
	if len(channels) == 0 {
		return 0
	}

	n := len(channels[0])
	for _, ch := range channels[1:] {
		n = min(n, len(ch))
	}

	return n
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
