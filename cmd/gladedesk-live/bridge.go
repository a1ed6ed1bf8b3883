package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-console/dsp/console"
)

var errQuit = errors.New("quit")

// bridge converts PortAudio's non-interleaved float32 buffers to the
// processor's float64 planar layout. It runs on the audio callback and never
// allocates.
type bridge struct {
	proc    *console.Processor
	scratch [][]float64
	planar  [][]float64
}

func newBridge(p *console.Processor, frames int) *bridge {
	b := &bridge{
		proc:    p,
		scratch: make([][]float64, p.Channels()),
		planar:  make([][]float64, p.Channels()),
	}

	for ch := range b.scratch {
		b.scratch[ch] = make([]float64, frames)
	}

	return b
}

// process reads in, runs the console and writes out. Missing input channels
// are treated as silence and extra ones are ignored. Hosts may deliver more
// frames than the scratch holds; those are processed in slices.
func (b *bridge) process(in, out [][]float32) {
	if len(out) == 0 {
		return
	}

	total := len(out[0])
	size := len(b.scratch[0])

	for start := 0; start < total; start += size {
		n := min(size, total-start)

		for ch := range b.scratch {
			dst := b.scratch[ch][:n]

			if ch < len(in) && len(in[ch]) >= start+n {
				for i, v := range in[ch][start : start+n] {
					dst[i] = float64(v)
				}
			} else {
				clear(dst)
			}

			b.planar[ch] = dst
		}

		b.proc.Process(b.planar)

		for ch := range out {
			src := b.planar[min(ch, len(b.planar)-1)]
			for i, v := range src {
				out[ch][start+i] = float32(v)
			}
		}
	}
}

// command applies one control line: "key value", "state", "list" or "quit".
func command(p *console.Processor, line string, w io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return errQuit
	case "state":
		_, err := p.State().WriteTo(w)
		return err
	case "list":
		for _, s := range console.Specs() {
			fmt.Fprintf(w, "%-12s %s\n", s.Key, s.Format(p.Parameter(s.ID)))
		}

		return nil
	}

	if len(fields) != 2 {
		return fmt.Errorf("expected \"key value\": %q", line)
	}

	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("value for %s: %w", fields[0], err)
	}

	return p.SetParameterByKey(strings.ToLower(fields[0]), value)
}
