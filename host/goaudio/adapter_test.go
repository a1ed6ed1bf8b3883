package goaudio

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-console/dsp/console"
	"github.com/cwbudde/algo-console/internal/testutil"
	"github.com/go-audio/audio"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newProcessor(t *testing.T, opts ...console.Option) *console.Processor {
	t.Helper()

	logger, _ := logtest.NewNullLogger()

	p, err := console.New(48000, append([]console.Option{console.WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("console.New() error = %v", err)
	}

	return p
}

func interleave(channels ...[]float64) []float64 {
	out := make([]float64, 0, len(channels)*len(channels[0]))
	for i := range channels[0] {
		for _, ch := range channels {
			out = append(out, ch[i])
		}
	}

	return out
}

func TestProcessFloatMatchesPlanar(t *testing.T) {
	left := testutil.DeterministicNoise(1, 0.8, 1000)
	right := testutil.DeterministicSine(440, 48000, 0.6, 1000)

	opts := []console.Option{
		console.WithParameter(console.ParamCoefficient, 0.4),
		console.WithParameter(console.ParamPush, 0.5),
	}

	ref := newProcessor(t, opts...)
	planar := testutil.Planar(left, right)
	ref.Process(planar)

	a, err := New(newProcessor(t, opts...), 128)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   interleave(left, right),
	}

	if err := a.ProcessFloat(buf); err != nil {
		t.Fatalf("ProcessFloat() error = %v", err)
	}

	// Slicing at 128 frames changes the vector tail handling, hence the
	// tolerance.
	testutil.RequireSliceNearlyEqual(t, buf.Data, interleave(planar...), 1e-12)
}

func TestProcessIntRoundTrip(t *testing.T) {
	a, err := New(newProcessor(t, console.WithChannels(1)), 64)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := []int{0, 1000, -1000, 32767, -32768, 12345}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 48000},
		Data:           append([]int(nil), in...),
		SourceBitDepth: 16,
	}

	if err := a.Process(buf); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i := range in {
		if buf.Data[i] != in[i] {
			t.Fatalf("sample %d: neutral console changed %d to %d", i, in[i], buf.Data[i])
		}
	}

	if a.Clipped() != 0 {
		t.Fatalf("Clipped() = %d, want 0", a.Clipped())
	}
}

func TestProcessIntClamps(t *testing.T) {
	a, err := New(newProcessor(t,
		console.WithChannels(1),
		console.WithParameter(console.ParamCoefficient, 0.5),
		console.WithParameter(console.ParamOutputGain, 12),
	), 64)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1},
		Data:   []int{30000, -30000, 0},
	}

	if err := a.ProcessInt(buf); err != nil {
		t.Fatalf("ProcessInt() error = %v", err)
	}

	if buf.Data[0] != 32767 || buf.Data[1] != -32768 || buf.Data[2] != 0 {
		t.Fatalf("clamped data = %v", buf.Data)
	}

	if a.Clipped() != 2 {
		t.Fatalf("Clipped() = %d, want 2", a.Clipped())
	}
}

func TestProcessInt24Bit(t *testing.T) {
	a, err := New(newProcessor(t, console.WithChannels(1), console.WithParameter(console.ParamCoefficient, 0.3)), 16)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const fullScale = 1 << 23

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1},
		Data:           []int{fullScale / 2},
		SourceBitDepth: 24,
	}

	if err := a.ProcessInt(buf); err != nil {
		t.Fatalf("ProcessInt() error = %v", err)
	}

	want := int(math.Round(0.6 * fullScale))
	if buf.Data[0] != want {
		t.Fatalf("24-bit sample = %d, want %d", buf.Data[0], want)
	}
}

func TestFormatErrors(t *testing.T) {
	a, err := New(newProcessor(t), 32)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cases := []struct {
		name string
		buf  audio.Buffer
		want error
	}{
		{"no format", &audio.FloatBuffer{Data: []float64{0, 0}}, ErrFormat},
		{"mono into stereo", &audio.FloatBuffer{Format: &audio.Format{NumChannels: 1}, Data: []float64{0}}, ErrChannels},
		{"rate", &audio.FloatBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: 44100}, Data: []float64{0, 0}}, ErrSampleRate},
		{"ragged", &audio.FloatBuffer{Format: &audio.Format{NumChannels: 2}, Data: []float64{0, 0, 0}}, ErrFormat},
		{"bit depth", &audio.IntBuffer{Format: &audio.Format{NumChannels: 2}, Data: []int{0, 0}, SourceBitDepth: 4}, ErrFormat},
		{"unsupported", &audio.Float32Buffer{Format: &audio.Format{NumChannels: 2}, Data: []float32{0, 0}}, ErrFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := a.Process(tc.buf); !errors.Is(err, tc.want) {
				t.Fatalf("Process() error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := New(nil, 10); err == nil {
		t.Fatal("New(nil) should fail")
	}

	if _, err := New(newProcessor(t), 0); err == nil {
		t.Fatal("New(p, 0) should fail")
	}
}

func TestProcessFloatDoesNotAllocate(t *testing.T) {
	a, err := New(newProcessor(t, console.WithParameter(console.ParamCoefficient, 0.2)), 256)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   testutil.DeterministicNoise(3, 0.5, 2*1000),
	}

	allocs := testing.AllocsPerRun(20, func() {
		if err := a.ProcessFloat(buf); err != nil {
			t.Fatal(err)
		}
	})

	if allocs != 0 {
		t.Fatalf("ProcessFloat allocated %.1f times per run", allocs)
	}
}
