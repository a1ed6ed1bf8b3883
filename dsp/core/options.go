package core

const (
	// MinSampleRate and MaxSampleRate bound the rates a processor accepts.
	MinSampleRate = 8000.0
	MaxSampleRate = 384000.0

	// MaxBlockSize bounds the preallocated scratch of a processor.
	MaxBlockSize = 1 << 16
)

// ProcessorConfig defines common DSP processing settings.
//
// BlockSize is the largest chunk a processor handles in one pass. Longer host
// blocks are split into BlockSize chunks, so it sizes scratch memory rather
// than limiting the caller.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns defaults suited to real-time hosts.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
	}
}

// WithSampleRate sets the processing sample rate. Rates outside
// [MinSampleRate, MaxSampleRate] are ignored.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if ValidSampleRate(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size. Sizes outside
// [1, MaxBlockSize] are ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 && blockSize <= MaxBlockSize {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ValidSampleRate reports whether sampleRate is finite and inside the
// supported range.
func ValidSampleRate(sampleRate float64) bool {
	return IsFinite(sampleRate) && sampleRate >= MinSampleRate && sampleRate <= MaxSampleRate
}
