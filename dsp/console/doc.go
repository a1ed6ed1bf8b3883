// Package console implements a console-coloration processor: a fixed chain of
// input gain, sine push, coefficient/skew waveshaping and output gain whose
// result is added back onto the unprocessed signal.
//
// Signal path per sample:
//
//	wet = OutputGain(Shape(Push(InputGain(dry))))
//	out = dry + wet*mix
//
// The sum is additive, not a crossfade: mix=0 returns the dry signal and
// mix=1 returns dry+wet.
//
// Parameters are written from any goroutine with [Processor.SetParameter] and
// picked up lock-free at the next block boundary. Each one is smoothed per
// frame on the audio goroutine. [Processor.Process] neither allocates nor
// blocks, and it replaces non-finite samples with silence instead of
// returning errors.
//
// Building with the fastmath tag swaps the per-sample dB-to-gain conversion
// for the fast exponential from algo-approx.
package console
