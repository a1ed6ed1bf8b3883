package console

import "github.com/sirupsen/logrus"

// Diagnostics counts samples replaced with silence because they were not
// finite.
type Diagnostics struct {
	SanitizedInput  uint64
	SanitizedWet    uint64
	SanitizedOutput uint64
}

// Total returns the sum of all counters.
func (d Diagnostics) Total() uint64 {
	return d.SanitizedInput + d.SanitizedWet + d.SanitizedOutput
}

// Diagnostics returns the sanitize counters since construction.
func (p *Processor) Diagnostics() Diagnostics {
	return Diagnostics{
		SanitizedInput:  p.sanitizedInput.Load(),
		SanitizedWet:    p.sanitizedWet.Load(),
		SanitizedOutput: p.sanitizedOutput.Load(),
	}
}

// LogDiagnostics logs a warning if samples were sanitized since the previous
// call and reports how many. A nil logger uses the processor's logger. Call
// it from a control goroutine, never from the audio callback.
func (p *Processor) LogDiagnostics(logger logrus.FieldLogger) uint64 {
	if logger == nil {
		logger = p.logger
	}

	d := p.Diagnostics()
	total := d.Total()

	delta := total - p.reported.Swap(total)
	if delta == 0 {
		return 0
	}

	logger.WithFields(logrus.Fields{
		"new":    delta,
		"input":  d.SanitizedInput,
		"wet":    d.SanitizedWet,
		"output": d.SanitizedOutput,
	}).Warn("console replaced non-finite samples with silence")

	return delta
}
