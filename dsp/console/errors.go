package console

import "errors"

var (
	// ErrUnknownParameter is returned for parameter ids or keys that do not
	// exist.
	ErrUnknownParameter = errors.New("console: unknown parameter")

	// ErrInvalidValue is returned when a control-path value is not finite.
	ErrInvalidValue = errors.New("console: invalid parameter value")
)
