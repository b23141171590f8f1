package synth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid generation request")
)

// ConversionError reports that a raw model response could not be normalized
// into a list of strings. It is the only error kind the bounded-retry helpers
// treat as recoverable; everything else propagates to the caller.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("yaml conversion failed: %s", e.Reason)
}

func conversionErrorf(format string, args ...any) *ConversionError {
	return &ConversionError{Reason: fmt.Sprintf(format, args...)}
}

// IsConversionError reports whether err is (or wraps) a ConversionError.
func IsConversionError(err error) bool {
	var convErr *ConversionError
	return errors.As(err, &convErr)
}
