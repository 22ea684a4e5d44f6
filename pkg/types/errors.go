package types

import "errors"

// Error kinds per spec §7. Detector failures are recovered locally and
// converted to warnings; only InputTooLarge/InvalidInput/MalformedLabelSet
// are returned to a caller as Go errors.
var (
	ErrInputTooLarge      = errors.New("input exceeds configured maximum size")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDetectorFailed     = errors.New("detector failed")
	ErrAllDetectorsFailed = errors.New("all detectors failed")
	ErrValidatorRejected  = errors.New("validator rejected candidate")
	ErrMalformedLabelSet  = errors.New("malformed label set")
	ErrInvalidSpan        = errors.New("invalid span")
)
