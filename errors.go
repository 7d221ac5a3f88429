package lumen

import "errors"

// Sentinel errors for the lumen package. Errors returned by Session
// operations wrap one of these, so callers can classify failures with
// errors.Is while the message carries the offending identifiers:
//
//	if errors.Is(err, lumen.ErrUnknownBuffer) { ... }
var (
	// ErrInitialization is returned by New when no compute engine can
	// be brought up. Fatal: the session is not constructed.
	ErrInitialization = errors.New("lumen: engine initialization failed")

	// ErrInvalidArgument is returned for out-of-range dimensions,
	// particle counts, iteration counts, and mismatched pixel buffers.
	ErrInvalidArgument = errors.New("lumen: invalid argument")

	// ErrAllocation is returned when the compute engine refuses to
	// create a buffer.
	ErrAllocation = errors.New("lumen: buffer allocation failed")

	// ErrCompute is returned when the compute engine signals failure
	// for a drawing, effect, or read-back call.
	ErrCompute = errors.New("lumen: compute operation failed")

	// ErrUnknownBuffer is returned for operations against a buffer id
	// the session is not tracking.
	ErrUnknownBuffer = errors.New("lumen: unknown buffer")
)
