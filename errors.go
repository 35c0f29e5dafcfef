package aucommon

import "errors"

var (
	// ErrInvalidConfig is returned when a session is opened with options
	// that cannot be honored (bad sample rate, channel count, thresholds).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFormatMismatch is returned when a fed block does not match the
	// format the session was opened with.
	ErrFormatMismatch = errors.New("format mismatch")

	// ErrInsufficientData is returned by Finish when the session has not
	// seen enough audio to measure anything.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidState is returned when an operation is called on a session
	// in the wrong state (feeding a finished session, finishing twice).
	ErrInvalidState = errors.New("invalid session state")
)
