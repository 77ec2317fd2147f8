package common

import "errors"

// Error kinds shared by every analysis entry point. Call sites wrap them with
// fmt.Errorf("...: %w", ...) so callers can test with errors.Is.
var (
	// ErrInsufficientData means not even one full segment or window fits in the input.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrChannelLengthMismatch means multi-channel inputs differ in length.
	ErrChannelLengthMismatch = errors.New("channel length mismatch")

	// ErrInvalidParameter covers non-positive lengths, rates and counts and
	// thresholds outside [0,1].
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateNull marks a surrogate null too small for a sample standard
	// deviation. Significance results carry it as a flag, see stats.Significance.
	ErrDegenerateNull = errors.New("degenerate null distribution")
)
