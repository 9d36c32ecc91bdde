package model

import "fmt"

// ValidationError reports malformed caller input (bad address, out-of-range
// percentage, non-positive amount). The engine raises it before touching any
// chain state, so the caller can correct and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedVersionError reports a protocol version outside the three known
// generations.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported protocol version: %q", e.Version)
}

// UnsupportedFeeError reports a fee tier with no known tick spacing.
type UnsupportedFeeError struct {
	Fee uint32
}

func (e *UnsupportedFeeError) Error() string {
	return fmt.Sprintf("unsupported fee tier: %d", e.Fee)
}

// MissingParameterError reports a required field absent from a
// singleton-generation operation. Raised before any encoding is attempted.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Parameter)
}
