package hci

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrNoInterface        = errors.New("no hci interface identifier is set")
	ErrInvalidConfig      = errors.New("invalid hci configuration")
	ErrToolNotAvailable   = errors.New("hcitool not available")
	ErrInvalidResponse    = errors.New("invalid hcitool response")
	ErrControllerCrashed  = errors.New("hci controller did not respond, transport restarted")
	ErrProbeTimeout       = errors.New("device probe timed out")
	ErrRecoveryInProgress = errors.New("controller recovery already in progress")

	// Fatal errors. The caller must not continue after receiving one of these.
	ErrProtocolCorruption = errors.New("hci response violates the decoding contract")
	ErrRecoveryFailed     = errors.New("hci device did not reattach after transport restart")
)

// ProtocolError describes a response that could not be decoded safely.
// It always unwraps to ErrProtocolCorruption.
type ProtocolError struct {
	Reason   string
	Raw      string
	Response *Response // nil if decoding stopped before both sections were built
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %s", ErrProtocolCorruption, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocolCorruption
}

// IsFatal reports whether err signals payload corruption or a failed
// recovery, both of which should end the process at its outermost boundary.
func IsFatal(err error) bool {
	return errors.Is(err, ErrProtocolCorruption) || errors.Is(err, ErrRecoveryFailed)
}
