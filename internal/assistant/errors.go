package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication matches every *AuthenticationError via errors.Is.
	ErrAuthentication = errors.New("assistant: authentication failed")

	// ErrServiceRequired is returned when an Orchestrator is built without a BookingService.
	ErrServiceRequired = errors.New("assistant: booking service is required")
)

// AuthenticationError is raised when login yields no token or a protected
// operation runs before a successful Authenticate.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "assistant: " + e.Reason
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// SlotTimeError reports a slot whose datetime could not be parsed.
type SlotTimeError struct {
	SlotID string
	Value  string
	Err    error
}

func (e *SlotTimeError) Error() string {
	if e.SlotID == "" {
		return fmt.Sprintf("assistant: invalid slot datetime %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("assistant: slot %s has invalid datetime %q: %v", e.SlotID, e.Value, e.Err)
}

func (e *SlotTimeError) Unwrap() error { return e.Err }
