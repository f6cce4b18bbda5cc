package model

import (
	"errors"
	"fmt"
)

// Rejection kinds surfaced by the admission controller and the attendance
// state machine. Callers match them with errors.Is (and errors.As for
// *InvalidTransitionError) to render an accurate message; none collapse into
// a generic failure.
var (
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrRegistrationNotFound is returned when the referenced registration
	// does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrDeadlinePassed is returned when registration is attempted at or
	// after the event's effective cutoff.
	ErrDeadlinePassed = errors.New("registration deadline has passed")

	// ErrAlreadyRegistered is returned when the account already holds an
	// active registration for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrEventFull is returned when the event has no remaining capacity.
	ErrEventFull = errors.New("event is full")

	// ErrTransientConflict signals storage-level contention. It is the only
	// kind eligible for a bounded automatic retry; everything else is a
	// policy rejection and must not be retried.
	ErrTransientConflict = errors.New("transient storage conflict")
)

// ForbiddenError is an authorization denial. It is a first-class result, not
// a fault: upstream code translates it into a visible forbidden outcome.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// ErrForbidden is the errors.Is target for any ForbiddenError.
var ErrForbidden = errors.New("forbidden")

// Is lets errors.Is(err, ErrForbidden) match any denial regardless of reason.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// InvalidTransitionError rejects a status change that is not in the
// transition table. Current carries the registration's present status so the
// caller can distinguish "already attended" from "cancelled".
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.Current, e.Requested)
}
