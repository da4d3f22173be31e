package dispatch

import "errors"

var (
	// ErrInvalidInput is returned when a request carries no deliverable meals.
	ErrInvalidInput = errors.New("dispatch: invalid input")
	// ErrRetriesExhausted is returned when a move kept conflicting until the
	// retry ceiling was reached.
	ErrRetriesExhausted = errors.New("dispatch: conflict retries exhausted")
	// ErrNilParameter is returned by NewOrchestrator on missing collaborators.
	ErrNilParameter = errors.New("dispatch: nil parameter provided to NewOrchestrator")

	errTripInterrupted = errors.New("trip interrupted")
)
