package domain

import (
	"errors"
	"fmt"

	"github.com/PabloGalante/goal-forge/internal/ledger"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrNotAuthenticated = errors.New("not signed in")
)

// ValidationError is the ledger's error type, shared so that every layer
// reports bad input the same way.
type ValidationError = ledger.ValidationError

// CapacityExceededError is returned when a device commit would push the
// invested effort past the estimate. Nothing was written.
type CapacityExceededError struct {
	GoalID    GoalID
	Invested  float64
	Estimated float64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("invested effort %g would exceed estimated effort %g", e.Invested, e.Estimated)
}

// RemoteRejection carries the message of a non-2xx backend response.
type RemoteRejection struct {
	Status  int
	Message string
}

func (e *RemoteRejection) Error() string {
	return e.Message
}

// TransportFailure wraps network and timeout errors talking to the backend.
type TransportFailure struct {
	Op  string
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("%s: could not reach the server", e.Op)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}
