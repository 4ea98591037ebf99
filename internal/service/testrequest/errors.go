package testrequest

import (
	"errors"
	"fmt"
	"strings"

	"covid-testing-server/internal/models"
)

var (
	// ErrInvalidID is returned when the ID is malformed or no request has it.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidState is matched by every error caused by the request not
	// being in the status the operation expects.
	ErrInvalidState = errors.New("invalid state")
	// ErrForbidden is returned when the actor's role may not run the operation.
	ErrForbidden = errors.New("operation not permitted for role")
	// ErrDuplicateRequest is returned when the patient already has a request in progress.
	ErrDuplicateRequest = errors.New("a request with the same phone number or email is already in progress")
)

// StateError reports a request found in an unexpected status.
type StateError struct {
	RequestID uint
	Current   models.RequestStatus
	Expected  models.RequestStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("test request %d is %s, expected %s", e.RequestID, e.Current, e.Expected)
}

// Is makes errors.Is(err, ErrInvalidState) true for every StateError.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ValidationError lists the payload constraints that were violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "constraint violation: " + strings.Join(e.Violations, ", ")
}
