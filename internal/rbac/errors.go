package rbac

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when the caller's identity is missing.
var ErrUnauthenticated = errors.New("rbac: caller identity missing")

// Evaluation stages reported by InternalError.
const (
	StageUserLookup  = "user lookup"
	StageAssignments = "list role assignments"
	StageRoles       = "fetch roles"
)

// InternalError wraps an upstream failure that aborted an evaluation.
type InternalError struct {
	Stage        string
	EvaluationID string
	Err          error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("rbac: %s: %v", e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
