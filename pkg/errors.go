package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("store unavailable")
)

// PersistenceError wraps a failed durable write. It never reverts local state.
type PersistenceError struct {
	UserID string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s for user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InferenceErrorKind classifies failures of the inference endpoint.
type InferenceErrorKind string

const (
	InferenceQuotaExceeded InferenceErrorKind = "quota_exceeded"
	InferenceNetwork       InferenceErrorKind = "network_error"
	InferenceTimeout       InferenceErrorKind = "timeout"
	InferenceMalformed     InferenceErrorKind = "malformed_response"
	InferenceNotConfigured InferenceErrorKind = "not_configured"
)

// InferenceError is returned by Generator implementations.
type InferenceError struct {
	Kind InferenceErrorKind
	Err  error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inference %s", e.Kind)
	}
	return fmt.Sprintf("inference %s: %v", e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// NewInferenceError creates a new InferenceError
func NewInferenceError(kind InferenceErrorKind, err error) *InferenceError {
	return &InferenceError{Kind: kind, Err: err}
}
