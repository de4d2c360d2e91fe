package food_analysis

import (
	"errors"
	"fmt"
)

// ErrNotFood is returned when the presence check explicitly classifies the
// image as containing no food or drink. It is the only error Analyze returns.
var ErrNotFood = errors.New("NOT_FOOD")

// MalformedResponseError means the nutrition payload could not be parsed or
// was missing required fields.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed nutrition response: %s", e.Reason)
}

// InferenceUnavailableError wraps a transport, timeout or quota failure of
// the inference endpoint during a given stage.
type InferenceUnavailableError struct {
	Stage State
	Err   error
}

func (e *InferenceUnavailableError) Error() string {
	return fmt.Sprintf("inference unavailable during %s: %v", e.Stage, e.Err)
}

func (e *InferenceUnavailableError) Unwrap() error {
	return e.Err
}
