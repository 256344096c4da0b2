package clients

import (
	"fmt"
)

// APIError is any failed backend call: transport failure, non-2xx status or
// an envelope with success=false. Message is meant for the operator.
type APIError struct {
	Op      string
	Status  int // zero when no response arrived
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// clientError reports whether the backend rejected the request itself, as
// opposed to being unreachable or failing.
func (e *APIError) clientError() bool {
	return e.Status >= 400 && e.Status < 500
}
