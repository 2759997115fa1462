package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the analysis service could not be reached.
	ErrTransport = errors.New("upstream transport failure")
	// ErrDecode is returned when a successful response body is not a JSON object.
	ErrDecode = errors.New("upstream response could not be decoded")
	// ErrUpstreamStatus is matched by every *StatusError.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	// ErrTimeout is returned when the call exceeded the configured timeout.
	ErrTimeout = errors.New("upstream call timed out")
)

// StatusError carries a non-2xx answer from the analysis service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrUpstreamStatus) match any status error.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}
