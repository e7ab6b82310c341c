package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an upstream reports that the requested
	// resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCancelled is returned when the caller's context was cancelled or its
	// deadline passed while a request was in flight.
	ErrCancelled = errors.New("request cancelled")
)

// TransportError reports a failed exchange with an upstream service: the
// connection failed, the response had an unexpected status or the body could
// not be decoded.
type TransportError struct {
	Service    string
	Op         string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	var te *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &te):
		return "transport_error"
	default:
		return "error"
	}
}
