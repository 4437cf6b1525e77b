package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout marks a request cancelled by its deadline.
var ErrTimeout = errors.New("request timed out")

// TransportError wraps failures to reach the backend at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("communication error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when the backend answered with
// something other than the structured JSON body, typically an HTML error
// page.
type MalformedResponseError struct {
	StatusCode  int
	ContentType string
	Snippet     string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	contentType := e.ContentType
	if contentType == "" {
		contentType = "none"
	}
	if e.Err != nil {
		return fmt.Sprintf("unexpected response shape (HTTP %d, Content-Type: %s): %v", e.StatusCode, contentType, e.Err)
	}
	return fmt.Sprintf("unexpected response shape (HTTP %d, Content-Type: %s)", e.StatusCode, contentType)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Failure classifies an error returned by Submit.
type Failure int

const (
	FailureTransport Failure = iota
	FailureTimeout
	FailureMalformed
)

func (f Failure) String() string {
	switch f {
	case FailureTimeout:
		return "timeout"
	case FailureMalformed:
		return "malformed"
	default:
		return "transport"
	}
}

// Classify maps a Submit error onto a Failure.
func Classify(err error) Failure {
	var malformed *MalformedResponseError
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &malformed):
		return FailureMalformed
	default:
		return FailureTransport
	}
}

func wrapTransport(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &TransportError{Err: err}
}
