package session

import "errors"

var (
	// ErrEmptyInput is returned for a blank city, chat message or place name.
	// Nothing is sent to the service.
	ErrEmptyInput = errors.New("empty input")

	// ErrConcurrentOperation is returned when the same kind of request is
	// already in flight. The call is a no-op.
	ErrConcurrentOperation = errors.New("operation already in progress")

	// ErrNoGuide is returned when a chat turn is sent before any guide exists.
	ErrNoGuide = errors.New("no guide loaded")
)

// IsCallerError reports whether err is a caller-contract rejection, as
// opposed to a failure talking to the service.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrConcurrentOperation) ||
		errors.Is(err, ErrNoGuide)
}
