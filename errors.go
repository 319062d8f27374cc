package settle

import "errors"

// Errors returned by the public API. They can be checked with errors.Is.
var (
	// ErrNonPositiveWait is returned when the wait duration is zero or negative.
	ErrNonPositiveWait = errors.New("settle: wait must be positive")

	// ErrMaxWaitTooSmall is returned when a max wait is configured below the wait.
	ErrMaxWaitTooSmall = errors.New("settle: max wait must be >= wait")

	// ErrNilOperation is returned when no operation callback is supplied.
	ErrNilOperation = errors.New("settle: operation must not be nil")

	// ErrStopped is returned when Start() is called after the debouncer
	// has been stopped or its worker has crashed. Both states are terminal.
	ErrStopped = errors.New("settle: debouncer is stopped")
)
