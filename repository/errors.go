package repository

import "errors"

var (
	// ErrDuplicateSession signals a create for a session ID that already exists.
	ErrDuplicateSession = errors.New("session already exists")

	// ErrStorageUnavailable wraps failures reaching the persistence layer.
	// Callers may retry; the repository itself never does.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)
