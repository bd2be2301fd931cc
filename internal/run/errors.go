package run

import "errors"

var (
	// ErrNotFound is returned when no run matches the requested identifier.
	ErrNotFound = errors.New("run not found")

	// ErrActiveRunExists is returned when a new run would violate folder
	// exclusivity: another run for the same folder has not reached a terminal
	// status yet.
	ErrActiveRunExists = errors.New("an active run already exists for this folder")

	// ErrRevisionConflict is returned when an update loses the optimistic
	// concurrency race against another writer.
	ErrRevisionConflict = errors.New("run was modified by another writer")

	// ErrInvalidTransition is returned when an update would move a run
	// backward along its lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
