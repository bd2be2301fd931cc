package docstore

import (
	"errors"

	"packwright/internal/services"
)

// IsNotFound reports whether the error means the referenced item is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}

// IsConflict reports whether the error means the operation lost to an
// existing item (duplicate name, concurrent writer).
func IsConflict(err error) bool {
	return errors.Is(err, services.ErrConflict)
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, services.ErrTransient)
}
