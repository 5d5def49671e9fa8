package storage

import (
	"errors"
	"fmt"
)

// Storage error types.
var (
	ErrSizeLimitExceeded      = errors.New("declared size exceeds maximum object size")
	ErrChunkSizeExceeded      = errors.New("chunk exceeds maximum chunk size")
	ErrNotFound               = errors.New("object not found")
	ErrUnauthorized           = errors.New("caller is not the object owner")
	ErrAuthenticationRequired = errors.New("authentication required for private object")
)

// MissingChunkError reports the lowest chunk index absent during object
// reconstruction. Callers can resume uploading from Index instead of
// re-uploading the whole object.
type MissingChunkError struct {
	Index int
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing chunk at index %d", e.Index)
}
