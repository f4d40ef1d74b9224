package intake

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when an upload carries no file parts.
var ErrNoFiles = errors.New("no files provided")

// StorageError reports the first object that could not be stored. Objects
// stored before it are left in place.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("intake: store %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
