package catalog

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates an entity, photo or stored file does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an entity with the same id already exists
	ErrConflict = errors.New("already exists")

	// ErrInvalidParent indicates a referenced parent entity does not exist
	ErrInvalidParent = errors.New("invalid parent")

	// ErrIDMismatch indicates a request body id disagrees with the addressed id
	ErrIDMismatch = errors.New("id mismatch")

	// ErrInvalidContentType indicates an upload that is not an image
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidInput indicates a missing or oversized field
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooLarge indicates an upload over the configured size limit
	ErrTooLarge = errors.New("upload too large")

	// ErrStorage indicates an unclassified failure of the underlying store
	ErrStorage = errors.New("storage failure")
)

// EntityError represents an error related to a catalog entity operation
type EntityError struct {
	Entity EntityKind
	ID     string
	Op     string
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation %s failed for %s: %v", e.Entity, e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError represents a failure reported by a Store or BlobStore backend.
// It matches ErrStorage with errors.Is.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed on backend %s: %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err as a StorageError unless it is nil or already
// carries one of the catalog sentinels.
func NewStorageError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// IsClassified reports whether err carries one of the catalog error sentinels.
func IsClassified(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrConflict, ErrInvalidParent, ErrIDMismatch,
		ErrInvalidContentType, ErrInvalidInput, ErrTooLarge, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
