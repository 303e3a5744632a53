package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict means a transaction's read set changed before commit.
	// The caller should retry from the read step.
	ErrConflict = errors.New("store: transaction conflict")
	// ErrDeleteRejected means the store refused a hard delete because of
	// permissions or referential constraints.
	ErrDeleteRejected = errors.New("store: delete rejected")
)

// TransientStoreError is returned when a transaction could not commit after
// retries. The operation may succeed if the caller retries it.
type TransientStoreError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("%s: transient store failure after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// InvalidStatusError is returned for a status outside the defined set.
type InvalidStatusError struct {
	Status JobStatus
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid job status %q", string(e.Status))
}

// StoreWriteError wraps a write the store rejected. Nothing was applied.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: store write failed: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// NotFoundError is returned when the targeted record does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
