package postgres

import (
	"errors"
	"fmt"

	"fieldops/internal/store"

	"github.com/lib/pq"
)

// SQLSTATE codes the store reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeInsufficientPrivs    = "42501"
)

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// conflictError maps errors raised by a concurrent writer to store.ErrConflict.
func conflictError(err error) error {
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// deleteError maps a refused DELETE to store.ErrDeleteRejected.
func deleteError(err error) error {
	switch sqlState(err) {
	case codeInsufficientPrivs, codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrDeleteRejected, err)
	}
	return err
}
