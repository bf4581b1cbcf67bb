package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound is returned by Repository.Get when no record has the given ID.
	// It is a normal outcome and never wrapped in a StorageError.
	ErrNotFound = errors.New("dataset not found")

	// ErrInvalidDataset is returned when a dataset (or lookup) has no ID.
	ErrInvalidDataset = errors.New("dataset ID cannot be empty")

	// ErrReadOnly is returned by write operations on a read-only store.
	ErrReadOnly = errors.New("store is in read-only mode")

	// ErrStorageUnavailable matches every StorageError of KindUnavailable.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransactionFailed matches every StorageError of KindTransaction.
	ErrTransactionFailed = errors.New("transaction failed")
)

// ErrorKind classifies storage failures.
type ErrorKind int

const (
	// KindUnavailable: the medium cannot be opened or is closed
	// (disabled, locked by another process, newer schema on disk).
	KindUnavailable ErrorKind = iota + 1
	// KindTransaction: an operation failed after the medium was opened.
	KindTransaction
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// StorageError reports a failure of the underlying medium.
// Callers classify it with errors.Is(err, ErrStorageUnavailable) or
// errors.Is(err, ErrTransactionFailed).
type StorageError struct {
	Kind ErrorKind
	Op   string // e.g. "put", "open"
	ID   string // dataset ID, when the operation had one
	Err  error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage %s: %s", e.Kind, e.Op)
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageUnavailable:
		return e.Kind == KindUnavailable
	case ErrTransactionFailed:
		return e.Kind == KindTransaction
	}
	return false
}

// Unavailable builds a KindUnavailable StorageError.
func Unavailable(op string, err error) error {
	return &StorageError{Kind: KindUnavailable, Op: op, Err: err}
}

// TransactionFailed builds a KindTransaction StorageError.
func TransactionFailed(op, id string, err error) error {
	return &StorageError{Kind: KindTransaction, Op: op, ID: id, Err: err}
}
