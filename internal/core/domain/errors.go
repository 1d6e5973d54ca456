package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFoundOrUnauthorized is returned when a row is missing or owned by
	// another user. The two cases are deliberately indistinguishable.
	ErrNotFoundOrUnauthorized = errors.New("resource not found")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrUsernameTaken          = errors.New("username already exists")
	ErrInvalidCredentials     = errors.New("invalid username or password")
)

type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStorageUnavailable, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

var ErrCacheMiss = errors.New("cache miss")
