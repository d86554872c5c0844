package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("card not found")
	ErrMissingResource = errors.New("this item was added manually, cannot be synced")
	ErrExtractionEmpty = errors.New("expected content not found")
	ErrNotUpstream     = errors.New("item is no longer present upstream")
	ErrUnknownSource   = errors.New("no sync source for category")
)

// FetchError is a non-success HTTP status from an upstream page.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
}

// NetworkError is a transport-level failure reaching an upstream page.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PersistenceError is a rejected gateway operation.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s card %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsFetchFailure reports whether err came from reaching an upstream page.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	var ne *NetworkError
	return errors.As(err, &fe) || errors.As(err, &ne)
}
