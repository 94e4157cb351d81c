package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySymptom     = errors.New("symptom is required")
	ErrInvalidRow       = errors.New("invalid seed row")
	ErrStoreUnavailable = errors.New("graph store unavailable")
)

// StoreError reports a connectivity, authentication or transaction failure
// against the graph store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
