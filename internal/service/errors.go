// Package service holds the catalog's domain rules on top of the store: SKU
// pre-checks, price derivation, status toggles, auth and the read cache.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password so callers cannot tell which one failed.
var ErrInvalidCredentials = errors.New("service: invalid credentials")

// ValidationError is a rule failure caused by the caller's input.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func invalidErr(err error) error {
	return &ValidationError{Message: err.Error(), Err: err}
}

// ConflictError reports a uniqueness violation. Err is the store sentinel.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return e.Err }

func skuConflict(sku string, err error) error {
	return &ConflictError{Message: "SKU must be unique: " + sku, Err: err}
}
