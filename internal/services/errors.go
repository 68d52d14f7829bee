// Package services defines the business logic for VanillaSoft webhook events.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrMapping is returned when a payload cannot be mapped onto a row, for
	// example when a list value cannot be re-encoded as JSON.
	ErrMapping = errors.New("map payload")

	// ErrPersist wraps any storage failure while writing a webhook row. The
	// underlying driver message is kept in the wrapped error text.
	ErrPersist = errors.New("persist webhook")
)
