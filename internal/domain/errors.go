// Package domain contains domain models and business logic errors.
package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when trying to create a resource that already exists.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidArgument is returned when an invalid argument is provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCapacityExceeded is returned when a debit would drive a host's
	// remaining capacity below zero. This indicates a caller ordering bug,
	// not a normal scheduling outcome, and aborts the placement run.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnknownCategory is returned when a VM label is not part of the
	// trained vocabulary.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrPredictorUnavailable is returned when no prediction artifact is loaded.
	ErrPredictorUnavailable = errors.New("predictor unavailable")

	// ErrUnavailable is returned when a service or resource is unavailable.
	ErrUnavailable = errors.New("service unavailable")
)
