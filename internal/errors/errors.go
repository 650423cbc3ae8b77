// Package errors provides consolidated error definitions for the project.
//
// This package defines:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Storage errors
	ErrObjectNotFound   = errors.New("object not found")
	ErrCorruptPartition = errors.New("partition object is corrupt")
	ErrStorageWrite     = errors.New("storage write failed")
	ErrStorageRead      = errors.New("storage read failed")

	// Query errors
	ErrQueryTimeout = errors.New("query did not complete within timeout")
	ErrQueryFailed  = errors.New("query engine reported failure")

	// Record errors
	ErrMalformedRecord    = errors.New("malformed record")
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidFormat = errors.New("invalid export format")

	// Ledger errors
	ErrLedgerAppend = errors.New("ledger append failed")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// IsNotFound returns true if err indicates an absent object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsFatal returns true if err must fail the whole invocation.
// Ledger and existing-partition read errors are non-fatal by design;
// everything that reaches the invocation result through this check is.
func IsFatal(err error) bool {
	return errors.Is(err, ErrQueryTimeout) ||
		errors.Is(err, ErrQueryFailed) ||
		errors.Is(err, ErrStorageWrite) ||
		errors.Is(err, ErrCorruptPartition)
}

// IsValidation returns true if err is a configuration validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidFormat)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}
