/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"

	"github.com/suparena/itemstore/storagemodels"
)

// Common sentinel errors
var (
	// ErrValidation is returned when an item fails validation before any
	// backend I/O takes place
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned for bad provider configuration; it fails
	// fast at construction and never at operation time
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotSupported is returned when an operation is excluded by the
	// provider's permitted-operations mask
	ErrNotSupported = errors.New("operation not supported")

	// ErrConflict is returned when a create collides with an existing item
	ErrConflict = errors.New("item already exists")

	// ErrNotFound is returned when the target of an update or delete is missing
	ErrNotFound = errors.New("item not found")

	// ErrPreconditionFailed is returned when a write carries a stale ETag
	ErrPreconditionFailed = errors.New("etag mismatch")

	// ErrFailedDependency is returned for batch slots that were not committed
	// because a sibling slot failed
	ErrFailedDependency = errors.New("batch sibling failed")

	// ErrInternal is returned for unexpected backend faults
	ErrInternal = errors.New("internal error")

	// ErrCommandConsumed is returned when a save command is used a second time
	ErrCommandConsumed = errors.New("save command already consumed")
)

// ValidationError represents a pre-save validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError represents a bad provider configuration
type ConfigurationError struct {
	Param   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid configuration for %q: %s", e.Param, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NotSupportedError represents an operation excluded by the provider's
// permitted-operations mask
type NotSupportedError struct {
	Operation string
	TypeName  string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s is not supported for type %q", e.Operation, e.TypeName)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// ConflictError represents a create colliding with an existing item
type ConflictError struct {
	TypeName string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.TypeName, e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFoundError represents a missing update or delete target
type NotFoundError struct {
	TypeName string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.TypeName, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PreconditionFailedError represents a write with a stale ETag
type PreconditionFailedError struct {
	TypeName string
	Key      string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s with key %q was changed by another writer", e.TypeName, e.Key)
}

func (e *PreconditionFailedError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// FailedDependencyError represents a batch slot that was not committed
// because a sibling slot failed
type FailedDependencyError struct {
	TypeName string
	Key      string
}

func (e *FailedDependencyError) Error() string {
	return fmt.Sprintf("%s with key %q was not saved: a sibling batch item failed", e.TypeName, e.Key)
}

func (e *FailedDependencyError) Is(target error) bool {
	return target == ErrFailedDependency
}

// InternalError wraps an unexpected backend fault
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(param, message string) error {
	return &ConfigurationError{Param: param, Message: message}
}

// NewNotSupportedError creates a new NotSupportedError
func NewNotSupportedError(operation, typeName string) error {
	return &NotSupportedError{Operation: operation, TypeName: typeName}
}

// NewConflictError creates a new ConflictError
func NewConflictError(typeName, key string) error {
	return &ConflictError{TypeName: typeName, Key: key}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(typeName, key string) error {
	return &NotFoundError{TypeName: typeName, Key: key}
}

// NewPreconditionFailedError creates a new PreconditionFailedError
func NewPreconditionFailedError(typeName, key string) error {
	return &PreconditionFailedError{TypeName: typeName, Key: key}
}

// NewFailedDependencyError creates a new FailedDependencyError
func NewFailedDependencyError(typeName, key string) error {
	return &FailedDependencyError{TypeName: typeName, Key: key}
}

// NewInternalError creates a new InternalError wrapping err
func NewInternalError(message string, err error) error {
	return &InternalError{Message: message, Err: err}
}

// FromStatus translates a backend status code into the matching typed error.
// StatusOK yields nil.
func FromStatus(status storagemodels.StatusCode, typeName, key string) error {
	switch status {
	case storagemodels.StatusOK:
		return nil
	case storagemodels.StatusConflict:
		return NewConflictError(typeName, key)
	case storagemodels.StatusNotFound:
		return NewNotFoundError(typeName, key)
	case storagemodels.StatusPreconditionFailed:
		return NewPreconditionFailedError(typeName, key)
	case storagemodels.StatusFailedDependency:
		return NewFailedDependencyError(typeName, key)
	default:
		return NewInternalError(fmt.Sprintf("backend returned status %d for %s %q", status, typeName, key), nil)
	}
}

// Helper functions for checking errors

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsNotSupported checks if an error is a not supported error
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPreconditionFailed checks if an error is a precondition failed error
func IsPreconditionFailed(err error) bool {
	return errors.Is(err, ErrPreconditionFailed)
}

// IsFailedDependency checks if an error is a failed dependency error
func IsFailedDependency(err error) bool {
	return errors.Is(err, ErrFailedDependency)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
