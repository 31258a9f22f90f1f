/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/suparena/itemstore/storagemodels"
)

func TestConflictError(t *testing.T) {
	err := NewConflictError("message", "X:P")

	// Test error message
	expected := `message with key "X:P" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}

	// Test helper function
	if !IsConflict(err) {
		t.Error("IsConflict should return true for ConflictError")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("message", "X:P")

	expected := `message with key "X:P" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "id",
			message:  "must not be empty",
			expected: `validation failed for field "id": must not be empty`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidation(err) {
				t.Error("IsValidation should return true for ValidationError")
			}
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("typeName", `"Event" does not match the required pattern`)

	if !errors.Is(err, ErrConfiguration) {
		t.Error("ConfigurationError should match ErrConfiguration")
	}
	if !IsConfiguration(err) {
		t.Error("IsConfiguration should return true for ConfigurationError")
	}
}

func TestNotSupportedError(t *testing.T) {
	err := NewNotSupportedError("create", "message")

	expected := `create is not supported for type "message"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !IsNotSupported(err) {
		t.Error("IsNotSupported should return true for NotSupportedError")
	}
}

func TestInternalErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := NewInternalError("batch save failed", cause)

	if !errors.Is(err, ErrInternal) {
		t.Error("InternalError should match ErrInternal")
	}
	if !errors.Is(err, cause) {
		t.Error("InternalError should unwrap to its cause")
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   storagemodels.StatusCode
		sentinel error
	}{
		{storagemodels.StatusConflict, ErrConflict},
		{storagemodels.StatusNotFound, ErrNotFound},
		{storagemodels.StatusPreconditionFailed, ErrPreconditionFailed},
		{storagemodels.StatusFailedDependency, ErrFailedDependency},
		{storagemodels.StatusInternalError, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := FromStatus(tt.status, "message", "X:P")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("FromStatus(%d) = %v, want match for %v", tt.status, err, tt.sentinel)
			}
		})
	}

	if err := FromStatus(storagemodels.StatusOK, "message", "X:P"); err != nil {
		t.Errorf("FromStatus(StatusOK) = %v, want nil", err)
	}
}
