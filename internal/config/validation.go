package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by errors.Is on every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors aggregates every invalid field found by Validate.
type ValidationErrors struct {
	Errors []ValidationError
}

// AddMessage records a validation error for field.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message == "" {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// Err returns nil if there are no errors, otherwise returns v.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Error implements error.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// Is reports ErrInvalid.
func (v *ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

// Fields lists the invalid field names in the order they were found.
func (v *ValidationErrors) Fields() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		out = append(out, err.Field)
	}
	return out
}
