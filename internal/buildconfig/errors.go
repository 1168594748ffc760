package buildconfig

import (
	"errors"
	"fmt"
)

// ErrConfigValidation is matched by every ConfigValidationError via errors.Is.
var ErrConfigValidation = errors.New("invalid configuration")

// ConfigValidationError reports a supplied option that violates its documented constraint.
type ConfigValidationError struct {
	// Field is the dotted path of the offending option, e.g. "server.port"
	Field string
	// Value is the rejected value as supplied
	Value any
	// Reason describes the violated constraint
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %v (%s)", ErrConfigValidation, e.Field, e.Value, e.Reason)
}

func (e *ConfigValidationError) Is(target error) bool {
	return target == ErrConfigValidation
}

func invalid(field string, value any, reason string) error {
	return &ConfigValidationError{Field: field, Value: value, Reason: reason}
}
