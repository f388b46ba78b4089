package config

import (
	"errors"
	"fmt"

	"github.com/dshills/tateview/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidValue matches every *ValidationError.
	ErrInvalidValue = errors.New("invalid configuration value")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownSetting indicates the setting path doesn't exist.
	ErrUnknownSetting = errors.New("unknown setting")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeUnknownSetting indicates an unrecognized setting path.
	ErrCodeUnknownSetting ValidationErrorCode = iota
	// ErrCodeTypeMismatch indicates the value type is wrong.
	ErrCodeTypeMismatch
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
	// ErrCodeInvalidEnum indicates the value is not one of the accepted names.
	ErrCodeInvalidEnum
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeUnknownSetting:
		return "unknown_setting"
	case ErrCodeTypeMismatch:
		return "type_mismatch"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	default:
		return "unknown"
	}
}

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
	// Code categorizes the validation error.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrInvalidValue, and the sentinel of the error's code.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInvalidValue:
		return true
	case ErrTypeMismatch:
		return e.Code == ErrCodeTypeMismatch
	case ErrUnknownSetting:
		return e.Code == ErrCodeUnknownSetting
	}
	return false
}
