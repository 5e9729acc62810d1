package model

import (
	"errors"
	"fmt"
)

// Sentinels for the three failure classes callers are expected to branch on.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ArgumentError reports a configuration or call parameter with the wrong shape.
// It is raised before any I/O happens.
type ArgumentError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid argument %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewArgumentError creates a new argument error
func NewArgumentError(field string, value interface{}, message string) *ArgumentError {
	return &ArgumentError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NotFoundError reports an expected cache file, directory entry or remote record that is absent.
type NotFoundError struct {
	Resource string
	Path     string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s not found at %s: %s", e.Resource, e.Path, e.Message)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(resource, path, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Path:     path,
		Message:  message,
	}
}

// UpstreamError reports that the remote service did not produce a usable payload
// within the retry budget.
type UpstreamError struct {
	Operation string
	Attempts  int
	LastRows  int
	Message   string
	Cause     error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s, %d attempts, last %d rows] (%v)", e.Message, e.Operation, e.Attempts, e.LastRows, e.Cause)
	}
	return fmt.Sprintf("%s [%s, %d attempts, last %d rows]", e.Message, e.Operation, e.Attempts, e.LastRows)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(operation string, attempts, lastRows int, message string, cause error) *UpstreamError {
	return &UpstreamError{
		Operation: operation,
		Attempts:  attempts,
		LastRows:  lastRows,
		Message:   message,
		Cause:     cause,
	}
}
