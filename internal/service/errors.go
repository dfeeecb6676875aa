package service

import (
	"errors"
	"fmt"
)

// ErrFeedbackInFlight means an identical daily feedback request is already running.
var ErrFeedbackInFlight = errors.New("feedback request already in flight")

// ValidationError is a rejected input; Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ResourceError is a problem with a user-supplied resource such as an image.
type ResourceError struct {
	Message string
	// Oversized marks a resource rejected for its size.
	Oversized bool
}

func (e *ResourceError) Error() string { return e.Message }
