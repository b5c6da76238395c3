package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Extraction and reconciliation error taxonomy. All of these are sentinels
// so callers can branch with errors.Is through the AppError wrapper.
var (
	ErrDocumentUnreadable  = errors.New("document unreadable")
	ErrPageTextUnavailable = errors.New("page text unavailable")
	ErrMalformedNumber     = errors.New("malformed number")
	ErrNoItemsExtracted    = errors.New("no items extracted")
	ErrIdentifierNotFound  = errors.New("invoice identifier not found")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
