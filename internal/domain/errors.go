package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodePersistence  ErrorCode = "PERSISTENCE_ERROR"

	// Content lookups
	CodeCourseNotFound ErrorCode = "COURSE_NOT_FOUND"
	CodeStageNotFound  ErrorCode = "STAGE_NOT_FOUND"
	CodeQuizNotFound   ErrorCode = "QUIZ_NOT_FOUND"

	// Request validation
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Storage backends (avatars)
	CodeStorage ErrorCode = "STORAGE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a key/value pair that the HTTP layer reports as details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

// NewPersistenceError reports a rejected read or write against the data store.
func NewPersistenceError(message string, err error) *DomainError {
	return NewError(CodePersistence, message, err)
}

func NewCourseNotFoundError(slug string) *DomainError {
	return NewError(CodeCourseNotFound, "Course not found", nil).WithContext("slug", slug)
}

func NewStageNotFoundError(slug string, orderIndex int) *DomainError {
	return NewError(CodeStageNotFound, "Stage not found", nil).
		WithContext("slug", slug).
		WithContext("order_index", orderIndex)
}

func NewQuizNotFoundError(slug string, orderIndex int) *DomainError {
	return NewError(CodeQuizNotFound, "Quiz not found", nil).
		WithContext("slug", slug).
		WithContext("order_index", orderIndex)
}

func NewStorageError(message string, err error) *DomainError {
	return NewError(CodeStorage, message, err)
}

// IsNotFound reports whether err is any of the lookup-miss domain errors.
func IsNotFound(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case CodeNotFound, CodeCourseNotFound, CodeStageNotFound, CodeQuizNotFound:
		return true
	}
	return false
}

// ErrRecordNotFound is returned by repositories when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")
