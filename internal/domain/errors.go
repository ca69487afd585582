package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// Is lets errors.Is match each type against its sentinel.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrContentProcessing = errors.New("could not process this content")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (content, asset)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ProcessingStage names one step of the content processing pipeline.
type ProcessingStage string

const (
	StageClassify    ProcessingStage = "classify"
	StageFrontMatter ProcessingStage = "front_matter"
	StageRender      ProcessingStage = "render"
	StageSanitize    ProcessingStage = "sanitize"
	StageVerify      ProcessingStage = "verify"
	StageExtract     ProcessingStage = "extract"
)

// ContentProcessingError wraps any failure of the processing pipeline.
// Callers only need errors.Is(err, ErrContentProcessing); Stage is kept for logs.
type ContentProcessingError struct {
	Stage ProcessingStage
	Err   error
}

func (e *ContentProcessingError) Error() string {
	return fmt.Sprintf("content processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ContentProcessingError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrContentProcessing
func (e *ContentProcessingError) Is(target error) bool {
	return target == ErrContentProcessing
}

// StatusCode implements the HTTPError interface
func (e *ContentProcessingError) StatusCode() int {
	return http.StatusUnprocessableEntity
}
