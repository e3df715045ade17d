// Package errors translates pipeline failures into the wire contract:
// an HTTP status plus the client-facing message. Server-only detail
// stays on the wrapped cause and never reaches the response body.
package errors

import (
	"errors"
	"net/http"

	"ramble/internal/app/audio"
	"ramble/internal/app/whisper"
)

// ErrorKind classifies a failed request for status mapping and logs.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindInvalidModel ErrorKind = "invalid_model"
	KindConversion   ErrorKind = "conversion"
	KindTimeout      ErrorKind = "timeout"
	KindModelLoad    ErrorKind = "model_load"
	KindRecognition  ErrorKind = "recognition"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// APIError is the single error type handlers surface. Message is what
// the client sees; Err carries the full cause for server-side logging.
type APIError struct {
	Kind      ErrorKind
	Message   string
	RequestID string
	Err       error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind onto the response status code.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidModel, KindConversion:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates an error for malformed request input.
func NewValidationError(message string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
	}
}

// NewNotFoundError creates an error for a missing resource.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewInternalError creates a generic server-side error.
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// FromDomain translates a pipeline error into its API form. User-caused
// failures keep their full message; server-side failures get generic
// client text with the cause preserved for logging.
func FromDomain(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		invalidModel *whisper.InvalidModelError
		conversion   *audio.ConversionError
		timeout      *audio.TimeoutError
		modelLoad    *whisper.ModelLoadError
		recognition  *whisper.RecognitionError
	)
	switch {
	case errors.As(err, &invalidModel):
		return &APIError{Kind: KindInvalidModel, Message: invalidModel.Error(), Err: err}
	case errors.As(err, &conversion):
		return &APIError{Kind: KindConversion, Message: conversion.Error(), Err: err}
	case errors.As(err, &timeout):
		return &APIError{Kind: KindTimeout, Message: "Audio processing timed out (file too large?)", Err: err}
	case errors.As(err, &modelLoad):
		return &APIError{Kind: KindModelLoad, Message: "Failed to load the requested model", Err: err}
	case errors.As(err, &recognition):
		return &APIError{Kind: KindRecognition, Message: "Transcription failed", Err: err}
	default:
		return &APIError{Kind: KindInternal, Message: "Internal server error", Err: err}
	}
}
