// Package http provides the JSON API server and handlers.
//
// This file implements a small builder for constructing API responses
// with consistent status, header and body handling.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIResponseBuilder provides a fluent API for building JSON responses.
type APIResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewAPIResponse creates a new response builder with default 200 status.
func NewAPIResponse() *APIResponseBuilder {
	return &APIResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *APIResponseBuilder) Status(code int) *APIResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *APIResponseBuilder) Header(name, value string) *APIResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the response payload, serialized on Write.
func (b *APIResponseBuilder) JSON(v any) *APIResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *APIResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Error("Failed to encode response payload", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *APIResponseBuilder {
	return NewAPIResponse().
		Status(statusCode).
		JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *APIResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *APIResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *APIResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *APIResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError creates a 429 Too Many Requests error response.
func TooManyRequestsError() *APIResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
