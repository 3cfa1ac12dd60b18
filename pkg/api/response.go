// Package api holds the HTTP response envelope shared by the REST handlers.
package api

import (
	"encoding/json"
	"net/http"

	apperrors "stackecho/pkg/errors"
)

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Success writes data as JSON with the given status.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, ErrorResponse{Error: message})
}

// FromError maps an application error onto an HTTP status and writes it.
// Internal errors never leak their cause to the client.
func FromError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := http.StatusText(status)

	var appErr *apperrors.AppError
	if status != http.StatusInternalServerError && asAppError(err, &appErr) {
		message = appErr.Message
	}

	Success(w, status, ErrorResponse{Error: message, Code: string(apperrors.TypeOf(err))})
}

// StatusFor returns the HTTP status for an application error.
func StatusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
