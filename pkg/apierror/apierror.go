package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// NewValidation reports a 400 with a field -> message map describing every
// constraint the request body violated.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{
		Code:       "VALIDATION",
		Message:    "validation failed",
		Fields:     fields,
		HTTPStatus: http.StatusBadRequest,
	}
}
