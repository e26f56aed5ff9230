package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go-task-manager/internal/model"
	"go-task-manager/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		body.Fields = apiErr.Fields
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid token"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrTaskNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Task not found"
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else {
		// Log unclassified errors so they are visible in container logs;
		// the client only ever sees the generic message.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
