package model

import "errors"

var (
	// Auth related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")

	// Task related errors
	ErrTaskNotFound = errors.New("task not found")
)
