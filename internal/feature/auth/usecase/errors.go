// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"

	"imagegen_backend/internal/feature/auth/domain"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = domain.ErrUserNotFound

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = domain.ErrEmailAlreadyExists

	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when the password does not meet the length requirement.
	ErrWeakPassword = errors.New("password is too short")
)
