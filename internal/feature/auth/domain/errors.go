// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors shared with features that read users (generation, payment).
var (
	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
