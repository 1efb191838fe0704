// Package usecase implements the business logic for the payment feature.
package usecase

import (
	"errors"
	"fmt"

	authdomain "imagegen_backend/internal/feature/auth/domain"
)

var (
	// ErrInvalidAmount is returned for amounts outside the price list.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = authdomain.ErrUserNotFound

	// ErrGateway classifies payment gateway failures, including timeouts.
	ErrGateway = errors.New("payment gateway error")

	// ErrMissingPaymentDetails is returned when order id, payment id or signature is empty.
	ErrMissingPaymentDetails = errors.New("missing payment verification details")

	// ErrSignatureMismatch is returned when the checkout signature does not verify.
	ErrSignatureMismatch = errors.New("invalid payment signature")

	// ErrPaymentAlreadyProcessed is returned when a payment id was already used.
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")

	// ErrVersionConflict is returned by the repository when the user changed since it was read.
	ErrVersionConflict = errors.New("subscription was modified concurrently")
)

// GatewayError carries the status and description of a non-2xx gateway answer.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Unwrap lets errors.Is(err, ErrGateway) match.
func (e *GatewayError) Unwrap() error {
	return ErrGateway
}
