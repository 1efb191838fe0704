// Package usecase implements the business logic for the generation feature.
package usecase

import (
	"errors"
	"fmt"

	authdomain "imagegen_backend/internal/feature/auth/domain"
)

var (
	// ErrInvalidPrompt is returned when the trimmed prompt is shorter than MinPromptLength.
	ErrInvalidPrompt = errors.New("prompt must be at least 3 characters")

	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = authdomain.ErrUserNotFound

	// ErrSubscriptionInactive is returned when the user has no live subscription.
	ErrSubscriptionInactive = errors.New("subscription inactive or expired")

	// ErrUpstream classifies failures of the inference provider, including timeouts.
	ErrUpstream = errors.New("image generation failed")

	// ErrStorage classifies failures of the image storage provider, including timeouts.
	ErrStorage = errors.New("image upload failed")

	// ErrContentRejected is returned when moderation flags the generated image.
	ErrContentRejected = errors.New("generated image rejected by content policy")
)

// UpstreamError carries the status and body of a non-2xx inference answer.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("inference API returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrUpstream) match.
func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
