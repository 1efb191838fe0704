// Package entity defines the domain entities for the generation feature.
package entity

import "time"

// Image is one generated picture owned by a user.
// It is created once per successful generation and never modified.
type Image struct {
	ID            uint
	UserID        uint
	CloudinaryURL string
	PromptText    string
	CreatedAt     time.Time
}
