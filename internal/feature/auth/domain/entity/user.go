// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Subscription status values stored on User.
const (
	SubscriptionInactive = "inactive"
	SubscriptionActive   = "active"
)

// User represents a registered user in the system.
// It carries authentication credentials and the subscription state that gates image generation.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	Password string `gorm:"size:255;not null"`

	// SubscriptionStatus is either SubscriptionActive or SubscriptionInactive.
	SubscriptionStatus string `gorm:"size:16;not null;default:inactive"`

	// SubscriptionExpiry is nil until the first successful payment.
	SubscriptionExpiry *time.Time

	// Version is bumped on every subscription change and used for optimistic locking.
	Version int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasActiveSubscription reports whether the user may generate images at now.
// Both the status flag and a future expiry are required; the status is never
// flipped back when the expiry passes.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.SubscriptionStatus != SubscriptionActive || u.SubscriptionExpiry == nil {
		return false
	}
	return u.SubscriptionExpiry.After(now)
}
