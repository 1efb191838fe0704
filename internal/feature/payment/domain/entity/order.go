package entity

import "time"

// OrderRequest is what the server asks the gateway to create.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway's view of an order.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Notes    map[string]string
}

// OrderHandle is returned to the client to open the checkout widget.
// KeyID is the publishable key; the secret never leaves the server.
type OrderHandle struct {
	OrderID  string
	Amount   int64
	Currency string
	KeyID    string
}

// Payment records a verified payment. PaymentID is unique, so a payment
// extends a subscription at most once.
type Payment struct {
	ID        uint
	UserID    uint
	OrderID   string
	PaymentID string
	Amount    int64
	DaysAdded int
	CreatedAt time.Time
}

// SubscriptionState is the outcome of a verified payment.
type SubscriptionState struct {
	PaymentID string
	OrderID   string
	Status    string
	Expiry    time.Time
	DaysAdded int
}
