package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ComputeSignature returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)),
// the signature the checkout widget hands back to the client.
func ComputeSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	expected := ComputeSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ExtendExpiry stacks days onto a still-running subscription, otherwise starts from now.
func ExtendExpiry(now time.Time, current *time.Time, days int) time.Time {
	span := time.Duration(days) * 24 * time.Hour
	if current != nil && current.After(now) {
		return current.Add(span)
	}
	return now.Add(span)
}
