package di

import (
	"github.com/redis/go-redis/v9"

	"imagegen_backend/internal/config"
	"imagegen_backend/internal/feature/payment/adapters/razorpay"
	"imagegen_backend/internal/feature/payment/usecase"
	infrahttp "imagegen_backend/internal/platform/http"
	"imagegen_backend/internal/platform/lock"
)

// NewGateway creates a Razorpay client with its own HTTP client.
func NewGateway(cfg config.Gateway) *razorpay.Client {
	return razorpay.NewClient(razorpay.ConfigFrom(cfg), infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewUserLocker creates a UserLocker implementation.
// If Redis is available, it returns a Redis-backed lock shared by all replicas.
// Otherwise, it falls back to an in-process lock.
func NewUserLocker(rdb *redis.Client) usecase.UserLocker {
	if rdb != nil {
		return lock.NewRedisLocker(rdb, "lock:user", 0)
	}
	return lock.NewLocalLocker()
}
