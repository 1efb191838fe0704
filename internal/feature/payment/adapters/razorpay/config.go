package razorpay

import (
	"time"

	"imagegen_backend/internal/config"
)

// Config はRazorpay Orders APIの接続設定です。
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// ConfigFrom はアプリケーション設定からクライアント設定を組み立てます。
func ConfigFrom(cfg config.Gateway) Config {
	return Config{
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
	}
}
