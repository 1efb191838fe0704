// Package huggingface provides a text-to-image client for the Hugging Face inference router.
package huggingface

import (
	"time"

	"imagegen_backend/internal/config"
)

// Config holds configuration for the Hugging Face inference client.
type Config struct {
	Token   string        // API token sent as a Bearer credential
	BaseURL string        // e.g. "https://router.huggingface.co/hf-inference/models"
	Model   string        // model id appended to BaseURL
	Timeout time.Duration // per-call deadline
}

// ConfigFrom maps the application inference settings.
func ConfigFrom(c config.Inference) Config {
	return Config{
		Token:   c.APIKey,
		BaseURL: c.HFBaseURL,
		Model:   c.HFModel,
		Timeout: c.Timeout,
	}
}
