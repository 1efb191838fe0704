// Package config loads the typed application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration of the server.
type Config struct {
	App        App
	DB         DB
	Redis      Redis
	JWT        JWT
	Inference  Inference
	Storage    Storage
	Gateway    Gateway
	Moderation Moderation
	RateLimit  RateLimit
}

// App holds process-level settings.
// CORSOrigins empty allows any origin.
type App struct {
	Env         string   `env:"APP_ENV" env-default:"production"`
	Port        string   `env:"PORT" env-default:"8080"`
	LogLevel    string   `env:"LOG_LEVEL" env-default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" env-default:"json"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:","`
}

// DB holds the database connection settings.
// Driver is either "postgres" or "sqlite".
type DB struct {
	Driver        string `env:"DB_DRIVER" env-default:"postgres"`
	Host          string `env:"DB_HOST" env-default:"localhost"`
	Port          string `env:"DB_PORT" env-default:"5432"`
	User          string `env:"DB_USER"`
	Password      string `env:"DB_PASSWORD"`
	Name          string `env:"DB_NAME" env-default:"imagegen"`
	SSLMode       string `env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath    string `env:"SQLITE_PATH" env-default:"./imagegen.db"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"false"`
}

// Redis holds the Redis connection settings. An empty Host disables Redis.
type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Addr returns host:port of the Redis server.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// Enabled reports whether a Redis host is configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

// JWT holds token signing settings.
type JWT struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL" env-default:"24h"`
}

// Inference selects and configures the text-to-image provider.
// Provider is either "huggingface" or "imagen".
type Inference struct {
	Provider    string        `env:"INFERENCE_PROVIDER" env-default:"huggingface"`
	APIKey      string        `env:"AI_API_KEY"`
	HFBaseURL   string        `env:"HF_BASE_URL" env-default:"https://router.huggingface.co/hf-inference/models"`
	HFModel     string        `env:"HF_MODEL" env-default:"stabilityai/stable-diffusion-xl-base-1.0"`
	ImagenModel string        `env:"IMAGEN_MODEL" env-default:"imagen-3.0-generate-002"`
	Timeout     time.Duration `env:"INFERENCE_TIMEOUT" env-default:"120s"`
}

// Storage configures the Cloudinary upload collaborator.
type Storage struct {
	CloudName string        `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string        `env:"CLOUDINARY_API_KEY"`
	APISecret string        `env:"CLOUDINARY_API_SECRET"`
	Folder    string        `env:"CLOUDINARY_FOLDER" env-default:"nano-banana/generated"`
	Timeout   time.Duration `env:"STORAGE_TIMEOUT" env-default:"30s"`
}

// Gateway configures the Razorpay payment gateway.
type Gateway struct {
	KeyID     string        `env:"RAZORPAY_KEY_ID"`
	KeySecret string        `env:"RAZORPAY_KEY_SECRET"`
	BaseURL   string        `env:"RAZORPAY_BASE_URL" env-default:"https://api.razorpay.com/v1"`
	Currency  string        `env:"PAYMENT_CURRENCY" env-default:"INR"`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT" env-default:"10s"`
}

// Moderation toggles SafeSearch screening of generated images.
type Moderation struct {
	Enabled bool `env:"MODERATION_ENABLED" env-default:"false"`
}

// RateLimit configures the per-user limit on image generation.
type RateLimit struct {
	GeneratePerMinute int `env:"GENERATE_RATE_PER_MINUTE" env-default:"10"`
	GenerateBurst     int `env:"GENERATE_RATE_BURST" env-default:"3"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cleanenv cannot express with tags.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	switch c.Inference.Provider {
	case "huggingface", "imagen":
	default:
		errs = append(errs, fmt.Errorf("INFERENCE_PROVIDER must be huggingface or imagen, got %q", c.Inference.Provider))
	}
	if c.RateLimit.GeneratePerMinute <= 0 {
		errs = append(errs, errors.New("GENERATE_RATE_PER_MINUTE must be positive"))
	}
	if !c.IsDevelopment() {
		// 空の鍵では署名検証が空鍵のHMACになり、ゲートウェイも401を返す
		required := []struct{ name, value string }{
			{"RAZORPAY_KEY_ID", c.Gateway.KeyID},
			{"RAZORPAY_KEY_SECRET", c.Gateway.KeySecret},
			{"CLOUDINARY_CLOUD_NAME", c.Storage.CloudName},
			{"CLOUDINARY_API_KEY", c.Storage.APIKey},
			{"CLOUDINARY_API_SECRET", c.Storage.APISecret},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				errs = append(errs, fmt.Errorf("%s is required outside development", r.name))
			}
		}
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether diagnostic error details may be sent to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

// String renders the configuration with secrets redacted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"App: env=%s port=%s log=%s/%s\n"+
			"DB: driver=%s host=%s port=%s user=%s name=%s password=%s\n"+
			"Redis: addr=%s enabled=%t password=%s\n"+
			"JWT: secret=%s ttl=%s\n"+
			"Inference: provider=%s model=%s token=%s timeout=%s\n"+
			"Storage: cloud=%s folder=%s secret=%s timeout=%s\n"+
			"Gateway: key_id=%s currency=%s secret=%s timeout=%s\n"+
			"Moderation: enabled=%t\n"+
			"RateLimit: %d/min burst=%d\n",
		c.App.Env, c.App.Port, c.App.LogLevel, c.App.LogFormat,
		c.DB.Driver, c.DB.Host, c.DB.Port, c.DB.User, c.DB.Name, redact(c.DB.Password),
		c.Redis.Addr(), c.Redis.Enabled(), redact(c.Redis.Password),
		redact(c.JWT.Secret), c.JWT.TTL,
		c.Inference.Provider, c.Inference.HFModel, redact(c.Inference.APIKey), c.Inference.Timeout,
		c.Storage.CloudName, c.Storage.Folder, redact(c.Storage.APISecret), c.Storage.Timeout,
		c.Gateway.KeyID, c.Gateway.Currency, redact(c.Gateway.KeySecret), c.Gateway.Timeout,
		c.Moderation.Enabled,
		c.RateLimit.GeneratePerMinute, c.RateLimit.GenerateBurst,
	)
}

func redact(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}
