package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the storefront service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"colormuse-web"`
	ServiceVersion  string        `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"COLORMUSE_HTTP_PORT" envDefault:"8080"`
	PublicURL       string        `env:"COLORMUSE_PUBLIC_URL" envDefault:"http://localhost:8080"`
	LogLevel        string        `env:"COLORMUSE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"COLORMUSE_LOG_FORMAT" envDefault:"console"` // console or json
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Telemetry
	EnableTracing  bool    `env:"ENABLE_TRACING" envDefault:"false"`
	EnableMetrics  bool    `env:"ENABLE_OTEL_METRICS" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	SamplingRate   float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
	PIILevel       string  `env:"COLORMUSE_PII_LEVEL" envDefault:"hashed"` // none|hashed|full
	StorefrontFile string  `env:"COLORMUSE_STOREFRONT_FILE"`

	// Storefront defaults, overridable through StorefrontFile
	Storefront Storefront `envPrefix:"STOREFRONT_"`

	// Sessions
	SessionBackend  string        `env:"COLORMUSE_SESSION_BACKEND" envDefault:"memory"` // memory or redis
	SessionTTL      time.Duration `env:"COLORMUSE_SESSION_TTL" envDefault:"2h"`
	SessionCapacity int           `env:"COLORMUSE_SESSION_CAPACITY" envDefault:"10000"`
	SessionCookie   string        `env:"COLORMUSE_SESSION_COOKIE" envDefault:"colormuse_session"`
	RedisURL        string        `env:"COLORMUSE_REDIS_URL"`

	// PayPal
	PayPalClientID     string        `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string        `env:"PAYPAL_CLIENT_SECRET"`
	PayPalMode         string        `env:"PAYPAL_MODE" envDefault:"sandbox"` // sandbox or live
	PayPalTimeout      time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"15s"`

	// Proof archive storage
	StorageBackend      string        `env:"COLORMUSE_STORAGE_BACKEND" envDefault:"local"` // local or s3
	LocalStoragePath    string        `env:"COLORMUSE_LOCAL_STORAGE_PATH" envDefault:"./data/proofs"`
	LocalStorageBaseURL string        `env:"COLORMUSE_LOCAL_STORAGE_BASE_URL"`
	S3Endpoint          string        `env:"COLORMUSE_S3_ENDPOINT"`
	S3Region            string        `env:"COLORMUSE_S3_REGION" envDefault:"us-west-2"`
	S3Bucket            string        `env:"COLORMUSE_S3_BUCKET"`
	S3AccessKeyID       string        `env:"COLORMUSE_S3_ACCESS_KEY_ID"`
	S3SecretKey         string        `env:"COLORMUSE_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle      bool          `env:"COLORMUSE_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL        time.Duration `env:"COLORMUSE_S3_PRESIGN_TTL" envDefault:"168h"`

	// SMTP confirmation mail
	SMTPServer   string `env:"SMTP_SERVER"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	FromEmail    string `env:"FROM_EMAIL"`

	// Confirmation workers
	ConfirmationWorkers   int           `env:"COLORMUSE_CONFIRMATION_WORKERS" envDefault:"2"`
	ConfirmationQueueSize int           `env:"COLORMUSE_CONFIRMATION_QUEUE_SIZE" envDefault:"64"`
	ConfirmationTimeout   time.Duration `env:"COLORMUSE_CONFIRMATION_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into Config and applies the storefront overlay when configured.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.PayPalClientID = strings.TrimSpace(cfg.PayPalClientID)
	cfg.PayPalClientSecret = strings.TrimSpace(cfg.PayPalClientSecret)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)

	if path := strings.TrimSpace(cfg.StorefrontFile); path != "" {
		overlay, err := LoadStorefrontFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Storefront = cfg.Storefront.Merge(overlay)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.PayPalMode) {
	case "sandbox", "live":
	default:
		return fmt.Errorf("PAYPAL_MODE must be sandbox or live, got %q", c.PayPalMode)
	}
	switch strings.ToLower(c.SessionBackend) {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("COLORMUSE_REDIS_URL is required when COLORMUSE_SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("COLORMUSE_SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	switch strings.ToLower(c.StorageBackend) {
	case "local", "s3":
	default:
		return fmt.Errorf("COLORMUSE_STORAGE_BACKEND must be local or s3, got %q", c.StorageBackend)
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.SessionCapacity <= 0 {
		c.SessionCapacity = 10000
	}
	if c.ConfirmationWorkers <= 0 {
		c.ConfirmationWorkers = 1
	}
	return c.Storefront.Validate()
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// PayPalConfigured reports whether PayPal credentials are present.
func (c *Config) PayPalConfigured() bool {
	return c.PayPalClientID != "" && c.PayPalClientSecret != ""
}

// PayPalBaseURL returns the REST API base for the configured mode.
func (c *Config) PayPalBaseURL() string {
	if strings.EqualFold(c.PayPalMode, "live") {
		return "https://api-m.paypal.com"
	}
	return "https://api-m.sandbox.paypal.com"
}

// SMTPConfigured reports whether the confirmation mailer has everything it needs.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPServer != "" && c.SMTPUsername != "" && c.SMTPPassword != "" && c.FromEmail != ""
}

// IsS3Storage returns true if the S3 archive backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.EqualFold(strings.TrimSpace(c.StorageBackend), "s3")
}

// IsRedisSessions returns true when sessions live in redis.
func (c *Config) IsRedisSessions() bool {
	return strings.EqualFold(strings.TrimSpace(c.SessionBackend), "redis")
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
