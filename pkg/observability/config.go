package observability

import (
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colormuse/colormuse-books/internal/config"
)

// Config holds the OpenTelemetry settings of the storefront.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string // development, staging, production
	TracingEnabled bool
	MetricsEnabled bool
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	SamplingRate   float64 // 0.0 - 1.0
	PIILevel       string  // none|hashed|full

	TraceBatchTimeout time.Duration
	MetricInterval    time.Duration
	ResourceAttrs     []attribute.KeyValue
}

// DefaultConfig returns a configuration with export disabled.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:       serviceName,
		ServiceVersion:    "dev",
		Environment:       "development",
		OTLPEndpoint:      "localhost:4318",
		SamplingRate:      1.0,
		PIILevel:          "hashed",
		TraceBatchTimeout: 5 * time.Second,
		MetricInterval:    15 * time.Second,
	}
}

// FromServiceConfig maps the service environment onto an observability Config.
func FromServiceConfig(cfg *config.Config) Config {
	out := DefaultConfig(cfg.ServiceName)
	out.ServiceVersion = cfg.ServiceVersion
	out.Environment = cfg.Environment
	out.TracingEnabled = cfg.EnableTracing
	out.MetricsEnabled = cfg.EnableMetrics
	if cfg.OTLPEndpoint != "" {
		out.OTLPEndpoint = cfg.OTLPEndpoint
	}
	if cfg.SamplingRate > 0 && cfg.SamplingRate <= 1 {
		out.SamplingRate = cfg.SamplingRate
	}
	if cfg.PIILevel != "" {
		out.PIILevel = cfg.PIILevel
	}
	return out
}
