package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/colormuse/colormuse-books/internal/config"
)

const masked = "********"

// effectiveConfig is the printable view of config.Config with secrets masked.
type effectiveConfig struct {
	Service struct {
		Name        string `yaml:"name"`
		Version     string `yaml:"version"`
		Environment string `yaml:"environment"`
		Addr        string `yaml:"addr"`
		PublicURL   string `yaml:"public_url"`
		LogLevel    string `yaml:"log_level"`
	} `yaml:"service"`
	Storefront config.Storefront `yaml:"storefront"`
	Sessions   struct {
		Backend  string `yaml:"backend"`
		TTL      string `yaml:"ttl"`
		Capacity int    `yaml:"capacity"`
		Redis    string `yaml:"redis,omitempty"`
	} `yaml:"sessions"`
	PayPal struct {
		Mode       string `yaml:"mode"`
		BaseURL    string `yaml:"base_url"`
		ClientID   string `yaml:"client_id,omitempty"`
		Secret     string `yaml:"client_secret,omitempty"`
		Configured bool   `yaml:"configured"`
	} `yaml:"paypal"`
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path,omitempty"`
		Bucket  string `yaml:"bucket,omitempty"`
	} `yaml:"storage"`
	Mail struct {
		Configured bool   `yaml:"configured"`
		Server     string `yaml:"server,omitempty"`
		From       string `yaml:"from,omitempty"`
	} `yaml:"mail"`
	Telemetry struct {
		Tracing  bool   `yaml:"tracing"`
		Metrics  bool   `yaml:"metrics"`
		Endpoint string `yaml:"endpoint,omitempty"`
		PIILevel string `yaml:"pii_level"`
	} `yaml:"telemetry"`
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long:  `Load the configuration from the environment (and .env) and print it with secrets masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(describeConfig(cfg))
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func describeConfig(cfg *config.Config) effectiveConfig {
	var out effectiveConfig
	out.Service.Name = cfg.ServiceName
	out.Service.Version = cfg.ServiceVersion
	out.Service.Environment = cfg.Environment
	out.Service.Addr = cfg.Addr()
	out.Service.PublicURL = cfg.PublicURL
	out.Service.LogLevel = cfg.LogLevel
	out.Storefront = cfg.Storefront

	out.Sessions.Backend = cfg.SessionBackend
	out.Sessions.TTL = cfg.SessionTTL.String()
	out.Sessions.Capacity = cfg.SessionCapacity
	if cfg.RedisURL != "" {
		out.Sessions.Redis = masked
	}

	out.PayPal.Mode = cfg.PayPalMode
	out.PayPal.BaseURL = cfg.PayPalBaseURL()
	out.PayPal.ClientID = cfg.PayPalClientID
	if cfg.PayPalClientSecret != "" {
		out.PayPal.Secret = masked
	}
	out.PayPal.Configured = cfg.PayPalConfigured()

	out.Storage.Backend = cfg.StorageBackend
	if cfg.IsS3Storage() {
		out.Storage.Bucket = cfg.S3Bucket
	} else {
		out.Storage.Path = cfg.LocalStoragePath
	}

	out.Mail.Configured = cfg.SMTPConfigured()
	out.Mail.Server = cfg.SMTPServer
	out.Mail.From = cfg.FromEmail

	out.Telemetry.Tracing = cfg.EnableTracing
	out.Telemetry.Metrics = cfg.EnableMetrics
	out.Telemetry.Endpoint = cfg.OTLPEndpoint
	out.Telemetry.PIILevel = cfg.PIILevel
	return out
}
