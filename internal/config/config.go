package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/minicart/pkg/config"
	"github.com/utafrali/minicart/pkg/tracing"
)

// Config holds all configuration for minicart.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort        int           `env:"MINICART_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"MINICART_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Display
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"€"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables. Entries in overrides
// win over the environment; the CLI passes its flags this way.
func Load(overrides map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("load minicart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Tracing returns the tracer configuration for the given service name.
func (c *Config) Tracing(serviceName, version string) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.ServiceVersion = version
	tc.Environment = c.Environment
	tc.Enabled = c.OTELEnabled
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	return tc
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("MINICART_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		return fmt.Errorf("CURRENCY_SYMBOL must not be blank")
	}
	if c.KafkaEnabled && len(nonBlank(c.KafkaBrokers)) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	c.KafkaBrokers = nonBlank(c.KafkaBrokers)
	return nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
