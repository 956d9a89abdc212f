package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithOverrides behaves like Load, but values in overrides take precedence
// over the process environment. Command-line flags are passed this way.
func LoadWithOverrides(cfg any, overrides map[string]string) error {
	if len(overrides) == 0 {
		return Load(cfg)
	}

	environ := environment()
	for k, v := range overrides {
		environ[k] = v
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func environment() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}
