// Package config holds the server runtime configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from environment variables; main applies flag
// overrides on top.
type Config struct {
	ListenAddr           string        `env:"LISTEN_ADDR"            envDefault:":65432"`
	HTTPAddr             string        `env:"HTTP_ADDR"              envDefault:":8080"`
	Debug                bool          `env:"DEBUG"                  envDefault:"false"`
	MaxSpectators        int           `env:"MAX_SPECTATORS"         envDefault:"5"`
	SpectatorIdleTimeout time.Duration `env:"SPECTATOR_IDLE_TIMEOUT" envDefault:"60s"`
	SendTimeout          time.Duration `env:"SEND_TIMEOUT"           envDefault:"5s"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}
