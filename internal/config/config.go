package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config defines fleetpulse service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"FLEETPULSE_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"FLEETPULSE_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"FLEETPULSE_REDIS_ADDR"`
		Password string `yaml:"password" env:"FLEETPULSE_REDIS_PASSWORD"`
	} `yaml:"redis"`
}

// Load configuration from YAML file and environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: struct {
			Port string `yaml:"port" env:"FLEETPULSE_HTTP_PORT"`
		}{
			Port: "8080",
		},
	}

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheEnabled reports whether a redis live cache should be wired.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
