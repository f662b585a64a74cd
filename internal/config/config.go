// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package config

import (
	"errors"
	"net"
	"strings"

	"github.com/spf13/viper"

	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Config is the top-level Ticketline configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Query   QueryConfig   `mapstructure:"query"`
}

// ServerConfig controls the HTTP API surface.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// APIToken is the bearer token required on /api routes. Empty
	// disables authentication (development only).
	APIToken string `mapstructure:"api_token"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
	// Seed points at a YAML fixture loaded into the memory backend at
	// startup. Ignored for other backends.
	Seed string `mapstructure:"seed"`
}

// QueryConfig tunes the query engine's result bounds.
type QueryConfig struct {
	PageSize        int `mapstructure:"page_size"`
	SearchLimit     int `mapstructure:"search_limit"`
	PerContactLimit int `mapstructure:"per_contact_limit"`
	Concurrency     int `mapstructure:"concurrency"`
}

// SetDefaults applies default values to a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:18790")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("query.page_size", 20)
	v.SetDefault("query.search_limit", 200)
	v.SetDefault("query.per_contact_limit", 200)
	v.SetDefault("query.concurrency", 4)
}

// SetupEnv binds environment variables with the TICKETLINE_ prefix.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("TICKETLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, tlerr.Errorf(tlerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a configuration from a viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tlerr.Errorf(tlerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, tlerr.Errorf(tlerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, tlerr.New(tlerr.CodeConfigValidateInvalidValue, "config: server.listen is required"))
	} else if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		errs = append(errs, tlerr.Errorf(tlerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be host:port, got %q", c.Server.Listen))
	}

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, tlerr.Errorf(tlerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, memory], got %q", c.Storage.Backend))
	}
	if c.Storage.Seed != "" && c.Storage.Backend != "memory" {
		errs = append(errs, tlerr.New(tlerr.CodeConfigValidateInvalidValue,
			"config: storage.seed is only supported by the memory backend"))
	}

	for _, bound := range []struct {
		key   string
		value int
	}{
		{"query.page_size", c.Query.PageSize},
		{"query.search_limit", c.Query.SearchLimit},
		{"query.per_contact_limit", c.Query.PerContactLimit},
		{"query.concurrency", c.Query.Concurrency},
	} {
		if bound.value <= 0 {
			errs = append(errs, tlerr.Errorf(tlerr.CodeConfigValidateInvalidValue,
				"config: %s must be positive, got %d", bound.key, bound.value))
		}
	}

	return errs
}
