// Package config loads runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the settings shared by the CLI and the server.
type Config struct {
	// DBPath is the SQLite database file, ":memory:" for a throwaway one.
	DBPath string `koanf:"PENNYWISE_DB"`
	// Addr is the HTTP listen address of the server.
	Addr string `koanf:"PENNYWISE_ADDR"`
	// RulesPath optionally points at a YAML rule file loaded on startup.
	RulesPath string `koanf:"PENNYWISE_RULES"`
}

// Load reads the configuration from PENNYWISE_* environment variables,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath: "pennywise.db",
		Addr:   ":8080",
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("PENNYWISE_", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
