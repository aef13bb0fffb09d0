// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package config loads the configuration for the library's production
// wiring (the locator package) using Koanf v2 with layered sources:
// built-in defaults, then an optional YAML file, then environment
// variables. Applications constructing their own service instances do
// not need this package at all.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"commentable.yaml",
	"commentable.yml",
	"/etc/commentable/config.yaml",
	"/etc/commentable/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "COMMENTABLE_CONFIG_PATH"

// envPrefix namespaces this library's environment variables so they
// cannot collide with the embedding application's.
const envPrefix = "COMMENTABLE_"

// Config holds the locator's wiring configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Logging LoggingConfig `koanf:"logging"`
}

// StorageConfig configures the persistent comment store.
type StorageConfig struct {
	// Path is the directory for the embedded database files.
	Path string `koanf:"path"`

	// Key is the storage slot the comment blob lives under.
	Key string `koanf:"key"`

	// InMemory skips files entirely; comments do not survive the
	// process. Intended for development.
	InMemory bool `koanf:"in_memory"`
}

// LoggingConfig configures the library logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:     "./data/commentable",
			Key:      "commentable:comments",
			InMemory: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load assembles the configuration: defaults, then an optional YAML
// file, then COMMENTABLE_* environment variables (highest priority).
//
//	COMMENTABLE_STORAGE_PATH      -> storage.path
//	COMMENTABLE_STORAGE_KEY       -> storage.key
//	COMMENTABLE_STORAGE_IN_MEMORY -> storage.in_memory
//	COMMENTABLE_LOGGING_LEVEL     -> logging.level
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the store cannot run with.
func (c *Config) Validate() error {
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set unless storage.in_memory is true")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps COMMENTABLE_STORAGE_IN_MEMORY to storage.in_memory:
// the first underscore separates the section, the rest stays a single
// snake_case key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
