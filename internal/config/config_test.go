// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Key != "commentable:comments" {
		t.Errorf("default storage.key = %q", cfg.Storage.Key)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default logging.level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("COMMENTABLE_STORAGE_PATH", "/tmp/elsewhere")
	t.Setenv("COMMENTABLE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Path != "/tmp/elsewhere" {
		t.Errorf("storage.path = %q, want env override", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commentable.yaml")
	content := "storage:\n  key: \"custom:slot\"\nlogging:\n  format: console\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Key != "custom:slot" {
		t.Errorf("storage.key = %q, want file value", cfg.Storage.Key)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("logging.format = %q, want console", cfg.Logging.Format)
	}
	// Untouched settings keep their defaults.
	if cfg.Storage.Path == "" {
		t.Error("storage.path lost its default")
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commentable.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  key: \"from-file\"\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("COMMENTABLE_STORAGE_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Key != "from-env" {
		t.Errorf("storage.key = %q, want env to beat file", cfg.Storage.Key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, true},
		{"no path without in-memory", func(c *Config) { c.Storage.Path = "" }, true},
		{"no path with in-memory", func(c *Config) { c.Storage.Path = ""; c.Storage.InMemory = true }, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"COMMENTABLE_STORAGE_PATH", "storage.path"},
		{"COMMENTABLE_STORAGE_IN_MEMORY", "storage.in_memory"},
		{"COMMENTABLE_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
