// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown log level", func(c *AppConfig) { c.Log.Level = "verbose" }},
		{"empty listen", func(c *AppConfig) { c.Server.Listen = "" }},
		{"zero progress interval", func(c *AppConfig) { c.Session.ProgressInterval = 0 }},
		{"zero stall timeout", func(c *AppConfig) { c.Session.StallTimeout = 0 }},
		{"stall shorter than progress", func(c *AppConfig) {
			c.Session.ProgressInterval = time.Second
			c.Session.StallTimeout = 500 * time.Millisecond
		}},
		{"negative margin", func(c *AppConfig) { c.Session.CanPlayThroughMargin = -time.Second }},
		{"zero queue", func(c *AppConfig) { c.Session.DispatchQueueSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaderFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
server:
  listen: ":9999"
session:
  stallTimeout: 5s
`)
	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, ":9999", cfg.Server.Listen)
	require.Equal(t, 5*time.Second, cfg.Session.StallTimeout)
	// Untouched fields keep their defaults.
	require.Equal(t, Defaults().Session.ProgressInterval, cfg.Session.ProgressInterval)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvStallTimeout, "7s")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 7*time.Second, cfg.Session.StallTimeout)
}

func TestLoaderRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	_, err := NewLoader(path).Load()
	require.Error(t, err)
}

func TestLoaderMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoaderRejectsInvalidEffectiveConfig(t *testing.T) {
	path := writeConfig(t, "log:\n  level: noisy\n")
	_, err := NewLoader(path).Load()
	require.Error(t, err)
}

func TestSessionConfigConversion(t *testing.T) {
	cfg := Defaults()
	cfg.Session.StallTimeout = 9 * time.Second

	sc := cfg.SessionConfig()
	require.Equal(t, 9*time.Second, sc.StallTimeout)
	require.Equal(t, cfg.Session.ProgressInterval, sc.ProgressInterval)
	require.Equal(t, cfg.Session.CanPlayThroughMargin, sc.CanPlayThroughMargin)
	require.Equal(t, cfg.Session.DispatchQueueSize, sc.DispatchQueueSize)
}
