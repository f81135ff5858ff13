// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable keys. All optional; each overrides its file value.
const (
	EnvLogLevel             = "PLAYCTL_LOG_LEVEL"
	EnvListen               = "PLAYCTL_LISTEN"
	EnvReadHeaderTimeout    = "PLAYCTL_READ_HEADER_TIMEOUT"
	EnvShutdownTimeout      = "PLAYCTL_SHUTDOWN_TIMEOUT"
	EnvCanPlayThroughMargin = "PLAYCTL_CANPLAYTHROUGH_MARGIN"
	EnvProgressInterval     = "PLAYCTL_PROGRESS_INTERVAL"
	EnvStallTimeout         = "PLAYCTL_STALL_TIMEOUT"
	EnvDispatchQueueSize    = "PLAYCTL_DISPATCH_QUEUE_SIZE"
)

// Loader loads configuration with the precedence ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader returns a loader for the given config file path. An empty path
// skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load builds the effective configuration: defaults first, then the YAML
// file when present, then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.applyFile(&cfg); err != nil {
			return AppConfig{}, err
		}
	}
	l.applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// applyFile overlays the YAML file onto cfg. A missing file is not an
// error; a malformed one is. Unknown keys are rejected so typos surface at
// startup instead of silently using defaults.
func (l *Loader) applyFile(cfg *AppConfig) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", l.configPath, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", l.configPath, err)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.Log.Level = ParseString(EnvLogLevel, cfg.Log.Level)
	cfg.Server.Listen = ParseString(EnvListen, cfg.Server.Listen)
	cfg.Server.ReadHeaderTimeout = ParseDuration(EnvReadHeaderTimeout, cfg.Server.ReadHeaderTimeout)
	cfg.Server.ShutdownTimeout = ParseDuration(EnvShutdownTimeout, cfg.Server.ShutdownTimeout)
	cfg.Session.CanPlayThroughMargin = ParseDuration(EnvCanPlayThroughMargin, cfg.Session.CanPlayThroughMargin)
	cfg.Session.ProgressInterval = ParseDuration(EnvProgressInterval, cfg.Session.ProgressInterval)
	cfg.Session.StallTimeout = ParseDuration(EnvStallTimeout, cfg.Session.StallTimeout)
	cfg.Session.DispatchQueueSize = ParseInt(EnvDispatchQueueSize, cfg.Session.DispatchQueueSize)
}
