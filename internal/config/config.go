// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads and validates the process configuration with the
// precedence ENV > file > defaults, and supports hot reloading from file.
package config

import (
	"fmt"
	"time"

	"github.com/ManuGH/playctl/internal/session"
)

// AppConfig is the full process configuration.
type AppConfig struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`
}

// ServerConfig controls the HTTP control/metrics listener.
type ServerConfig struct {
	Listen            string        `yaml:"listen"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
}

// SessionConfig carries per-session playback tuning.
type SessionConfig struct {
	// CanPlayThroughMargin is how many seconds of readahead must be
	// buffered before a play-through projection is trusted.
	CanPlayThroughMargin time.Duration `yaml:"canPlayThroughMargin"`
	// ProgressInterval throttles download-progress notifications.
	ProgressInterval time.Duration `yaml:"progressInterval"`
	// StallTimeout is how long the download may go quiet before the owner
	// is told it stalled.
	StallTimeout time.Duration `yaml:"stallTimeout"`
	// DispatchQueueSize bounds the per-session control loop queue.
	DispatchQueueSize int `yaml:"dispatchQueueSize"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	s := session.DefaultConfig()
	return AppConfig{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Listen:            ":8088",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Session: SessionConfig{
			CanPlayThroughMargin: s.CanPlayThroughMargin,
			ProgressInterval:     s.ProgressInterval,
			StallTimeout:         s.StallTimeout,
			DispatchQueueSize:    s.DispatchQueueSize,
		},
	}
}

// Validate rejects configurations that cannot run.
func (c AppConfig) Validate() error {
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen: must not be empty")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.readHeaderTimeout: must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdownTimeout: must be positive")
	}
	if c.Session.CanPlayThroughMargin < 0 {
		return fmt.Errorf("session.canPlayThroughMargin: must not be negative")
	}
	if c.Session.ProgressInterval <= 0 {
		return fmt.Errorf("session.progressInterval: must be positive")
	}
	if c.Session.StallTimeout <= 0 {
		return fmt.Errorf("session.stallTimeout: must be positive")
	}
	if c.Session.StallTimeout < c.Session.ProgressInterval {
		return fmt.Errorf("session.stallTimeout: must not be shorter than session.progressInterval")
	}
	if c.Session.DispatchQueueSize <= 0 {
		return fmt.Errorf("session.dispatchQueueSize: must be positive")
	}
	return nil
}

// SessionConfig converts the tuning block into the session package's form.
func (c AppConfig) SessionConfig() session.Config {
	return session.Config{
		CanPlayThroughMargin: c.Session.CanPlayThroughMargin,
		ProgressInterval:     c.Session.ProgressInterval,
		StallTimeout:         c.Session.StallTimeout,
		DispatchQueueSize:    c.Session.DispatchQueueSize,
	}
}
