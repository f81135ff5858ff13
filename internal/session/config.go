// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "time"

// Config carries per-session tuning. Zero values are replaced by defaults.
type Config struct {
	// CanPlayThroughMargin is how much estimated playback time must be
	// buffered past the playback position before CanPlayThrough trusts a
	// projected win. Kept configurable; the historical default of one
	// second is suspiciously small but long-standing.
	CanPlayThroughMargin time.Duration

	// ProgressInterval is the minimum spacing of DownloadProgressed
	// notifications.
	ProgressInterval time.Duration

	// StallTimeout is how long the download may be silent before
	// DownloadStalled fires.
	StallTimeout time.Duration

	// DispatchQueueSize bounds the control-loop task queue.
	DispatchQueueSize int
}

// DefaultConfig returns the standard session tuning.
func DefaultConfig() Config {
	return Config{
		CanPlayThroughMargin: time.Second,
		ProgressInterval:     350 * time.Millisecond,
		StallTimeout:         3 * time.Second,
		DispatchQueueSize:    256,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CanPlayThroughMargin <= 0 {
		c.CanPlayThroughMargin = d.CanPlayThroughMargin
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = d.ProgressInterval
	}
	if c.StallTimeout <= 0 {
		c.StallTimeout = d.StallTimeout
	}
	if c.DispatchQueueSize <= 0 {
		c.DispatchQueueSize = d.DispatchQueueSize
	}
	return c
}
