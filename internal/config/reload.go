// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/playctl/internal/log"
)

// Holder keeps the current configuration and reloads it atomically from
// file. A reload that fails validation keeps the old configuration. The
// log level is applied on every successful reload; other fields reach
// subscribers through registered listeners.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig

	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewHolder wraps an initial configuration.
func NewHolder(initial AppConfig, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:    initial,
		loader:     loader,
		configPath: configPath,
		logger:     log.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a channel that receives every successfully reloaded
// configuration. Sends are non-blocking; a slow listener misses updates.
func (h *Holder) Subscribe(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// Reload re-runs the loader and swaps the configuration in if it
// validates. The new log level takes effect immediately.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(log.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str(log.FieldEvent, "config.reload_failed").
			Msg("configuration reload failed, keeping previous configuration")
		return err
	}

	h.mu.Lock()
	h.current = newCfg
	h.mu.Unlock()

	_ = log.SetLevel(newCfg.Log.Level) // level already validated
	h.notify(newCfg)
	h.logger.Info().Str(log.FieldEvent, "config.reload_ok").
		Str("log_level", newCfg.Log.Level).Msg("configuration reloaded")
	return nil
}

func (h *Holder) notify(cfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()
	for _, ch := range h.reloadListeners {
		select {
		case ch <- cfg:
		default:
		}
	}
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. Editors that replace the file are handled by watching the parent
// directory and filtering on the file name.
func (h *Holder) Watch(ctx context.Context) error {
	if h.configPath == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(h.configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(h.configPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := h.Reload(ctx); err != nil {
				continue
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
