// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package registry tracks live playback sessions so process shutdown can
// tear them down in a bounded, orderly way.
package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/metrics"
	"github.com/ManuGH/playctl/internal/session"
)

// Registry is a concurrency-safe set of live session controllers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session.Controller
	closed   bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*session.Controller)}
}

// Register adds a session. Returns false when the registry is already
// closed; the caller must then shut the session down itself.
func (r *Registry) Register(c *session.Controller) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, ok := r.sessions[c.ID()]; ok {
		return true
	}
	r.sessions[c.ID()] = c
	metrics.IncActiveSessions()
	return true
}

// Unregister removes a session. Safe to call for sessions never registered.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	metrics.DecActiveSessions()
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*session.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	return c, ok
}

// IDs returns the ids of all registered sessions.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ShutdownAll closes every registered session concurrently and marks the
// registry closed. Further Register calls fail. Respects ctx for the
// overall deadline.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	all := make([]*session.Controller, 0, len(r.sessions))
	for _, c := range r.sessions {
		all = append(all, c)
	}
	r.sessions = make(map[string]*session.Controller)
	r.mu.Unlock()

	logger := log.WithComponent("registry")
	logger.Info().Int("sessions", len(all)).Msg("shutting down all sessions")

	g, _ := errgroup.WithContext(ctx)
	for _, c := range all {
		c := c
		g.Go(func() error {
			err := c.Close()
			metrics.DecActiveSessions()
			return err
		})
	}
	return g.Wait()
}
