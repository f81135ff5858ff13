// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the HTTP control surface: health, metrics and a
// small REST API over playback sessions.
package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/registry"
	"github.com/ManuGH/playctl/internal/session"
	"github.com/ManuGH/playctl/internal/session/model"
)

// SessionFactory creates, registers and starts a new session. The factory
// owns collaborator wiring; the API layer never sees engines or resources.
type SessionFactory func(r *http.Request) (*session.Controller, error)

// Server is the HTTP control surface.
type Server struct {
	reg        *registry.Registry
	newSession SessionFactory
	logger     zerolog.Logger
}

// NewServer builds the control surface over a registry and a factory.
func NewServer(reg *registry.Registry, factory SessionFactory) *Server {
	return &Server{
		reg:        reg,
		newSession: factory,
		logger:     log.WithComponent("api"),
	}
}

// Router returns the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/play", s.handlePlay)
			r.Post("/pause", s.handlePause)
			r.Post("/seek", s.handleSeek)
			r.Post("/rate", s.handleRate)
			r.Post("/volume", s.handleVolume)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.newSession == nil {
		writeError(w, http.StatusNotImplemented, "session creation not configured")
		return
	}
	c, err := s.newSession(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("session creation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !s.reg.Register(c) {
		_ = c.Close()
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID()})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	out := make([]entry, 0)
	for _, id := range s.reg.IDs() {
		if c, ok := s.reg.Get(id); ok {
			out = append(out, entry{ID: id, State: c.PlayState().String()})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// sessionView is the owner-facing snapshot of one session.
type sessionView struct {
	ID             string           `json:"id"`
	State          string           `json:"state"`
	CurrentTime    float64          `json:"currentTime"`
	Duration       float64          `json:"duration,omitempty"`
	Infinite       bool             `json:"infinite"`
	CanPlayThrough bool             `json:"canPlayThrough"`
	Statistics     model.Statistics `json:"statistics"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	view := sessionView{
		ID:             c.ID(),
		State:          c.PlayState().String(),
		CurrentTime:    c.CurrentTime(),
		Infinite:       c.IsInfinite(),
		CanPlayThrough: c.CanPlayThrough(),
		Statistics:     c.Statistics(),
	}
	if d := c.Duration(); !math.IsNaN(d) && !math.IsInf(d, 0) {
		view.Duration = d
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	_ = c.Close()
	s.reg.Unregister(c.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.command(w, c.Play())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.command(w, c.Pause())
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Time float64 `json:"time"`
		Mode string  `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mode := model.SeekAccurate
	if body.Mode == model.SeekPrevSyncPoint.String() {
		mode = model.SeekPrevSyncPoint
	}
	s.command(w, c.Seek(body.Time, mode))
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.SetPlaybackRate(body.Rate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.SetVolume(body.Volume)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	id := chi.URLParam(r, "id")
	c, ok := s.reg.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return nil, false
	}
	return c, true
}

func (s *Server) command(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrShuttingDown):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNegativeSeek):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
