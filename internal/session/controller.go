// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session implements the media playback session controller: the
// single authority over a session's play state. It mediates between the
// resource layer, the decode engine and downstream stream sinks, and keeps
// transitions race-free across goroutines.
//
// Concurrency model: one mutex per controller is the session monitor.
// Engine callbacks arrive on engine goroutines and are marshaled onto the
// session's control loop before touching owner-visible state. Owner
// notifications are collected under the monitor and fired after it is
// released, so an owner that synchronously re-enters the session observes a
// consistent state and cannot deadlock.
package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/playctl/internal/dispatch"
	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/ports"
	"github.com/ManuGH/playctl/internal/session/stats"
)

const usecsPerSec = 1e6

// Deps are the external collaborators of a session. Engine and Resource are
// required; Owner and Graph may be nil for headless use.
type Deps struct {
	Engine   ports.DecodeEngine
	Resource ports.MediaResource
	Owner    ports.Owner
	Graph    ports.StreamGraph
}

// Controller owns one media session. Create with New, start the control
// loop with Run, then drive it with Load and the command methods.
type Controller struct {
	id     string
	cfg    Config
	logger zerolog.Logger
	loop   *dispatch.Loop

	mu      sync.Mutex
	pending []func() // owner notifications queued under mu, fired after unlock

	engine   ports.DecodeEngine
	resource ports.MediaResource
	owner    ports.Owner
	graph    ports.StreamGraph

	playState   model.PlayState
	next        *model.PendingState
	pendingSeek *model.SeekTarget

	currentTime float64 // seconds, owner-visible
	durationUS  int64   // -1 = unknown
	infinite    bool

	isDormant        bool
	isExitingDormant bool
	shuttingDown     bool

	pinnedForSeek     bool
	pausedForRateZero bool
	seekStartedAt     time.Time

	volume         float64
	playbackRate   float64
	preservesPitch bool

	decoderPosition  int64
	playbackPosition int64
	ignoreProgress   bool
	throughput       *stats.ThroughputEstimator

	decoded *decodedStream
	outputs []*outputBinding

	progress *progressTracker
}

// New builds a controller around the given collaborators. The control loop
// is not started; call Run on a dedicated goroutine.
func New(cfg Config, deps Deps) *Controller {
	cfg = cfg.withDefaults()
	id := uuid.NewString()
	c := &Controller{
		id:             id,
		cfg:            cfg,
		logger:         log.WithSession("session", id),
		loop:           dispatch.NewLoop(cfg.DispatchQueueSize),
		engine:         deps.Engine,
		resource:       deps.Resource,
		owner:          deps.Owner,
		graph:          deps.Graph,
		playState:      model.StatePaused,
		durationUS:     -1,
		playbackRate:   1.0,
		preservesPitch: true,
		throughput:     stats.NewThroughputEstimator(),
	}
	c.progress = newProgressTracker(c)
	return c
}

// ID returns the session's unique identifier.
func (c *Controller) ID() string { return c.id }

// Run executes the control loop until ctx is done or Close is called. Engine
// notifications are not delivered while Run is not running.
func (c *Controller) Run(ctx context.Context) error {
	return c.loop.Run(ctx)
}

// Events returns the notification surface to hand to a decode engine. Every
// call is marshaled onto the control loop.
func (c *Controller) Events() ports.EngineEvents {
	return &engineEvents{c: c}
}

// Load opens the resource, initializes the decode engine and enters LOADING.
// When clone is non-nil its engine is offered to the new engine as a donor.
func (c *Controller) Load(ctx context.Context, clone *Controller) error {
	if err := c.resource.Open(ctx); err != nil {
		return err
	}
	var donor ports.DecodeEngine
	if clone != nil {
		donor = clone.engine
	}
	if err := c.engine.Init(c.Events(), donor); err != nil {
		return err
	}

	c.lock()
	defer c.unlockAndNotify()
	c.applyEngineParamsLocked()
	c.changeStateLocked(model.StateLoading)
	c.throughput.Start()
	c.progress.startLocked()
	return nil
}

// Close shuts the session down, stops the control loop and releases the
// seek pin. Idempotent.
func (c *Controller) Close() error {
	c.shutdown(model.CauseClient)
	c.loop.Stop()

	c.lock()
	defer c.unlockAndNotify()
	c.unpinForSeekLocked()
	return nil
}

// applyEngineParamsLocked forwards parameters that were set before the
// engine existed.
func (c *Controller) applyEngineParamsLocked() {
	c.engine.SetDuration(c.durationUS)
	c.engine.SetVolume(c.volume)
	if c.playbackRate != 0 {
		c.engine.SetPlaybackRate(c.playbackRate)
	}
	c.engine.SetPreservesPitch(c.preservesPitch)
}

// lock enters the session monitor.
func (c *Controller) lock() { c.mu.Lock() }

// unlockAndNotify leaves the monitor and delivers queued owner
// notifications in order. Owner callbacks run outside the monitor so they
// may re-enter the session synchronously.
func (c *Controller) unlockAndNotify() {
	fns := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) queueLocked(fn func()) {
	c.pending = append(c.pending, fn)
}

// PlayState returns the current play state.
func (c *Controller) PlayState() model.PlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playState
}

// CurrentTime returns the owner-visible playback position in seconds.
func (c *Controller) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Duration returns the media duration in seconds, +Inf for infinite
// streams and NaN while unknown.
func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.infinite {
		return math.Inf(1)
	}
	if c.durationUS >= 0 {
		return float64(c.durationUS) / usecsPerSec
	}
	return math.NaN()
}

// IsSeeking reports whether a seek is being serviced.
func (c *Controller) IsSeeking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playState == model.StateSeeking
}

// IsEnded reports whether playback has reached a terminal position.
func (c *Controller) IsEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playState == model.StateEnded || c.playState == model.StateShutdown
}

// IsShutdown reports whether the session has been shut down.
func (c *Controller) IsShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuttingDown
}

// SetInfinite marks the stream as unbounded (e.g. live).
func (c *Controller) SetInfinite(infinite bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infinite = infinite
}

// IsInfinite reports whether the stream is unbounded.
func (c *Controller) IsInfinite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.infinite
}

// IsLogicallyPlaying reports whether the session is playing or committed to
// play once the current blocking state resolves.
func (c *Controller) IsLogicallyPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playState == model.StatePlaying ||
		(c.next != nil && c.next.State == model.StatePlaying)
}
