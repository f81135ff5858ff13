// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package testkit provides scriptable in-memory implementations of the
// session ports for tests and playback simulation. All doubles are safe
// for concurrent use.
package testkit

import (
	"context"
	"sync"

	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/ports"
)

// Engine is a scriptable decode engine. Tests drive the session by calling
// the controller's command surface and then firing engine notifications
// through the EngineEvents handed over at Init.
type Engine struct {
	mu sync.Mutex

	events ports.EngineEvents
	donor  ports.DecodeEngine

	playing   bool
	completed bool
	dormant   bool

	durationUS int64
	currentUS  int64
	volume     float64
	rate       float64
	pitch      bool

	NeedsDormant bool
	InitErr      error

	playCalls     int
	shutdownCalls int
	seekTargets   []model.SeekTarget
}

var _ ports.DecodeEngine = (*Engine)(nil)

// NewEngine returns an idle engine with unknown duration.
func NewEngine() *Engine {
	return &Engine{durationUS: -1}
}

func (e *Engine) Init(events ports.EngineEvents, donor ports.DecodeEngine) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.InitErr != nil {
		return e.InitErr
	}
	e.events = events
	e.donor = donor
	return nil
}

func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	e.completed = false
	e.playCalls++
}

func (e *Engine) Seek(target model.SeekTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekTargets = append(e.seekTargets, target)
	e.currentUS = target.TimeUS
}

func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
}

func (e *Engine) SetPlaybackRate(r float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = r
}

func (e *Engine) SetPreservesPitch(p bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pitch = p
}

func (e *Engine) SetDuration(us int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.durationUS = us
}

func (e *Engine) SetDormant(dormant bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dormant = dormant
}

func (e *Engine) DormantNeeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.NeedsDormant
}

func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdownCalls++
	e.playing = false
}

func (e *Engine) DurationUS() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durationUS
}

func (e *Engine) CurrentTimeUS() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentUS
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) IsCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed
}

// Events returns the notification surface captured at Init.
func (e *Engine) Events() ports.EngineEvents {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

// Donor returns the engine a clone Load offered at Init.
func (e *Engine) Donor() ports.DecodeEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.donor
}

// AdvanceTo fakes decode progress to the given time.
func (e *Engine) AdvanceTo(us int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentUS = us
}

// SetCompleted fakes decoding to the end of the media.
func (e *Engine) SetCompleted(done bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = done
	if done {
		e.playing = false
	}
}

// PlayCalls returns how often Play was invoked.
func (e *Engine) PlayCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCalls
}

// ShutdownCalls returns how often Shutdown was invoked.
func (e *Engine) ShutdownCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdownCalls
}

// SeekTargets returns every target forwarded to the engine, in order.
func (e *Engine) SeekTargets() []model.SeekTarget {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.SeekTarget, len(e.seekTargets))
	copy(out, e.seekTargets)
	return out
}

// Dormant reports the last dormancy setting.
func (e *Engine) Dormant() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dormant
}

// Resource is an in-memory media resource with settable byte counters.
type Resource struct {
	mu sync.Mutex

	opened bool
	closed bool

	pins       int
	ratePerSec int
	length     int64
	cachedEnd  int64
	dlRate     float64
	dlReliable bool
	tellPos    int64
	OpenErr    error
}

var _ ports.MediaResource = (*Resource)(nil)

// NewResource returns an unopened resource of unknown length.
func NewResource() *Resource {
	return &Resource{length: -1}
}

func (r *Resource) Open(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OpenErr != nil {
		return r.OpenErr
	}
	r.opened = true
	return nil
}

func (r *Resource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Resource) Pin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins++
}

func (r *Resource) Unpin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins--
}

func (r *Resource) SetPlaybackRate(bytesPerSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratePerSec = bytesPerSec
}

func (r *Resource) Length() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

func (r *Resource) CachedDataEnd(pos int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cachedEnd > pos {
		return r.cachedEnd
	}
	return pos
}

func (r *Resource) DownloadRate() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dlRate, r.dlReliable
}

func (r *Resource) Tell() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tellPos
}

// SetLength sets the reported resource length in bytes.
func (r *Resource) SetLength(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.length = n
}

// SetCachedEnd sets the end of the contiguous cached range.
func (r *Resource) SetCachedEnd(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cachedEnd = n
}

// SetDownloadRate sets the reported transfer rate.
func (r *Resource) SetDownloadRate(rate float64, reliable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dlRate = rate
	r.dlReliable = reliable
}

// SetTell sets the current read offset.
func (r *Resource) SetTell(pos int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tellPos = pos
}

// Pins returns the current pin count.
func (r *Resource) Pins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pins
}

// RatePerSec returns the last readahead byte rate handed to the cache.
func (r *Resource) RatePerSec() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ratePerSec
}

// Closed reports whether Close was called.
func (r *Resource) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
