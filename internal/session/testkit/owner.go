// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package testkit

import (
	"sync"

	"github.com/ManuGH/playctl/internal/session/ports"
)

// Owner records every notification it receives, in order, and exposes a
// settable paused flag.
type Owner struct {
	mu     sync.Mutex
	events []string
	paused bool

	timeUpdates     []float64
	durationUpdates []float64
	errs            []error
	info            ports.MediaInfo
}

var _ ports.Owner = (*Owner)(nil)

// NewOwner returns a recorder reporting paused=true, matching an element
// that has not called play yet.
func NewOwner() *Owner { return &Owner{paused: true} }

func (o *Owner) record(ev string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *Owner) MetadataLoaded(info ports.MediaInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "metadata_loaded")
	o.info = info
}

func (o *Owner) FirstFrameLoaded()   { o.record("first_frame_loaded") }
func (o *Owner) SeekStarted()        { o.record("seek_started") }
func (o *Owner) SeekCompleted()      { o.record("seek_completed") }
func (o *Owner) PlaybackEnded()      { o.record("playback_ended") }
func (o *Owner) LoadAborted()        { o.record("load_aborted") }
func (o *Owner) ConnectionReset()    { o.record("connection_reset") }
func (o *Owner) DownloadProgressed() { o.record("download_progressed") }
func (o *Owner) DownloadStalled()    { o.record("download_stalled") }

func (o *Owner) NetworkError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "network_error")
	o.errs = append(o.errs, err)
}

func (o *Owner) DecodeError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "decode_error")
	o.errs = append(o.errs, err)
}

func (o *Owner) DurationChanged(seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "duration_changed")
	o.durationUpdates = append(o.durationUpdates, seconds)
}

func (o *Owner) TimeUpdate(seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "time_update")
	o.timeUpdates = append(o.timeUpdates, seconds)
}

func (o *Owner) Paused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// SetPaused sets the flag returned by Paused.
func (o *Owner) SetPaused(paused bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = paused
}

// Events returns a copy of all recorded notification names, in order.
func (o *Owner) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	copy(out, o.events)
	return out
}

// Saw reports whether the named notification was recorded at least once.
func (o *Owner) Saw(ev string) bool {
	for _, e := range o.Events() {
		if e == ev {
			return true
		}
	}
	return false
}

// Count returns how often the named notification was recorded.
func (o *Owner) Count(ev string) int {
	n := 0
	for _, e := range o.Events() {
		if e == ev {
			n++
		}
	}
	return n
}

// TimeUpdates returns every reported position, in order.
func (o *Owner) TimeUpdates() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]float64, len(o.timeUpdates))
	copy(out, o.timeUpdates)
	return out
}

// DurationUpdates returns every reported duration, in order.
func (o *Owner) DurationUpdates() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]float64, len(o.durationUpdates))
	copy(out, o.durationUpdates)
	return out
}

// Info returns the media info from the last MetadataLoaded notification.
func (o *Owner) Info() ports.MediaInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.info
}

// Errors returns every error passed to NetworkError or DecodeError.
func (o *Owner) Errors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]error, len(o.errs))
	copy(out, o.errs)
	return out
}
