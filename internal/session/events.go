// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/ports"
)

// engineEvents adapts engine-goroutine notifications onto the session's
// control loop. Every callback is a post; the handlers run serialized with
// client operations and may take the session monitor freely.
type engineEvents struct {
	c *Controller
}

var _ ports.EngineEvents = (*engineEvents)(nil)

func (e *engineEvents) post(origin string, task func()) {
	if err := e.c.loop.Post(origin, task); err != nil {
		e.c.logger.Debug().Str("origin", origin).Msg("engine event dropped after stop")
	}
}

func (e *engineEvents) MetadataLoaded(info ports.MediaInfo) {
	e.post("metadata_loaded", func() { e.c.onMetadataLoaded(info) })
}

func (e *engineEvents) SeekingStarted() {
	e.post("seeking_started", e.c.onSeekingStarted)
}

func (e *engineEvents) SeekingStopped() {
	e.post("seeking_stopped", func() { e.c.onSeekingStopped(false) })
}

func (e *engineEvents) SeekingStoppedAtEnd() {
	e.post("seeking_stopped_at_end", func() { e.c.onSeekingStopped(true) })
}

func (e *engineEvents) PlaybackEnded() {
	e.post("playback_ended", e.c.onPlaybackEnded)
}

func (e *engineEvents) PlaybackPositionChanged() {
	e.post("playback_position_changed", e.c.onPlaybackPositionChanged)
}

func (e *engineEvents) DurationChanged() {
	e.post("duration_changed", e.c.onDurationChanged)
}

func (e *engineEvents) PlayingStateChanged() {
	e.post("playing_state_changed", e.c.onPlayingStateChanged)
}

func (e *engineEvents) NetworkError(err error) {
	e.post("network_error", func() { e.c.onNetworkError(err) })
}

func (e *engineEvents) DecodeError(err error) {
	e.post("decode_error", func() { e.c.onDecodeError(err) })
}

// onMetadataLoaded finishes the LOADING phase: it adopts the engine's
// duration, recomputes the byte-rate estimate, notifies the owner and
// resolves the deferred transition. During a dormancy exit the first
// metadata event only re-arms the pipeline.
func (c *Controller) onMetadataLoaded(info ports.MediaInfo) {
	c.lock()
	defer c.unlockAndNotify()

	if c.shuttingDown {
		return
	}
	if c.isDormant && !c.isExitingDormant {
		return
	}
	c.isExitingDormant = false
	c.isDormant = false

	c.durationUS = c.engine.DurationUS()
	if c.durationUS < 0 {
		c.infinite = true
	}
	c.updatePlaybackRateLocked()

	c.logger.Info().
		Int64(log.FieldDurationUS, c.durationUS).
		Bool("has_audio", info.HasAudio).
		Bool("has_video", info.HasVideo).
		Msg("metadata loaded")

	if o := c.owner; o != nil {
		c.queueLocked(func() { o.MetadataLoaded(info) })
		c.queueLocked(o.FirstFrameLoaded)
	}

	if c.playState != model.StateLoading {
		return
	}
	if c.pendingSeek != nil {
		c.changeStateLocked(model.StateSeeking)
		return
	}
	c.changeStateLocked(c.resolveNextLocked())
}

// onDurationChanged adopts a duration discovered mid-stream, such as a
// refined estimate from late index data.
func (c *Controller) onDurationChanged() {
	c.lock()
	defer c.unlockAndNotify()

	if c.shuttingDown || c.engine == nil {
		return
	}
	durationUS := c.engine.DurationUS()
	if durationUS == c.durationUS {
		return
	}
	old := c.durationUS
	c.durationUS = durationUS
	c.updatePlaybackRateLocked()

	c.logger.Debug().
		Int64("old_duration_us", old).
		Int64(log.FieldDurationUS, durationUS).
		Msg("duration changed")

	if o := c.owner; o != nil && durationUS >= 0 {
		seconds := float64(durationUS) / usecsPerSec
		c.queueLocked(func() { o.DurationChanged(seconds) })
	}
}

// failAndShutdown reports a fatal error to the owner and then tears the
// session down. The owner hears about the failure before observing the
// SHUTDOWN state.
func (c *Controller) failAndShutdown(cause model.ShutdownCause, err error, notify func(ports.Owner, error)) {
	c.lock()
	if c.shuttingDown {
		c.unlockAndNotify()
		return
	}
	if o := c.owner; o != nil {
		c.queueLocked(func() { notify(o, err) })
	}
	c.unlockAndNotify()

	c.logger.Error().Err(err).Str("cause", string(cause)).Msg("fatal media error")
	c.shutdown(cause)
}

func (c *Controller) onNetworkError(err error) {
	c.failAndShutdown(model.CauseNetworkError, err, func(o ports.Owner, e error) { o.NetworkError(e) })
}

func (c *Controller) onDecodeError(err error) {
	c.failAndShutdown(model.CauseDecodeError, err, func(o ports.Owner, e error) { o.DecodeError(e) })
}

// ResetConnectionState tears the session down because the owner is
// abandoning the underlying connection, for example on a source change.
func (c *Controller) ResetConnectionState() {
	c.lock()
	if c.shuttingDown {
		c.unlockAndNotify()
		return
	}
	if o := c.owner; o != nil {
		c.queueLocked(o.ConnectionReset)
	}
	c.unlockAndNotify()

	c.shutdown(model.CauseConnectionReset)
}
