// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"math"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/metrics"
	"github.com/ManuGH/playctl/internal/session/model"
)

// changeStateLocked is the single mutation point for playState. It consumes
// a matching deferred transition, rebalances the play-state stream blocker,
// forwards Play/Seek to the engine on entry to PLAYING/SEEKING and clears
// dormancy flags when leaving LOADING.
func (c *Controller) changeStateLocked(to model.PlayState) {
	if c.next != nil && c.next.State == to {
		c.next = nil
	}

	// Dormant sessions only leave LOADING through shutdown or the dormancy
	// exit path; SHUTDOWN is final.
	if (c.playState == model.StateLoading && c.isDormant && to != model.StateShutdown) ||
		c.playState == model.StateShutdown {
		return
	}

	if c.decoded != nil {
		blockForPlayState := to != model.StatePlaying
		if c.decoded.blockedForPlayState != blockForPlayState {
			delta := -1
			if blockForPlayState {
				delta = 1
			}
			c.decoded.source.ChangeExplicitBlockerCount(delta)
			metrics.IncBlockerDelta(blockReasonPlayState, delta)
			c.decoded.blockedForPlayState = blockForPlayState
		}
	}

	from := c.playState
	c.logger.Debug().
		Str(log.FieldOldState, from.String()).
		Str(log.FieldNewState, to.String()).
		Msg("play state changed")
	metrics.IncStateTransition(from.String(), to.String())
	c.playState = to

	c.applyStateToEngineLocked(to)

	if to != model.StateLoading {
		c.isDormant = false
		c.isExitingDormant = false
	}
}

// applyStateToEngineLocked forwards the transition to the decode engine.
// The pending seek target is consumed here, at the moment the state machine
// begins applying it.
func (c *Controller) applyStateToEngineLocked(to model.PlayState) {
	if c.engine == nil {
		return
	}
	switch to {
	case model.StatePlaying:
		c.engine.Play()
	case model.StateSeeking:
		if c.pendingSeek != nil {
			target := *c.pendingSeek
			c.pendingSeek = nil
			c.seekStartedAt = nowFunc()
			c.engine.Seek(target)
		}
	}
}

// resolveNextLocked consumes the deferred transition, defaulting to PAUSED.
func (c *Controller) resolveNextLocked() model.PlayState {
	if c.next == nil {
		return model.StatePaused
	}
	s := c.next.State
	c.next = nil
	return s
}

// Play starts or resumes playback. While the session is loading or seeking
// the request is deferred and applied once when the blocking state
// resolves; on an ended session it seeks back to the start first.
func (c *Controller) Play() error {
	c.lock()
	defer c.unlockAndNotify()
	return c.playLocked()
}

func (c *Controller) playLocked() error {
	if c.shuttingDown {
		return ErrShuttingDown
	}
	if c.pausedForRateZero {
		c.next = model.Pending(model.StatePlaying)
		return nil
	}
	if c.playState == model.StateLoading || c.playState == model.StateSeeking {
		c.next = model.Pending(model.StatePlaying)
		return nil
	}
	if c.playState == model.StateEnded {
		return c.seekLocked(0, model.SeekPrevSyncPoint)
	}
	c.changeStateLocked(model.StatePlaying)
	return nil
}

// Pause halts playback. While loading, seeking or ended the request is
// deferred via the pending transition.
func (c *Controller) Pause() error {
	c.lock()
	defer c.unlockAndNotify()
	return c.pauseLocked()
}

func (c *Controller) pauseLocked() error {
	if c.shuttingDown {
		return ErrShuttingDown
	}
	if c.playState == model.StateLoading ||
		c.playState == model.StateSeeking ||
		c.playState == model.StateEnded {
		c.next = model.Pending(model.StatePaused)
		return nil
	}
	c.changeStateLocked(model.StatePaused)
	return nil
}

// SetVolume caches the volume and forwards it to the engine when present.
func (c *Controller) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = volume
	if c.engine != nil {
		c.engine.SetVolume(volume)
	}
}

// SetPlaybackRate adjusts the playback speed. Rate zero pauses the session
// and pins it paused; restoring a non-zero rate resumes playback if the
// owner is not holding it paused.
func (c *Controller) SetPlaybackRate(rate float64) {
	c.lock()
	defer c.unlockAndNotify()

	if rate == 0 {
		c.pausedForRateZero = true
		c.playbackRate = rate
		_ = c.pauseLocked()
		return
	}
	if c.pausedForRateZero {
		c.pausedForRateZero = false
		if c.owner != nil && !c.owner.Paused() {
			_ = c.playLocked()
		}
	}
	c.playbackRate = rate
	if c.engine != nil {
		c.engine.SetPlaybackRate(rate)
	}
}

// SetPreservesPitch caches the pitch-preservation flag and forwards it.
func (c *Controller) SetPreservesPitch(preserve bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preservesPitch = preserve
	if c.engine != nil {
		c.engine.SetPreservesPitch(preserve)
	}
}

// SetDuration sets the media duration in seconds as declared by the owner.
// Infinity marks the stream unbounded; NaN resets it to unknown.
func (c *Controller) SetDuration(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case math.IsInf(seconds, 1):
		c.infinite = true
	case math.IsNaN(seconds):
		c.durationUS = -1
		c.infinite = true
	default:
		c.durationUS = int64(math.Round(seconds * usecsPerSec))
	}
	if c.engine != nil {
		c.engine.SetDuration(c.durationUS)
	}
	c.updatePlaybackRateLocked()
}

// SetDormantIfNecessary suspends or resumes the session's decode pipeline.
// Entering dormant tears the decoded stream down and remembers the current
// time as the resume seek target; the exit completes when the engine
// reports metadata loaded with the exiting flag set.
func (c *Controller) SetDormantIfNecessary(dormant bool) {
	c.lock()
	defer c.unlockAndNotify()

	if c.engine == nil || !c.engine.DormantNeeded() ||
		c.playState == model.StateShutdown || c.isDormant == dormant {
		return
	}

	if dormant {
		c.destroyDecodedStreamLocked()
		c.engine.SetDormant(true)

		c.pendingSeek = &model.SeekTarget{
			TimeUS: int64(c.currentTime * usecsPerSec),
			Mode:   model.SeekAccurate,
		}
		c.next = model.Pending(c.playState)
		c.isDormant = true
		c.isExitingDormant = false
		c.changeStateLocked(model.StateLoading)
		return
	}

	if c.playState == model.StateLoading {
		c.engine.SetDormant(false)
		c.isExitingDormant = true
	}
}

// Shutdown tears the session down in order: fence, stream pipeline, decode
// engine, resource, state, progress, owner. Idempotent; replayed
// notifications after the fence are dropped silently.
func (c *Controller) Shutdown() {
	c.shutdown(model.CauseClient)
}

func (c *Controller) shutdown(cause model.ShutdownCause) {
	c.mu.Lock()
	if c.shuttingDown {
		c.mu.Unlock()
		return
	}
	c.shuttingDown = true
	c.destroyDecodedStreamLocked()
	eng, res := c.engine, c.resource
	c.mu.Unlock()

	// Signal the engine to unblock and terminate even if it is waiting on
	// resources, then abort in-flight byte-range requests so neither side
	// can deadlock waiting for the other.
	if eng != nil {
		eng.Shutdown()
	}
	if res != nil {
		_ = res.Close()
	}

	c.lock()
	c.changeStateLocked(model.StateShutdown)
	c.progress.stopLocked()
	c.throughput.Stop()
	c.owner = nil
	c.unlockAndNotify()

	metrics.IncShutdown(string(cause))
	c.logger.Info().Str("cause", string(cause)).Msg("session shut down")
}
