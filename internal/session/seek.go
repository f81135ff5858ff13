// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"time"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/metrics"
	"github.com/ManuGH/playctl/internal/session/model"
)

// nowFunc is replaceable in tests.
var nowFunc = time.Now

// Seek requests playback reposition to the given time in seconds. The
// request always overwrites any prior pending target (latest wins) and the
// owner-visible current time updates immediately. While the session is
// loading or seeking the target stays recorded and is applied when the
// blocking state resolves; otherwise the resource is pinned and the session
// enters SEEKING.
func (c *Controller) Seek(seconds float64, mode model.SeekMode) error {
	c.lock()
	defer c.unlockAndNotify()
	return c.seekLocked(seconds, mode)
}

func (c *Controller) seekLocked(seconds float64, mode model.SeekMode) error {
	if c.shuttingDown {
		return ErrShuttingDown
	}
	if seconds < 0 {
		return ErrNegativeSeek
	}

	target := model.SeekTarget{TimeUS: int64(seconds * usecsPerSec), Mode: mode}
	c.pendingSeek = &target
	c.currentTime = seconds
	metrics.IncSeek("requested")
	c.logger.Debug().
		Int64(log.FieldSeekTargetUS, target.TimeUS).
		Str(log.FieldSeekMode, mode.String()).
		Msg("seek requested")

	// Already loading or mid-seek: the recorded target is picked up when
	// the current operation resolves.
	if c.playState == model.StateLoading || c.playState == model.StateSeeking {
		return nil
	}

	paused := false
	if c.owner != nil {
		paused = c.owner.Paused()
	}
	if paused {
		c.next = model.Pending(model.StatePaused)
	} else {
		c.next = model.Pending(model.StatePlaying)
	}
	c.pinForSeekLocked()
	c.changeStateLocked(model.StateSeeking)
	return nil
}

// pinForSeekLocked asks the resource to retain cached bytes for the
// outstanding seek. Reference-counted at the boundary of a single seek:
// repeated pins are no-ops until the matching unpin.
func (c *Controller) pinForSeekLocked() {
	if c.resource == nil || c.pinnedForSeek {
		return
	}
	c.pinnedForSeek = true
	c.resource.Pin()
}

func (c *Controller) unpinForSeekLocked() {
	if c.resource == nil || !c.pinnedForSeek {
		return
	}
	c.pinnedForSeek = false
	c.resource.Unpin()
}

// onSeekingStarted runs on the control loop when the engine begins
// servicing a seek.
func (c *Controller) onSeekingStarted() {
	c.lock()
	defer c.unlockAndNotify()
	if c.shuttingDown {
		return
	}
	if o := c.owner; o != nil {
		c.queueLocked(o.SeekStarted)
	}
}

// onSeekingStopped runs on the control loop when the engine finishes a
// seek. If a newer target arrived meanwhile the session re-enters SEEKING
// and the intermediate completion is dropped; otherwise the resource is
// unpinned and the session resolves to the deferred state (or ENDED when
// the seek landed at the end of the media).
func (c *Controller) onSeekingStopped(atEnd bool) {
	c.lock()
	defer c.unlockAndNotify()
	if c.shuttingDown {
		return
	}

	seekWasAborted := false
	fireEnded := false
	if c.pendingSeek != nil {
		metrics.IncSeek("coalesced")
		c.changeStateLocked(model.StateSeeking)
		seekWasAborted = true
	} else {
		c.unpinForSeekLocked()
		if !c.seekStartedAt.IsZero() {
			metrics.SeekLatency.Observe(nowFunc().Sub(c.seekStartedAt).Seconds())
			c.seekStartedAt = time.Time{}
		}
		if atEnd {
			fireEnded = true
			c.next = nil
			c.changeStateLocked(model.StateEnded)
		} else {
			c.changeStateLocked(c.resolveNextLocked())
		}
	}

	c.playbackPositionChangedLocked()

	if seekWasAborted {
		return
	}
	metrics.IncSeek("completed")
	if o := c.owner; o != nil {
		c.queueLocked(o.SeekCompleted)
		if fireEnded {
			c.queueLocked(o.PlaybackEnded)
		}
	}
}
