// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"errors"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/stats"
)

// Floors for the byte rate reported to the resource cache. A reliable
// estimate is clamped away from zero so readahead never stops entirely;
// an unreliable one is clamped high so the cache fetches aggressively
// until the estimate settles.
const (
	minReliableRate   = 1
	minUnreliableRate = 10000
)

// Statistics returns a point-in-time snapshot of transfer and playback
// progress.
func (c *Controller) Statistics() model.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statisticsLocked()
}

func (c *Controller) statisticsLocked() model.Statistics {
	s := model.Statistics{
		TotalBytes:       -1,
		DecoderPosition:  c.decoderPosition,
		PlaybackPosition: c.playbackPosition,
	}
	if c.resource != nil {
		s.DownloadRate, s.DownloadRateReliable = c.resource.DownloadRate()
		s.TotalBytes = c.resource.Length()
		s.DownloadPosition = c.resource.CachedDataEnd(c.decoderPosition)
	}
	s.PlaybackRate, s.PlaybackRateReliable =
		stats.ComputePlaybackRate(c.durationUS, s.TotalBytes, c.throughput)
	return s
}

// CanPlayThrough reports whether playback is projected to reach the end
// without stalling on the download.
func (c *Controller) CanPlayThrough() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return false
	}
	return stats.CanPlayThrough(c.statisticsLocked(), c.cfg.CanPlayThroughMargin.Seconds())
}

// updatePlaybackRateLocked recomputes the consumption byte rate and hands
// the floored value to the resource cache for readahead scheduling.
func (c *Controller) updatePlaybackRateLocked() {
	if c.resource == nil {
		return
	}
	rate, reliable := stats.ComputePlaybackRate(c.durationUS, c.resource.Length(), c.throughput)
	if reliable {
		if rate < minReliableRate {
			rate = minReliableRate
		}
	} else if rate < minUnreliableRate {
		rate = minUnreliableRate
	}
	c.resource.SetPlaybackRate(int(rate))
	c.logger.Trace().
		Float64(log.FieldBytesPerSec, rate).
		Bool("reliable", reliable).
		Msg("playback byte rate updated")
}

// NotifyBytesConsumed records that the decode engine consumed bytes at a
// resource offset, advancing the decoder position.
func (c *Controller) NotifyBytesConsumed(bytes, offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown || c.ignoreProgress {
		return
	}
	c.decoderPosition = offset + bytes
}

// UpdatePlaybackOffset advances the last-played byte offset. Offsets only
// move forward; a stale notification cannot rewind the statistic.
func (c *Controller) UpdatePlaybackOffset(offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset > c.playbackPosition {
		c.playbackPosition = offset
	}
}

// onPlaybackPositionChanged runs on the control loop when the engine
// reports cursor movement.
func (c *Controller) onPlaybackPositionChanged() {
	c.lock()
	defer c.unlockAndNotify()
	c.playbackPositionChangedLocked()
}

// playbackPositionChangedLocked refreshes the owner-visible current time
// from the engine and queues a time update when it moved. While seeking
// the optimistic target time stands until the seek resolves, and while
// paused the last observed time stands so a stale engine cursor cannot
// drag it backwards.
func (c *Controller) playbackPositionChangedLocked() {
	if c.shuttingDown || c.engine == nil {
		return
	}
	if c.playState == model.StateSeeking || c.playState == model.StatePaused {
		return
	}
	seconds := float64(c.engine.CurrentTimeUS()) / usecsPerSec
	if seconds == c.currentTime {
		return
	}
	c.currentTime = seconds
	if o := c.owner; o != nil {
		c.queueLocked(func() { o.TimeUpdate(seconds) })
	}
}

// NotifyDownloadEnded informs the session that the resource transfer
// finished. A nil error is a completed download; ErrLoadAborted reports
// owner-initiated abandonment without killing the session; ErrStreamClosed
// is the resource observing our own teardown; anything else is fatal.
func (c *Controller) NotifyDownloadEnded(err error) {
	switch {
	case err == nil:
		c.lock()
		c.throughput.Stop()
		c.updatePlaybackRateLocked()
		c.progress.dataArrivedLocked()
		c.unlockAndNotify()
	case errors.Is(err, ErrLoadAborted):
		c.lock()
		if o := c.owner; o != nil && !c.shuttingDown {
			c.queueLocked(o.LoadAborted)
		}
		c.unlockAndNotify()
	case errors.Is(err, ErrStreamClosed):
		// The resource went away underneath us during teardown.
	default:
		c.onNetworkError(err)
	}
}

// StopProgressUpdates suspends byte-position accounting, pinning both
// positions to the current read offset. Used across discontinuities where
// interim offsets would corrupt the statistics.
func (c *Controller) StopProgressUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ignoreProgress = true
	if c.resource != nil {
		pos := c.resource.Tell()
		c.decoderPosition = pos
		c.playbackPosition = pos
	}
}

// StartProgressUpdates resumes byte-position accounting from the current
// read offset.
func (c *Controller) StartProgressUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ignoreProgress = false
	if c.resource != nil {
		pos := c.resource.Tell()
		c.decoderPosition = pos
		c.playbackPosition = pos
	}
}
