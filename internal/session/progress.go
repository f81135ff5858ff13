// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"time"

	"golang.org/x/time/rate"
)

// progressTracker turns raw byte-arrival notifications into throttled
// owner progress events and detects download stalls. Progress fires at
// most once per configured interval; a stall fires once when no data has
// arrived for the stall timeout, and re-arms on the next byte.
type progressTracker struct {
	c       *Controller
	limiter *rate.Limiter

	lastData time.Time
	stalled  bool

	running bool
	stop    chan struct{}
}

func newProgressTracker(c *Controller) *progressTracker {
	return &progressTracker{
		c:       c,
		limiter: rate.NewLimiter(rate.Every(c.cfg.ProgressInterval), 1),
	}
}

// startLocked begins stall detection. Called with the monitor held.
func (p *progressTracker) startLocked() {
	if p.running {
		return
	}
	p.running = true
	p.lastData = nowFunc()
	p.stalled = false
	p.stop = make(chan struct{})
	go p.watch(p.stop)
}

// stopLocked halts stall detection. Called with the monitor held.
func (p *progressTracker) stopLocked() {
	if !p.running {
		return
	}
	p.running = false
	close(p.stop)
}

// watch periodically posts a stall check onto the control loop. The
// goroutine exits when the tracker stops or the loop shuts down.
func (p *progressTracker) watch(stop <-chan struct{}) {
	ticker := time.NewTicker(p.c.cfg.ProgressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.c.loop.Post("progress_tick", p.c.onProgressTick); err != nil {
				return
			}
		}
	}
}

// dataArrivedLocked records byte arrival, clears any stall and fires a
// throttled progress notification.
func (p *progressTracker) dataArrivedLocked() {
	p.lastData = nowFunc()
	p.stalled = false
	if p.c.ignoreProgress || p.c.owner == nil {
		return
	}
	if p.limiter.Allow() {
		o := p.c.owner
		p.c.queueLocked(o.DownloadProgressed)
	}
}

// onProgressTick runs on the control loop and fires the stall
// notification when the download has gone quiet for too long.
func (c *Controller) onProgressTick() {
	c.lock()
	defer c.unlockAndNotify()

	p := c.progress
	if c.shuttingDown || c.ignoreProgress || !p.running || p.stalled {
		return
	}
	if nowFunc().Sub(p.lastData) < c.cfg.StallTimeout {
		return
	}
	p.stalled = true
	if o := c.owner; o != nil {
		c.queueLocked(o.DownloadStalled)
	}
	c.logger.Debug().Msg("download stalled")
}

// NotifyBytesDownloaded informs the session that bytes arrived from the
// network. Feeds the throughput estimate, re-floors the resource read
// rate and emits throttled progress to the owner.
func (c *Controller) NotifyBytesDownloaded(bytes int64) {
	c.lock()
	defer c.unlockAndNotify()

	if c.shuttingDown {
		return
	}
	c.throughput.AddBytes(bytes)
	c.updatePlaybackRateLocked()
	c.progress.dataArrivedLocked()
}
