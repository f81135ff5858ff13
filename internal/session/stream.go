// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/metrics"
	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/ports"
)

// Block-reason labels for the decoded-stream blocker accounting.
const (
	blockReasonPlayState        = "play_state"
	blockReasonEngineNotPlaying = "engine_not_playing"
	blockReasonDisconnected     = "disconnected"
)

// decodedStream is the single shared decoded-stream source of a session.
// Destroyed and recreated whenever the playback origin time changes
// discontinuously. All fields are guarded by the session monitor.
type decodedStream struct {
	source          ports.StreamSource
	initialTimeUS   int64
	nextVideoTimeUS int64

	// Named block reasons. Each carries exactly one block unit on the
	// source while set; toggles are idempotent so repeated notifications
	// cannot double-count.
	blockedForPlayState        bool
	blockedForEngineNotPlaying bool

	finishSentAudio bool
	finishSentVideo bool
}

// outputBinding connects one externally owned sink to the decoded stream.
// The session owns the binding and the port, never the sink.
type outputBinding struct {
	sink            ports.StreamSink
	port            ports.SinkPort
	finishWhenEnded bool
}

// AddOutputStream attaches a sink to the session's decoded stream, lazily
// creating the stream source seeded from the engine's current time. With
// finishWhenEnded the sink is finished and detached when playback ends.
func (c *Controller) AddOutputStream(sink ports.StreamSink, finishWhenEnded bool) error {
	c.lock()
	defer c.unlockAndNotify()

	if c.shuttingDown {
		return ErrShuttingDown
	}
	if c.graph == nil {
		return ErrNoStreamGraph
	}

	if c.decoded == nil {
		var startUS int64
		if c.engine != nil {
			startUS = c.engine.CurrentTimeUS()
		}
		c.recreateDecodedStreamLocked(startUS)
	}

	b := &outputBinding{sink: sink, finishWhenEnded: finishWhenEnded}
	c.outputs = append(c.outputs, b)
	c.connectOutputLocked(b)
	if finishWhenEnded {
		sink.SetAutofinish(true)
	}
	c.logger.Debug().Int(log.FieldSinkCount, len(c.outputs)).Msg("output stream attached")
	return nil
}

// connectOutputLocked wires a binding to the decoded-stream source. The
// port blocks bidirectionally, so once connected the source controls
// delivery and the sink's own explicit block is released.
func (c *Controller) connectOutputLocked(b *outputBinding) {
	b.port = b.sink.AllocateInputPort(c.decoded.source)
	b.sink.ChangeExplicitBlockerCount(-1)
	metrics.IncBlockerDelta(blockReasonDisconnected, -1)
}

// destroyDecodedStreamLocked tears the source down. Every surviving sink
// loses its port, so it is explicitly blocked first: a sink without an
// upstream must never be left implicitly unblocked.
func (c *Controller) destroyDecodedStreamLocked() {
	for i := len(c.outputs) - 1; i >= 0; i-- {
		b := c.outputs[i]
		if b.sink.Destroyed() {
			// The sink was torn down externally; drop the binding.
			if b.port != nil {
				b.port.Destroy()
			}
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			continue
		}
		b.sink.ChangeExplicitBlockerCount(1)
		metrics.IncBlockerDelta(blockReasonDisconnected, 1)
		if b.port != nil {
			b.port.Destroy()
			b.port = nil
		}
	}

	if c.decoded != nil {
		c.decoded.source.Destroy()
		c.decoded = nil
	}
}

// recreateDecodedStreamLocked rebuilds the source at a new origin time and
// reconnects all still-live bindings, then re-applies both block reasons.
func (c *Controller) recreateDecodedStreamLocked(startTimeUS int64) {
	c.destroyDecodedStreamLocked()

	c.logger.Debug().Int64("start_time_us", startTimeUS).Msg("recreating decoded stream")
	c.decoded = &decodedStream{
		source:          c.graph.CreateSource(),
		initialTimeUS:   startTimeUS,
		nextVideoTimeUS: startTimeUS,
	}

	for i := len(c.outputs) - 1; i >= 0; i-- {
		b := c.outputs[i]
		if b.sink.Destroyed() {
			// No port to destroy; all ports went away with the old source.
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			continue
		}
		c.connectOutputLocked(b)
	}

	c.updateStreamBlockingForEngineLocked()

	c.decoded.blockedForPlayState = c.playState != model.StatePlaying
	if c.decoded.blockedForPlayState {
		c.decoded.source.ChangeExplicitBlockerCount(1)
		metrics.IncBlockerDelta(blockReasonPlayState, 1)
	}
}

// updateStreamBlockingForEngineLocked rebalances the engine-not-playing
// block reason. Idempotent: nothing happens unless the condition flipped.
// Engine-goroutine notifications reach this only via the control loop,
// because stream primitives are not safe for concurrent mutation.
func (c *Controller) updateStreamBlockingForEngineLocked() {
	if c.decoded == nil {
		return
	}
	block := c.engine != nil && !c.engine.IsPlaying() && !c.engine.IsCompleted()
	if block == c.decoded.blockedForEngineNotPlaying {
		return
	}
	c.decoded.blockedForEngineNotPlaying = block
	delta := -1
	if block {
		delta = 1
	}
	c.decoded.source.ChangeExplicitBlockerCount(delta)
	metrics.IncBlockerDelta(blockReasonEngineNotPlaying, delta)
}

// onPlayingStateChanged runs on the control loop when the engine's
// playing/completed status flips.
func (c *Controller) onPlayingStateChanged() {
	c.lock()
	defer c.unlockAndNotify()
	if c.shuttingDown {
		return
	}
	c.updateStreamBlockingForEngineLocked()
}

// onPlaybackEnded runs on the control loop when the engine played to the
// end. Finish-when-ended sinks are finished, disconnected and re-blocked
// before their bindings are dropped.
func (c *Controller) onPlaybackEnded() {
	c.lock()
	defer c.unlockAndNotify()

	if c.shuttingDown ||
		c.playState == model.StateSeeking ||
		(c.playState == model.StateLoading && c.isDormant) {
		return
	}

	for i := len(c.outputs) - 1; i >= 0; i-- {
		b := c.outputs[i]
		if b.sink.Destroyed() {
			if b.port != nil {
				b.port.Destroy()
			}
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			continue
		}
		if b.finishWhenEnded {
			// Autofinish should already have finished the sink when the
			// source did; doing it here too is harmless.
			b.sink.Finish()
			if b.port != nil {
				b.port.Destroy()
				b.port = nil
			}
			b.sink.ChangeExplicitBlockerCount(1)
			metrics.IncBlockerDelta(blockReasonDisconnected, 1)
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
		}
	}

	c.playbackPositionChangedLocked()
	c.changeStateLocked(model.StateEnded)

	if o := c.owner; o != nil {
		c.queueLocked(o.PlaybackEnded)
	}
	if c.infinite {
		c.infinite = false
	}
}

// OutputStreamCount returns the number of attached sinks.
func (c *Controller) OutputStreamCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outputs)
}
