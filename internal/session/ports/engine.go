// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "github.com/ManuGH/playctl/internal/session/model"

// MediaInfo describes the streams discovered when metadata loads.
type MediaInfo struct {
	HasAudio      bool
	HasVideo      bool
	AudioChannels int
	AudioRate     int
}

// DecodeEngine is the worker-side component that turns resource bytes into
// timed frames. The session controller is the only caller of its lifecycle
// operations. All methods are fire-and-forget from the controller's point of
// view; results arrive through EngineEvents.
type DecodeEngine interface {
	// Init starts the engine. Events receives asynchronous notifications;
	// clone, when non-nil, is an already-initialized engine to share decoded
	// state with.
	Init(events EngineEvents, clone DecodeEngine) error

	Play()
	Seek(target model.SeekTarget)

	SetVolume(volume float64)
	SetPlaybackRate(rate float64)
	SetPreservesPitch(preserve bool)
	SetDuration(durationUS int64)

	// SetDormant suspends or resumes the decode pipeline while the session
	// intends to come back later.
	SetDormant(dormant bool)
	// DormantNeeded reports whether this engine supports dormant mode.
	DormantNeeded() bool

	// Shutdown unblocks and terminates the engine even if it is waiting on
	// resources. It must not block on outstanding work.
	Shutdown()

	// DurationUS returns the media duration in microseconds, -1 if unknown.
	DurationUS() int64
	// CurrentTimeUS returns the engine's playback cursor in microseconds.
	CurrentTimeUS() int64

	// IsPlaying reports whether the engine is actively advancing playback.
	IsPlaying() bool
	// IsCompleted reports whether the engine has decoded to the end.
	IsCompleted() bool
}

// EngineEvents is the notification surface the controller hands to the
// engine at Init. Implementations marshal every call onto the session's
// control loop; engines may invoke them from any goroutine.
type EngineEvents interface {
	MetadataLoaded(info MediaInfo)
	SeekingStarted()
	SeekingStopped()
	SeekingStoppedAtEnd()
	PlaybackEnded()
	// PlaybackPositionChanged fires as the playback cursor advances, at the
	// engine's own cadence. The controller re-reads CurrentTimeUS on it.
	PlaybackPositionChanged()
	DurationChanged()
	// PlayingStateChanged fires when IsPlaying/IsCompleted flips, so the
	// controller can rebalance decoded-stream blocking.
	PlayingStateChanged()
	NetworkError(err error)
	DecodeError(err error)
}
