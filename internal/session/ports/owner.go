// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

// Owner is the UI-facing holder of a session (the media element). The
// controller notifies it of lifecycle events; notifications may synchronously
// re-enter the session, so they are always delivered outside the session
// monitor.
type Owner interface {
	MetadataLoaded(info MediaInfo)
	FirstFrameLoaded()
	SeekStarted()
	SeekCompleted()
	PlaybackEnded()
	NetworkError(err error)
	DecodeError(err error)
	// LoadAborted fires when the user cancels an in-flight load. Unlike the
	// error notifications it does not force shutdown.
	LoadAborted()
	ConnectionReset()
	DownloadProgressed()
	DownloadStalled()
	DurationChanged(seconds float64)
	TimeUpdate(seconds float64)

	// Paused reports whether the owner currently holds the session paused;
	// consulted when a seek resolves to decide the follow-up state.
	Paused() bool
}
