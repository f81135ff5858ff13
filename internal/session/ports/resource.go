// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "context"

// MediaResource is the byte-level resource/cache layer backing a session.
// The controller only steers it; actual transfer runs elsewhere.
type MediaResource interface {
	Open(ctx context.Context) error
	// Close aborts in-flight byte-range requests. Called during shutdown to
	// prevent deadlock on mutual shutdown waits.
	Close() error

	// Pin and Unpin are a reference-counted hint to retain cached bytes
	// needed to satisfy an in-flight seek.
	Pin()
	Unpin()

	// SetPlaybackRate tells the cache how fast playback consumes bytes so it
	// can schedule readahead.
	SetPlaybackRate(bytesPerSec int)

	// Length returns the resource length in bytes, -1 if unknown.
	Length() int64
	// CachedDataEnd returns the end offset of the contiguous cached range
	// containing pos.
	CachedDataEnd(pos int64) int64
	// DownloadRate returns the transfer rate in bytes per second and whether
	// the estimate is reliable.
	DownloadRate() (rate float64, reliable bool)
	// Tell returns the current read offset.
	Tell() int64
}
