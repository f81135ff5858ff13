// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// Statistics is a derived snapshot of transfer and playback progress. It is
// recomputed on demand from resource byte counters and never persisted.
type Statistics struct {
	// DownloadRate is the rate of transfer of the media resource, in bytes
	// per second. Only meaningful when DownloadRateReliable is true.
	DownloadRate         float64
	DownloadRateReliable bool

	// PlaybackRate is the rate at which playback consumes the resource, in
	// bytes per second. Only meaningful when PlaybackRateReliable is true.
	PlaybackRate         float64
	PlaybackRateReliable bool

	// TotalBytes is the length of the resource, or -1 if unknown.
	TotalBytes int64

	// DownloadPosition is the furthest contiguously cached byte offset
	// reachable from the decoder position.
	DownloadPosition int64

	// DecoderPosition is the offset of the last byte handed to the decoder.
	DecoderPosition int64

	// PlaybackPosition is the offset of the last played byte.
	PlaybackPosition int64
}
