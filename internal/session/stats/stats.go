// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package stats derives playback statistics from resource byte counters.
// Everything here is pure computation; the session controller owns the
// counters and their locking.
package stats

import "github.com/ManuGH/playctl/internal/session/model"

const usecsPerSec = 1e6

// ComputePlaybackRate estimates how many bytes of resource one second of
// playback consumes. When duration and resource length are both known the
// number is exact; otherwise it falls back to the historical estimator,
// which is unreliable until it has seen enough transfer time.
func ComputePlaybackRate(durationUS, lengthBytes int64, fallback *ThroughputEstimator) (rate float64, reliable bool) {
	if durationUS >= 0 && lengthBytes >= 0 {
		if durationUS == 0 {
			return 0, true
		}
		return float64(lengthBytes) * usecsPerSec / float64(durationUS), true
	}
	return fallback.Rate()
}

// CanPlayThrough reports whether playback can run to the end without
// stalling for the download, given the current statistics. The readAhead
// margin is how many seconds of data (at the playback byte rate) must be
// buffered past the playback position before a projected win is trusted;
// it guards against bitrate fluctuation near the start of the media.
func CanPlayThrough(s model.Statistics, readAheadSeconds float64) bool {
	if !s.DownloadRateReliable || !s.PlaybackRateReliable {
		return false
	}
	if s.DownloadRate <= 0 || s.PlaybackRate <= 0 {
		return false
	}
	bytesToDownload := float64(s.TotalBytes - s.DownloadPosition)
	bytesToPlayback := float64(s.TotalBytes - s.PlaybackPosition)
	timeToDownload := bytesToDownload / s.DownloadRate
	timeToPlay := bytesToPlayback / s.PlaybackRate

	if timeToDownload > timeToPlay {
		// The download is projected to finish after playback needs it.
		return false
	}

	readAheadMargin := int64(s.PlaybackRate * readAheadSeconds)
	return s.TotalBytes == s.DownloadPosition ||
		s.DownloadPosition > s.PlaybackPosition+readAheadMargin
}
