// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/playctl/internal/session/model"
)

func TestComputePlaybackRateExactWhenKnown(t *testing.T) {
	e := NewThroughputEstimator()

	rate, reliable := ComputePlaybackRate(60_000_000, 6_000_000, e)
	require.True(t, reliable)
	require.Equal(t, float64(100_000), rate)
}

func TestComputePlaybackRateZeroDuration(t *testing.T) {
	rate, reliable := ComputePlaybackRate(0, 6_000_000, NewThroughputEstimator())
	require.True(t, reliable)
	require.Zero(t, rate)
}

func TestComputePlaybackRateFallsBack(t *testing.T) {
	e := NewThroughputEstimator()

	_, reliable := ComputePlaybackRate(-1, 6_000_000, e)
	require.False(t, reliable, "unknown duration forces the historical fallback")

	_, reliable = ComputePlaybackRate(60_000_000, -1, e)
	require.False(t, reliable, "unknown length forces the historical fallback")
}

func reliableStats() model.Statistics {
	return model.Statistics{
		DownloadRate:         500_000,
		DownloadRateReliable: true,
		PlaybackRate:         100_000,
		PlaybackRateReliable: true,
		TotalBytes:           6_000_000,
		DownloadPosition:     3_000_000,
		PlaybackPosition:     1_000_000,
	}
}

func TestCanPlayThroughRequiresReliableRates(t *testing.T) {
	s := reliableStats()
	s.DownloadRateReliable = false
	require.False(t, CanPlayThrough(s, 1))

	s = reliableStats()
	s.PlaybackRateReliable = false
	require.False(t, CanPlayThrough(s, 1))
}

func TestCanPlayThroughRequiresPositiveRates(t *testing.T) {
	s := reliableStats()
	s.DownloadRate = 0
	require.False(t, CanPlayThrough(s, 1))
}

func TestCanPlayThroughProjectsDownloadFinish(t *testing.T) {
	// Download needs 6s for the remaining 3 MB at 500 KB/s; playback needs
	// 50s for its remaining 5 MB at 100 KB/s. Readahead is 2 MB against a
	// 100 KB margin, so the projection holds.
	require.True(t, CanPlayThrough(reliableStats(), 1))

	s := reliableStats()
	s.DownloadRate = 50_000 // now the download loses the race
	require.False(t, CanPlayThrough(s, 1))
}

func TestCanPlayThroughReadaheadMargin(t *testing.T) {
	s := reliableStats()
	s.DownloadPosition = s.PlaybackPosition + 50_000 // under the 100 KB margin
	require.False(t, CanPlayThrough(s, 1))

	s.DownloadPosition = s.TotalBytes // fully downloaded always passes
	require.True(t, CanPlayThrough(s, 1))
}
