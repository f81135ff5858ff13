// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/playctl/internal/session/model"
)

func TestStatisticsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.resource.SetLength(6_000_000)
	f.resource.SetDownloadRate(250_000, true)
	f.resource.SetCachedEnd(1_500_000)
	f.loadWithMetadata(t, 60_000_000)

	f.c.NotifyBytesConsumed(1_000, 499_000)
	f.c.UpdatePlaybackOffset(250_000)

	got := f.c.Statistics()
	want := model.Statistics{
		DownloadRate:         250_000,
		DownloadRateReliable: true,
		PlaybackRate:         100_000, // 6 MB over 60 s
		PlaybackRateReliable: true,
		TotalBytes:           6_000_000,
		DownloadPosition:     1_500_000,
		DecoderPosition:      500_000,
		PlaybackPosition:     250_000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statistics mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaybackOffsetNeverRewinds(t *testing.T) {
	f := newFixture(t)
	f.c.UpdatePlaybackOffset(500)
	f.c.UpdatePlaybackOffset(200)
	require.Equal(t, int64(500), f.c.Statistics().PlaybackPosition)
}

func TestCanPlayThroughFalseWhenUnreliable(t *testing.T) {
	f := newFixture(t)
	f.resource.SetLength(6_000_000)
	f.resource.SetCachedEnd(6_000_000)
	f.resource.SetDownloadRate(1_000_000, false) // fast but unreliable
	f.loadWithMetadata(t, 60_000_000)

	require.False(t, f.c.CanPlayThrough())

	f.resource.SetDownloadRate(1_000_000, true)
	require.True(t, f.c.CanPlayThrough())
}

func TestReadaheadRateUsesExactEstimateWhenKnown(t *testing.T) {
	f := newFixture(t)
	f.resource.SetLength(6_000_000)
	f.loadWithMetadata(t, 60_000_000)

	require.Equal(t, 100_000, f.resource.RatePerSec())
}

func TestReadaheadRateFloorsUnreliableEstimate(t *testing.T) {
	f := newFixture(t)
	// Length unknown: the throughput fallback has no history yet.
	f.loadWithMetadata(t, 60_000_000)

	f.c.NotifyBytesDownloaded(100)
	require.Equal(t, 10_000, f.resource.RatePerSec(), "unreliable estimates are floored high")
}

func TestNotifyDownloadEndedTaxonomy(t *testing.T) {
	t.Run("completed download keeps the session alive", func(t *testing.T) {
		f := newFixture(t)
		f.loadWithMetadata(t, 60_000_000)
		f.c.NotifyDownloadEnded(nil)
		require.Equal(t, model.StatePaused, f.c.PlayState())
	})

	t.Run("aborted load notifies without teardown", func(t *testing.T) {
		f := newFixture(t)
		f.loadWithMetadata(t, 60_000_000)
		f.c.NotifyDownloadEnded(ErrLoadAborted)
		require.Equal(t, 1, f.owner.Count("load_aborted"))
		require.False(t, f.c.IsShutdown())
	})

	t.Run("closed stream is silent", func(t *testing.T) {
		f := newFixture(t)
		f.loadWithMetadata(t, 60_000_000)
		f.c.NotifyDownloadEnded(ErrStreamClosed)
		require.False(t, f.c.IsShutdown())
		require.False(t, f.owner.Saw("network_error"))
	})

	t.Run("transport failure is fatal", func(t *testing.T) {
		f := newFixture(t)
		f.loadWithMetadata(t, 60_000_000)
		f.c.NotifyDownloadEnded(errors.New("connection reset by peer"))
		require.True(t, f.c.IsShutdown())
		require.True(t, f.owner.Saw("network_error"))
	})
}

func TestProgressAccountingPausesAcrossDiscontinuity(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)
	f.resource.SetTell(2_000_000)

	f.c.StopProgressUpdates()
	f.c.NotifyBytesConsumed(500, 3_000_000)

	s := f.c.Statistics()
	require.Equal(t, int64(2_000_000), s.DecoderPosition, "ignored while suspended")
	require.Equal(t, int64(2_000_000), s.PlaybackPosition)

	f.resource.SetTell(2_500_000)
	f.c.StartProgressUpdates()
	f.c.NotifyBytesConsumed(500, 3_000_000)
	require.Equal(t, int64(3_000_500), f.c.Statistics().DecoderPosition)
}

func TestTimeUpdateFiresOnPositionChange(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)
	f.owner.SetPaused(false)
	require.NoError(t, f.c.Play())

	f.engine.AdvanceTo(1_000_000)
	f.c.lock()
	f.c.playbackPositionChangedLocked()
	f.c.unlockAndNotify()

	require.Equal(t, []float64{1}, f.owner.TimeUpdates())

	// Unchanged position stays quiet.
	f.c.lock()
	f.c.playbackPositionChangedLocked()
	f.c.unlockAndNotify()
	require.Equal(t, []float64{1}, f.owner.TimeUpdates())
}

func TestPositionFrozenWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	// A straggling cursor report from the engine must not move the
	// paused session's time.
	f.engine.AdvanceTo(3_000_000)
	f.c.onPlaybackPositionChanged()

	require.Zero(t, f.c.CurrentTime())
	require.Empty(t, f.owner.TimeUpdates())
}
