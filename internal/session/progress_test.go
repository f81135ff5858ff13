// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock overrides nowFunc for the duration of a test.
type fakeClock struct {
	now time.Time
}

func installFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	fc := &fakeClock{now: time.Now()}
	orig := nowFunc
	nowFunc = func() time.Time { return fc.now }
	t.Cleanup(func() { nowFunc = orig })
	return fc
}

func (fc *fakeClock) advance(d time.Duration) { fc.now = fc.now.Add(d) }

func TestDownloadProgressIsThrottled(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	f.c.NotifyBytesDownloaded(1_000)
	f.c.NotifyBytesDownloaded(1_000)
	f.c.NotifyBytesDownloaded(1_000)

	require.Equal(t, 1, f.owner.Count("download_progressed"),
		"bursts collapse into one notification per interval")
}

func TestStallFiresOnceUntilDataResumes(t *testing.T) {
	fc := installFakeClock(t)
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	fc.advance(f.c.cfg.StallTimeout + time.Second)
	f.c.onProgressTick()
	f.c.onProgressTick()
	require.Equal(t, 1, f.owner.Count("download_stalled"))

	// Fresh data re-arms the stall detector.
	f.c.NotifyBytesDownloaded(1_000)
	f.c.onProgressTick()
	require.Equal(t, 1, f.owner.Count("download_stalled"))

	fc.advance(f.c.cfg.StallTimeout + time.Second)
	f.c.onProgressTick()
	require.Equal(t, 2, f.owner.Count("download_stalled"))
}

func TestNoProgressWhileSuspended(t *testing.T) {
	fc := installFakeClock(t)
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)
	f.c.StopProgressUpdates()

	f.c.NotifyBytesDownloaded(1_000)
	fc.advance(f.c.cfg.StallTimeout + time.Second)
	f.c.onProgressTick()

	require.Zero(t, f.owner.Count("download_progressed"))
	require.Zero(t, f.owner.Count("download_stalled"))
}
