// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/playctl/internal/session"
	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/ports"
	"github.com/ManuGH/playctl/internal/session/testkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestFullLifecycleThroughControlLoop drives a session the way a real
// engine would: commands from the client goroutine, notifications posted
// from another goroutine through the events surface.
func TestFullLifecycleThroughControlLoop(t *testing.T) {
	engine := testkit.NewEngine()
	resource := testkit.NewResource()
	resource.SetLength(6_000_000)
	resource.SetDownloadRate(500_000, true)
	owner := testkit.NewOwner()

	c := session.New(session.DefaultConfig(), session.Deps{
		Engine:   engine,
		Resource: resource,
		Owner:    owner,
		Graph:    testkit.NewGraph(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = c.Run(ctx)
	}()

	require.NoError(t, c.Load(ctx, nil))
	require.Equal(t, model.StateLoading, c.PlayState())

	// The client asks for playback before metadata is in.
	owner.SetPaused(false)
	require.NoError(t, c.Play())

	events := engine.Events()
	require.NotNil(t, events)

	engine.SetDuration(60_000_000)
	go events.MetadataLoaded(ports.MediaInfo{HasAudio: true, HasVideo: true})

	waitForState(t, c, model.StatePlaying)
	require.Equal(t, float64(60), c.Duration())
	require.Equal(t, 1, owner.Count("metadata_loaded"))

	// Reposition mid-playback.
	require.NoError(t, c.Seek(30, model.SeekAccurate))
	require.Equal(t, 30.0, c.CurrentTime())
	go func() {
		events.SeekingStarted()
		events.SeekingStopped()
	}()
	waitForState(t, c, model.StatePlaying)
	require.Eventually(t, func() bool { return owner.Count("seek_completed") == 1 },
		time.Second, 5*time.Millisecond)

	// Playback reaches the end.
	engine.AdvanceTo(60_000_000)
	engine.SetCompleted(true)
	go events.PlaybackEnded()
	waitForState(t, c, model.StateEnded)
	require.Equal(t, 1, owner.Count("playback_ended"))

	require.NoError(t, c.Close())
	require.True(t, c.IsShutdown())

	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("control loop did not stop")
	}
}

// TestPositionAdvancesDuringPlayback covers the steady-state path: the
// engine's cursor moves, the position event lands on the control loop, and
// both CurrentTime and the owner's time updates follow.
func TestPositionAdvancesDuringPlayback(t *testing.T) {
	engine := testkit.NewEngine()
	owner := testkit.NewOwner()

	c := session.New(session.DefaultConfig(), session.Deps{
		Engine:   engine,
		Resource: testkit.NewResource(),
		Owner:    owner,
		Graph:    testkit.NewGraph(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = c.Run(ctx)
	}()

	require.NoError(t, c.Load(ctx, nil))
	events := engine.Events()
	require.NotNil(t, events)

	engine.SetDuration(60_000_000)
	go events.MetadataLoaded(ports.MediaInfo{HasAudio: true})
	waitForState(t, c, model.StatePaused)

	owner.SetPaused(false)
	require.NoError(t, c.Play())
	waitForState(t, c, model.StatePlaying)

	engine.AdvanceTo(5_000_000)
	go events.PlaybackPositionChanged()
	require.Eventually(t, func() bool { return c.CurrentTime() == 5 },
		time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool {
		u := owner.TimeUpdates()
		return len(u) > 0 && u[len(u)-1] == 5
	}, time.Second, 2*time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("control loop did not stop")
	}
}

func waitForState(t *testing.T, c *session.Controller, want model.PlayState) {
	t.Helper()
	require.Eventually(t, func() bool { return c.PlayState() == want },
		time.Second, 2*time.Millisecond, "waiting for state %s", want)
}
