// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/playctl/internal/session/model"
	"github.com/ManuGH/playctl/internal/session/testkit"
)

func TestAddOutputStreamCreatesSharedSource(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	sinkA := testkit.NewSink()
	sinkB := testkit.NewSink()
	require.NoError(t, f.c.AddOutputStream(sinkA, false))
	require.NoError(t, f.c.AddOutputStream(sinkB, true))

	require.Len(t, f.graph.Sources(), 1, "sinks share one decoded-stream source")
	require.Equal(t, 2, f.c.OutputStreamCount())
	require.Equal(t, 1, sinkA.LivePorts())
	require.Zero(t, sinkA.Blockers(), "connected sink sheds its disconnected block")
}

func TestAddOutputStreamWithoutGraphFails(t *testing.T) {
	f := &fixture{
		engine:   testkit.NewEngine(),
		resource: testkit.NewResource(),
		owner:    testkit.NewOwner(),
	}
	f.c = New(DefaultConfig(), Deps{
		Engine:   f.engine,
		Resource: f.resource,
		Owner:    f.owner,
	})
	t.Cleanup(func() { _ = f.c.Close() })

	require.ErrorIs(t, f.c.AddOutputStream(testkit.NewSink(), false), ErrNoStreamGraph)
}

func TestPlayStateBlockerFollowsTransitions(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	require.NoError(t, f.c.AddOutputStream(testkit.NewSink(), false))
	source := f.graph.Sources()[0]

	// Paused and engine-not-playing each hold one block.
	require.Equal(t, 2, source.Blockers())

	f.owner.SetPaused(false)
	require.NoError(t, f.c.Play())
	f.c.onPlayingStateChanged()
	require.Zero(t, source.Blockers(), "playing with a live engine is fully unblocked")

	require.NoError(t, f.c.Pause())
	require.Equal(t, 1, source.Blockers())
}

func TestBlockerDeltasBalanceOverLifetime(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	sink := testkit.NewSink()
	require.NoError(t, f.c.AddOutputStream(sink, false))
	require.Zero(t, sink.Blockers())

	f.owner.SetPaused(false)
	require.NoError(t, f.c.Play())
	require.NoError(t, f.c.Pause())
	require.NoError(t, f.c.Play())

	f.c.Shutdown()

	// Every +1 toggle was matched by a -1: the surviving sink is back to
	// exactly its original single disconnected block.
	require.Equal(t, 1, sink.Blockers())
	require.True(t, f.graph.Sources()[0].Destroyed())
	require.Zero(t, sink.LivePorts())
}

func TestPlaybackEndedFinishesMarkedSinks(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)
	f.owner.SetPaused(false)
	require.NoError(t, f.c.Play())

	ending := testkit.NewSink()
	keep := testkit.NewSink()
	require.NoError(t, f.c.AddOutputStream(ending, true))
	require.NoError(t, f.c.AddOutputStream(keep, false))

	f.engine.SetCompleted(true)
	f.c.onPlaybackEnded()

	require.Equal(t, model.StateEnded, f.c.PlayState())
	require.True(t, ending.Finished())
	require.Zero(t, ending.LivePorts())
	require.Equal(t, 1, ending.Blockers(), "detached sink carries an explicit block")
	require.Equal(t, 1, f.c.OutputStreamCount(), "only the keep-alive sink remains bound")
	require.False(t, keep.Finished())
	require.Equal(t, 1, f.owner.Count("playback_ended"))
}

func TestPlaybackEndedIgnoredWhileSeeking(t *testing.T) {
	f := newFixture(t)
	f.loadWithMetadata(t, 60_000_000)

	require.NoError(t, f.c.Seek(10, model.SeekAccurate))
	f.c.onPlaybackEnded()

	require.Equal(t, model.StateSeeking, f.c.PlayState())
	require.Zero(t, f.owner.Count("playback_ended"))
}

func TestDestroyedSinksAreSweptOnRecreate(t *testing.T) {
	f := newFixture(t)
	f.engine.NeedsDormant = true
	f.loadWithMetadata(t, 60_000_000)

	gone := testkit.NewSink()
	require.NoError(t, f.c.AddOutputStream(gone, false))
	gone.MarkDestroyed()

	// Dormancy tears the pipeline down; the dead binding is dropped
	// without re-blocking the destroyed sink.
	f.c.SetDormantIfNecessary(true)
	require.Zero(t, f.c.OutputStreamCount())
	require.Zero(t, gone.Blockers(), "destroyed sink is not re-blocked")
}
