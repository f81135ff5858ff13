// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlayStateStrings(t *testing.T) {
	cases := map[PlayState]string{
		StateLoading:  "LOADING",
		StatePaused:   "PAUSED",
		StatePlaying:  "PLAYING",
		StateSeeking:  "SEEKING",
		StateEnded:    "ENDED",
		StateShutdown: "SHUTDOWN",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
	require.Equal(t, "UNKNOWN", PlayState(99).String())
}

func TestIsTerminal(t *testing.T) {
	require.True(t, StateShutdown.IsTerminal())
	require.False(t, StateEnded.IsTerminal())
	require.False(t, StatePlaying.IsTerminal())
}

func TestPendingWrapsState(t *testing.T) {
	p := Pending(StatePlaying)
	require.NotNil(t, p)
	require.Equal(t, StatePlaying, p.State)
}

func TestSeekModeStrings(t *testing.T) {
	require.Equal(t, "accurate", SeekAccurate.String())
	require.Equal(t, "prev_sync_point", SeekPrevSyncPoint.String())
}
