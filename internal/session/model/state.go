// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// PlayState is the owner-visible state of a playback session. Transitions
// happen only on the session's control side, under its monitor; Shutdown is
// terminal.
type PlayState int

const (
	StateLoading PlayState = iota
	StatePaused
	StatePlaying
	StateSeeking
	StateEnded
	StateShutdown
)

var playStateNames = [...]string{
	"LOADING",
	"PAUSED",
	"PLAYING",
	"SEEKING",
	"ENDED",
	"SHUTDOWN",
}

func (s PlayState) String() string {
	if s < 0 || int(s) >= len(playStateNames) {
		return "UNKNOWN"
	}
	return playStateNames[s]
}

// IsTerminal reports whether no further transitions are permitted.
func (s PlayState) IsTerminal() bool {
	return s == StateShutdown
}

// PendingState is an explicit option for a deferred play-state transition.
// A command that arrives while the session is in LOADING or SEEKING stores
// its target here; the state machine consumes it exactly once when the
// blocking state resolves.
type PendingState struct {
	State PlayState
}

// Pending returns a deferred transition to the given state.
func Pending(s PlayState) *PendingState {
	return &PendingState{State: s}
}
