// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	require.NoError(t, SetLevel("debug"))
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	require.Error(t, SetLevel("shouty"))
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel(), "invalid level leaves the current level untouched")
}

func TestConfigureIsIdempotent(t *testing.T) {
	Configure(Config{Level: "info"})
	Configure(Config{Level: "error"})
	// The second call must not re-initialize the base logger.
	require.NotPanics(t, func() { l := L(); l.Info().Msg("still alive") })
}

func TestChildLoggersShareBase(t *testing.T) {
	a := WithComponent("session")
	b := WithSession("session", "abc-123")
	require.NotPanics(t, func() {
		a.Debug().Msg("component logger")
		b.Debug().Msg("session logger")
	})
}
