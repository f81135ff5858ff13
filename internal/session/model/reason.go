// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// ShutdownCause classifies why a session shut down.
type ShutdownCause string

const (
	CauseClient          ShutdownCause = "client"
	CauseNetworkError    ShutdownCause = "network_error"
	CauseDecodeError     ShutdownCause = "decode_error"
	CauseConnectionReset ShutdownCause = "connection_reset"
)
