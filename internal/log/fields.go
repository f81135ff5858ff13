// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Playback state fields
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldNextState = "next_state"

	// Seek fields
	FieldSeekTargetUS = "seek_target_us"
	FieldSeekMode     = "seek_mode"

	// Stream pipeline fields
	FieldBlockReason = "block_reason"
	FieldBlockDelta  = "block_delta"
	FieldSinkCount   = "sink_count"

	// Resource fields
	FieldBytesPerSec = "bytes_per_sec"
	FieldDurationUS  = "duration_us"
)
