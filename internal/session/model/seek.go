// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// SeekMode selects how the decode engine resolves a seek target.
type SeekMode int

const (
	// SeekAccurate lands exactly on the requested time.
	SeekAccurate SeekMode = iota
	// SeekPrevSyncPoint lands on the nearest preceding sync point; cheaper,
	// used when resuming an ended session from the start.
	SeekPrevSyncPoint
)

func (m SeekMode) String() string {
	if m == SeekPrevSyncPoint {
		return "prev_sync_point"
	}
	return "accurate"
}

// SeekTarget is a pending seek request. A session holds at most one; a new
// request simply overwrites the previous target (latest wins).
type SeekTarget struct {
	TimeUS int64
	Mode   SeekMode
}
