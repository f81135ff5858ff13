// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stats

import "time"

// minReliableWindow is how much accumulated transfer time the estimator
// needs before its rate is considered reliable.
const minReliableWindow = time.Second

// ThroughputEstimator accumulates byte counts over active transfer
// intervals and derives a historical bytes-per-second estimate. It is the
// fallback when resource length or duration are unknown. Not safe for
// concurrent use; the session guards it with its monitor.
type ThroughputEstimator struct {
	bytes       int64
	accumulated time.Duration
	started     time.Time
	active      bool

	now func() time.Time
}

// NewThroughputEstimator returns an idle estimator.
func NewThroughputEstimator() *ThroughputEstimator {
	return &ThroughputEstimator{now: time.Now}
}

// Start opens a transfer interval. No-op if already active.
func (e *ThroughputEstimator) Start() {
	if e.active {
		return
	}
	e.active = true
	e.started = e.now()
}

// Stop closes the current transfer interval. No-op if idle.
func (e *ThroughputEstimator) Stop() {
	if !e.active {
		return
	}
	e.active = false
	e.accumulated += e.now().Sub(e.started)
}

// AddBytes records bytes transferred during the current interval.
func (e *ThroughputEstimator) AddBytes(n int64) {
	e.bytes += n
}

// Reset drops all history, e.g. after a discontinuous reposition.
func (e *ThroughputEstimator) Reset() {
	e.bytes = 0
	e.accumulated = 0
	e.active = false
}

// Rate returns the bytes-per-second estimate over closed transfer
// intervals and whether enough time has accumulated for it to be trusted.
// An interval still in flight is excluded: a handful of bytes over a
// microscopic open window would otherwise read as an absurd burst rate.
func (e *ThroughputEstimator) Rate() (rate float64, reliable bool) {
	seconds := e.accumulated.Seconds()
	reliable = e.accumulated >= minReliableWindow
	if seconds <= 0 {
		return 0, reliable
	}
	return float64(e.bytes) / seconds, reliable
}
