// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StateTransitionsTotal tracks play-state transitions by edge.
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playctl_state_transitions_total",
		Help: "Total number of play-state transitions by from/to state",
	}, []string{"from", "to"})

	// SeeksTotal tracks seek requests by outcome.
	// "requested" counts every accepted Seek call, "coalesced" counts
	// in-flight seeks superseded by a newer target, "completed" counts
	// seeks that resolved and notified the owner.
	SeeksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playctl_seeks_total",
		Help: "Total number of seek requests by outcome",
	}, []string{"outcome"})

	// StreamBlockerDeltasTotal tracks explicit blocker-count adjustments on
	// the decoded-stream source and sinks, by reason and direction.
	StreamBlockerDeltasTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playctl_stream_blocker_deltas_total",
		Help: "Total explicit blocker count adjustments by reason and direction",
	}, []string{"reason", "direction"})

	// ShutdownsTotal tracks forced and explicit session shutdowns by cause.
	ShutdownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playctl_shutdowns_total",
		Help: "Total number of session shutdowns by cause",
	}, []string{"cause"})

	// DispatchDroppedTotal tracks control-loop tasks dropped because the
	// loop had already stopped.
	DispatchDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playctl_dispatch_dropped_total",
		Help: "Total control-loop tasks dropped after loop stop",
	}, []string{"origin"})

	// ActiveSessions tracks the number of registered live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "playctl_active_sessions",
		Help: "Number of registered live playback sessions",
	})

	// SeekLatency tracks time from a seek entering SEEKING until completion.
	SeekLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playctl_seek_latency_seconds",
		Help:    "Time from entering SEEKING until the seek resolved",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)

// IncStateTransition records a play-state transition.
func IncStateTransition(from, to string) {
	StateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// IncSeek records a seek request outcome.
func IncSeek(outcome string) {
	SeeksTotal.WithLabelValues(outcome).Inc()
}

// IncBlockerDelta records an explicit blocker-count adjustment.
func IncBlockerDelta(reason string, delta int) {
	direction := "block"
	if delta < 0 {
		direction = "unblock"
	}
	StreamBlockerDeltasTotal.WithLabelValues(reason, direction).Inc()
}

// IncShutdown records a session shutdown by cause.
func IncShutdown(cause string) {
	ShutdownsTotal.WithLabelValues(cause).Inc()
}

// IncDispatchDropped records a dropped control-loop task.
func IncDispatchDropped(origin string) {
	DispatchDroppedTotal.WithLabelValues(origin).Inc()
}

// IncActiveSessions adjusts the live session gauge upward.
func IncActiveSessions() { ActiveSessions.Inc() }

// DecActiveSessions adjusts the live session gauge downward.
func DecActiveSessions() { ActiveSessions.Dec() }
