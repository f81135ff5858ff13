// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

// StreamGraph creates decoded-stream sources. It stands in for the platform
// media graph; sources and sinks it hands out are not safe for concurrent
// use and are mutated only on the session's control side.
type StreamGraph interface {
	CreateSource() StreamSource
}

// StreamSource is the single shared decoded-stream origin of a session.
type StreamSource interface {
	// ChangeExplicitBlockerCount adjusts the stream's block count. The
	// stream delivers only while the count is zero; callers must keep +1/-1
	// deltas balanced.
	ChangeExplicitBlockerCount(delta int)
	Destroy()
	// CurrentTimeUS returns the source's position in microseconds.
	CurrentTimeUS() int64
}

// StreamSink is a downstream consumer attached to the session. The session
// references sinks but does not own them; a sink can be torn down externally
// at any time.
type StreamSink interface {
	// AllocateInputPort connects the sink to the source with a
	// bidirectional-block port: if either side blocks, so does the other.
	AllocateInputPort(source StreamSource) SinkPort
	ChangeExplicitBlockerCount(delta int)
	// SetAutofinish makes the sink finish the moment its source finishes.
	SetAutofinish(autofinish bool)
	Finish()
	// Destroyed reports whether the sink was torn down externally.
	Destroyed() bool
}

// SinkPort is the connection between the decoded-stream source and a sink.
type SinkPort interface {
	Destroy()
}
