// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "errors"

var (
	// ErrShuttingDown is returned by commands issued after Shutdown.
	ErrShuttingDown = errors.New("session: shutting down")

	// ErrNegativeSeek is returned by Seek for negative target times.
	ErrNegativeSeek = errors.New("session: negative seek time")

	// ErrNoStreamGraph is returned by AddOutputStream when the session was
	// built without a stream graph.
	ErrNoStreamGraph = errors.New("session: no stream graph configured")

	// ErrLoadAborted classifies a user-cancelled download in
	// NotifyDownloadEnded. It reports to the owner without forcing shutdown.
	ErrLoadAborted = errors.New("session: load aborted")

	// ErrStreamClosed classifies an orderly transport close in
	// NotifyDownloadEnded. It is not surfaced to the owner.
	ErrStreamClosed = errors.New("session: stream closed")
)
