// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch serializes cross-goroutine callbacks onto a single
// control goroutine. Decode-engine notifications must not mutate
// owner-visible session state in place; they are posted here instead and
// executed in submission order.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/ManuGH/playctl/internal/metrics"
)

// ErrStopped is returned by Post once the loop has shut down.
var ErrStopped = errors.New("dispatch: loop stopped")

const defaultQueueSize = 256

// Loop is a single-goroutine task executor. Tasks posted from any
// goroutine run one at a time, in order, on the goroutine that called Run.
type Loop struct {
	tasks chan func()

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewLoop returns a loop with the given queue capacity (0 uses the default).
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Loop{
		tasks:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}
}

// Run executes posted tasks until ctx is done or Stop is called.
// Tasks already queued at stop time are drained before Run returns, so a
// shutdown fence set by an earlier task is observed by stragglers.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			l.drain()
			return ctx.Err()
		case <-l.stopped:
			l.drain()
			return nil
		case task := <-l.tasks:
			task()
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case task := <-l.tasks:
			task()
		default:
			return
		}
	}
}

// Post enqueues a task for execution on the loop goroutine. It blocks while
// the queue is full and fails only once the loop has stopped. The origin
// label is used for drop accounting.
func (l *Loop) Post(origin string, task func()) error {
	select {
	case <-l.stopped:
		metrics.IncDispatchDropped(origin)
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.stopped:
		metrics.IncDispatchDropped(origin)
		return ErrStopped
	}
}

// Stop terminates the loop. Safe to call more than once and from any
// goroutine; queued tasks still drain inside Run.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}
