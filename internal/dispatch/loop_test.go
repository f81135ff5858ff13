// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoopExecutesTasksInOrder(t *testing.T) {
	loop := NewLoop(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, loop.Post("test", func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)

	loop.Stop()
	<-done
}

func TestLoopDrainsQueuedTasksOnStop(t *testing.T) {
	loop := NewLoop(16)

	ran := make(chan struct{}, 16)
	for i := 0; i < 3; i++ {
		require.NoError(t, loop.Post("test", func() { ran <- struct{}{} }))
	}
	loop.Stop()

	require.NoError(t, loop.Run(context.Background()))
	require.Len(t, ran, 3, "tasks queued before stop still execute")
}

func TestPostAfterStopFails(t *testing.T) {
	loop := NewLoop(4)
	loop.Stop()
	require.ErrorIs(t, loop.Post("test", func() {}), ErrStopped)
}

func TestStopIsIdempotent(t *testing.T) {
	loop := NewLoop(4)
	loop.Stop()
	loop.Stop()
}

func TestRunStopsOnContextCancel(t *testing.T) {
	loop := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}
