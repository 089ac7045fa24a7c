package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newPool(workers, queueSize int) *Pool {
	return New(workers, queueSize, zerolog.Nop())
}

// blocker occupies a worker until released.
func blocker(p *Pool, t *testing.T) (release func()) {
	started, done := make(chan struct{}), make(chan struct{})
	require.NoError(t, p.Execute(func() {
		close(started)
		<-done
	}))
	<-started

	return func() { close(done) }
}

func TestPool(t *testing.T) {
	t.Run("every job exactly once", func(t *testing.T) {
		const workers, jobs = 4, 1000
		p := newPool(workers, 16)
		var executions [jobs]atomic.Int32

		for i := range jobs {
			require.NoError(t, p.Execute(func() {
				executions[i].Add(1)
			}))
		}

		p.Close()

		for i := range jobs {
			require.Equal(t, int32(1), executions[i].Load(), "job %d", i)
		}

		stats := p.Stats()
		require.Equal(t, uint64(jobs), stats.Submitted)
		require.Equal(t, uint64(jobs), stats.Completed)
		require.Zero(t, stats.Dropped)
	})

	t.Run("workers run in parallel", func(t *testing.T) {
		const workers = 4
		p := newPool(workers, workers)
		var wg sync.WaitGroup
		wg.Add(workers)
		barrier := make(chan struct{})

		for range workers {
			require.NoError(t, p.Execute(func() {
				wg.Done()
				<-barrier
			}))
		}

		// every worker must be holding a job at the same time, otherwise this hangs
		wg.Wait()
		close(barrier)
		p.Close()
		require.Equal(t, workers, p.Workers())
	})

	t.Run("close waits for in-flight jobs", func(t *testing.T) {
		p := newPool(2, 4)
		var finished atomic.Int32

		for range 4 {
			require.NoError(t, p.Execute(func() {
				time.Sleep(20 * time.Millisecond)
				finished.Add(1)
			}))
		}

		p.Close()
		require.Equal(t, int32(4), finished.Load())
	})

	t.Run("stop drops queued jobs", func(t *testing.T) {
		p := newPool(1, 8)
		release := blocker(p, t)
		var executed atomic.Int32

		for range 5 {
			require.NoError(t, p.Execute(func() {
				executed.Add(1)
			}))
		}

		require.Equal(t, 5, p.Pending())

		stopped := make(chan int)
		go func() {
			stopped <- p.Stop()
		}()

		select {
		case <-stopped:
			require.Fail(t, "stop returned while a job was in progress")
		case <-time.After(50 * time.Millisecond):
		}

		release()

		select {
		case dropped := <-stopped:
			require.Equal(t, 5, dropped)
		case <-time.After(time.Second):
			require.Fail(t, "stop did not return")
		}

		require.Zero(t, executed.Load())
		require.Equal(t, uint64(1), p.Stats().Completed)
	})

	t.Run("submission after close", func(t *testing.T) {
		p := newPool(1, 1)
		p.Close()
		require.ErrorIs(t, p.Execute(func() {}), ErrClosed)
		require.ErrorIs(t, p.TryExecute(func() {}), ErrClosed)
		// closing twice is harmless
		p.Close()
	})

	t.Run("try execute on full queue", func(t *testing.T) {
		p := newPool(1, 2)
		release := blocker(p, t)

		require.NoError(t, p.TryExecute(func() {}))
		require.NoError(t, p.TryExecute(func() {}))
		require.ErrorIs(t, p.TryExecute(func() {}), ErrQueueFull)

		release()
		p.Close()
		require.Equal(t, uint64(3), p.Stats().Completed)
	})

	t.Run("execute blocks on full queue", func(t *testing.T) {
		p := newPool(1, 1)
		release := blocker(p, t)
		require.NoError(t, p.Execute(func() {}))

		submitted := make(chan error)
		go func() {
			submitted <- p.Execute(func() {})
		}()

		select {
		case <-submitted:
			require.Fail(t, "execute did not block on a full queue")
		case <-time.After(50 * time.Millisecond):
		}

		release()
		require.NoError(t, <-submitted)
		p.Close()
		require.Equal(t, uint64(3), p.Stats().Completed)
	})

	t.Run("panicking job", func(t *testing.T) {
		p := newPool(1, 2)
		var after atomic.Bool

		require.NoError(t, p.Execute(func() {
			panic("boom")
		}))
		require.NoError(t, p.Execute(func() {
			after.Store(true)
		}))

		p.Close()
		require.True(t, after.Load())
		require.Equal(t, uint64(1), p.Stats().Panicked)
	})

	t.Run("bad arguments", func(t *testing.T) {
		require.Panics(t, func() { newPool(0, 1) })
		require.Panics(t, func() { newPool(1, 0) })
	})
}
