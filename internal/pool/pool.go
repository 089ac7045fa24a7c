// Package pool implements a fixed-size set of workers executing jobs from a single
// shared FIFO queue.
package pool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Job is a self-contained unit of work. Its outcome isn't observed by the pool, so
// it's up to the job to report it.
type Job func()

var (
	ErrClosed    = errors.New("pool is closed")
	ErrQueueFull = errors.New("job queue is full")
)

type Stats struct {
	Submitted uint64
	Completed uint64
	Dropped   uint64
	Panicked  uint64
}

// Pool executes every submitted job at most once, on the first available worker. The queue
// is bounded: Execute waits for a free seat, while TryExecute refuses instead.
type Pool struct {
	jobs     chan Job
	mu       sync.RWMutex
	closed   bool
	stopping atomic.Bool
	wg       sync.WaitGroup
	logger   zerolog.Logger
	workers  int
	stats    struct {
		submitted atomic.Uint64
		completed atomic.Uint64
		dropped   atomic.Uint64
		panicked  atomic.Uint64
	}
}

// New starts the workers right away. Both workers and queueSize must be positive.
func New(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers <= 0 || queueSize <= 0 {
		panic("pool: workers number and queue size must be positive")
	}

	p := &Pool{
		jobs:    make(chan Job, queueSize),
		logger:  logger,
		workers: workers,
	}

	p.wg.Add(workers)
	for id := range workers {
		go p.work(id)
		logger.Debug().Int("worker", id).Msg("worker created")
	}

	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if p.stopping.Load() {
			p.stats.dropped.Add(1)
			continue
		}

		p.logger.Trace().Int("worker", id).Msg("worker given job")
		p.run(id, job)
	}

	p.logger.Debug().Int("worker", id).Msg("worker shut down")
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.panicked.Add(1)
			p.logger.Error().Int("worker", id).Interface("panic", r).Msg("job panicked")
		}

		p.stats.completed.Add(1)
	}()

	job()
}

// Execute enqueues the job, waiting while the queue is full.
func (p *Pool) Execute(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.stats.submitted.Add(1)
	p.jobs <- job

	return nil
}

// TryExecute enqueues the job only if there's a free seat in the queue.
func (p *Pool) TryExecute(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobs <- job:
		p.stats.submitted.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting new jobs and blocks until every job already queued is executed
// and all the workers are gone.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Stop stops accepting new jobs and blocks until all the workers are gone. Jobs being
// executed at the moment are completed, however queued ones are dropped. The total
// number of dropped jobs is returned.
func (p *Pool) Stop() (dropped int) {
	p.stopping.Store(true)
	p.Close()

	return int(p.stats.dropped.Load())
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns the number of jobs waiting in the queue.
func (p *Pool) Pending() int {
	return len(p.jobs)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Dropped:   p.stats.dropped.Load(),
		Panicked:  p.stats.panicked.Load(),
	}
}
