package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultWorkers is the number of jobs run concurrently by default.
	DefaultWorkers = 100
	// DefaultQueueSize is the number of waiting jobs accepted by default.
	DefaultQueueSize = 128
)

var (
	// ErrRejected is returned by Submit when the pool is saturated.
	ErrRejected = errors.New("worker pool saturated, job rejected")
	// ErrClosed is returned by Submit after Shutdown.
	ErrClosed = errors.New("worker pool is shut down")
)

// Job is one unit of work. The context is the one passed to Submit.
type Job func(ctx context.Context) error

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(p *Pool) { p.workers = n }
}

// WithQueueSize sets how many admitted jobs may wait for a worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) { p.queueSize = n }
}

// WithQueueObserver registers fn to be called with the time each job spent
// waiting between admission and pickup.
func WithQueueObserver(fn func(name string, wait time.Duration)) Option {
	return func(p *Pool) { p.observe = fn }
}

type envelope struct {
	ctx      context.Context
	name     string
	job      Job
	done     chan error
	admitted time.Time
}

// Pool is a fixed set of worker goroutines behind a bounded queue.
type Pool struct {
	workers   int
	queueSize int
	observe   func(name string, wait time.Duration)

	admission *semaphore.Weighted
	jobs      chan *envelope

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a pool. Non-positive sizes fall back to the defaults, except a
// queue size of zero, which is kept and means no job may wait.
func New(ctx context.Context, opts ...Option) *Pool {
	p := &Pool{workers: DefaultWorkers, queueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	if p.queueSize < 0 {
		p.queueSize = DefaultQueueSize
	}

	p.admission = semaphore.NewWeighted(int64(p.workers + p.queueSize))
	p.jobs = make(chan *envelope, p.workers+p.queueSize)

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting worker pool.", "workers", p.workers, "queueSize", p.queueSize)
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(logger.With("workerID", i))
	}
	return p
}

// Workers returns the number of concurrent workers.
func (p *Pool) Workers() int { return p.workers }

// QueueSize returns the number of jobs allowed to wait.
func (p *Pool) QueueSize() int { return p.queueSize }

// Submit admits job or fails with ErrRejected or ErrClosed without
// blocking. The returned channel receives the job's error, or nil, exactly
// once and is then closed.
func (p *Pool) Submit(ctx context.Context, name string, job Job) (<-chan error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}
	if !p.admission.TryAcquire(1) {
		return nil, fmt.Errorf("%w: %s", ErrRejected, name)
	}

	e := &envelope{ctx: ctx, name: name, job: job, done: make(chan error, 1), admitted: time.Now()}
	p.jobs <- e
	return e.done, nil
}

// Shutdown stops accepting jobs and waits for admitted ones to finish or
// for ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		ctxlog.FromContext(ctx).Debug("Worker pool stopped.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(logger *slog.Logger) {
	defer p.wg.Done()
	for e := range p.jobs {
		wait := time.Since(e.admitted)
		if p.observe != nil {
			p.observe(e.name, wait)
		}
		logger.Debug("Worker picked up job.", "job", e.name, "queued", wait)

		e.done <- p.run(e)
		close(e.done)
		p.admission.Release(1)
	}
}

// run converts a panicking job into an error so the worker survives.
func (p *Pool) run(e *envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.name, r)
		}
	}()
	return e.job(e.ctx)
}
