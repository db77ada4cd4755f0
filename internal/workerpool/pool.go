// Package workerpool runs CPU-bound work on a bounded set of goroutines
// fed by a bounded queue, away from request-handling goroutines.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
)

// ErrClosed is returned when work is submitted to a closed pool.
var ErrClosed = errors.New("worker pool closed")

// DefaultQueueSize is used when New is given a non-positive queue size.
const DefaultQueueSize = 64

// Pool is a fixed-size worker pool backed by pond.
type Pool struct {
	pool pond.Pool

	mu     sync.RWMutex
	closed bool

	workers   int
	queueSize int
}

// New starts a pool with the given number of workers and queue capacity.
// Non-positive values fall back to runtime.NumCPU() and DefaultQueueSize.
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Pool{
		pool:      pond.NewPool(workers, pond.WithQueueSize(queueSize)),
		workers:   workers,
		queueSize: queueSize,
	}
}

// Submit enqueues task. It returns ctx.Err() if ctx is already done and
// blocks while the queue is full.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.pool.Submit(task)
	return nil
}

// Close stops accepting work, runs everything already queued and waits for the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.pool.StopAndWait()
}

// Workers returns the maximum number of tasks run at once.
func (p *Pool) Workers() int { return p.workers }

// QueueSize returns the capacity of the task queue.
func (p *Pool) QueueSize() int { return p.queueSize }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return int(p.pool.WaitingTasks()) }

// Busy returns the number of workers currently running tasks.
func (p *Pool) Busy() int { return int(p.pool.RunningWorkers()) }

type result[T any] struct {
	value T
	err   error
}

// Do runs fn on the pool and waits for its result.
//
// If ctx ends first Do returns ctx.Err(). A task that was already queued still
// runs to completion and its result is discarded. A panic inside fn is
// returned as an error instead of crashing the worker.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T

	done := make(chan result[T], 1)
	task := func() {
		if ctx.Err() != nil {
			done <- result[T]{err: ctx.Err()}
			return
		}

		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("worker task panicked: %v", r)}
			}
		}()

		v, err := fn()
		done <- result[T]{value: v, err: err}
	}

	if err := p.Submit(ctx, task); err != nil {
		return zero, err
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
