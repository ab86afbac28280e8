package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrBusy signals that the worker pool and its wait queue are saturated.
// Callers should surface this as a retry-later condition instead of queuing
// without bound.
var ErrBusy = errors.New("pipeline busy, retry later")

// WorkerPool runs CPU-bound tasks (image re-encoding) on a fixed number of
// workers with a bounded wait queue. Submissions beyond workers+queue depth
// are rejected with ErrBusy.
type WorkerPool struct {
	tasks     chan poolTask
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type poolTask struct {
	run  func() error
	done chan error
}

// NewWorkerPool creates a pool with the given worker count and queue depth.
// Non-positive workers default to runtime.NumCPU(); negative queue depth
// defaults to the worker count.
func NewWorkerPool(workers, queueDepth int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueDepth < 0 {
		queueDepth = workers
	}

	p := &WorkerPool{tasks: make(chan poolTask, queueDepth)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.done <- t.run()
	}
}

// Run schedules fn and waits for it to finish, returning fn's error. If the
// pool's queue is full the call fails fast with ErrBusy; if ctx is cancelled
// before fn starts or completes, the context error is returned.
func (p *WorkerPool) Run(ctx context.Context, fn func() error) error {
	t := poolTask{run: fn, done: make(chan error, 1)}

	select {
	case p.tasks <- t:
	default:
		return ErrBusy
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for in-flight work to drain.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
	})
}
