// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Task is an asynchronous operation run by a Runtime. ctx is cancelled only
// after the runtime has been closed and every in-flight task has returned.
type Task func(ctx context.Context) ([]byte, error)

// Runtime is a pool of worker goroutines executing Tasks on behalf of
// callers that block until their task completes. Workers start on the first
// submission.
//
// Calls beyond the pool size queue; they never deadlock unless a Task itself
// calls RunBlocking on the same runtime while every worker is busy.
type Runtime struct {
	workers int
	logger  *zap.Logger

	startOnce sync.Once
	started   atomic.Bool
	mu        sync.RWMutex // guards closed and sends on jobs against close
	closed    bool
	jobs      chan job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type job struct {
	task Task
	done chan<- result
}

type result struct {
	payload []byte
	err     error
}

// NewRuntime returns an unstarted runtime with the given pool size.
func NewRuntime(workers int, logger *zap.Logger) *Runtime {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = Logger()
	}
	return &Runtime{
		workers: workers,
		logger:  logger,
	}
}

// start launches the workers; callers hold r.mu.
func (r *Runtime) start() {
	r.startOnce.Do(func() {
		r.ctx, r.cancel = context.WithCancel(context.Background())
		r.jobs = make(chan job)
		r.wg.Add(r.workers)
		for i := 0; i < r.workers; i++ {
			go r.worker()
		}
		r.started.Store(true)
		r.logger.Debug("runtime started", zap.Int("workers", r.workers))
	})
}

// Started reports whether the workers have been launched.
func (r *Runtime) Started() bool {
	return r.started.Load()
}

// RunBlocking submits task and blocks until it completes. A panic inside the
// task is returned as a KindInternal error.
func (r *Runtime) RunBlocking(task Task) ([]byte, error) {
	done := make(chan result, 1)

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, &Error{Kind: KindInternal, Cause: ErrRuntimeClosed}
	}
	r.start()
	r.jobs <- job{task: task, done: done}
	r.mu.RUnlock()

	res := <-done
	return res.payload, res.err
}

func (r *Runtime) worker() {
	defer r.wg.Done()
	for j := range r.jobs {
		j.done <- r.run(j.task)
	}
}

func (r *Runtime) run(task Task) (res result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("task panicked", zap.Any("panic", p))
			res = result{err: &Error{Kind: KindInternal, Message: fmt.Sprintf("operation panicked: %v", p)}}
		}
	}()
	payload, err := task(r.ctx)
	return result{payload: payload, err: err}
}

// Close stops accepting tasks, waits for in-flight tasks to finish and then
// cancels the runtime context. Close is idempotent.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.jobs != nil
	if started {
		close(r.jobs)
	}
	r.mu.Unlock()

	if !started {
		return
	}
	r.wg.Wait()
	r.cancel()
	r.logger.Debug("runtime stopped")
}
