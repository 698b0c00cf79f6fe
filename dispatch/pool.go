// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dispatch

import (
	"context"
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

type (
	// PoolConfig models optional configuration, for NewPool.
	PoolConfig struct {
		// Workers is the number of worker goroutines, if positive.
		// **Defaults to runtime.GOMAXPROCS(0), if 0, or PoolConfig is nil.**
		//
		// WARNING: NewPool will panic if this is negative.
		Workers int
	}

	// Pool is a concurrent execution queue, running submitted functions on a
	// fixed number of worker goroutines, in FIFO order of dispatch, but with
	// no ordering guarantees between concurrently running functions.
	// Instances must be initialized using NewPool.
	//
	// A Queue configured WithTarget normalizes a Pool to serial execution.
	Pool struct {
		mu       sync.Mutex
		cond     sync.Cond
		tasks    *queue.Queue // of func()
		workers  int
		closed   bool
		stopping bool
		done     chan struct{}
	}
)

// NewPool initializes a new Pool, starting its workers. The provided config
// may be nil. Pool.Shutdown or Pool.Close should be called when the Pool is
// no longer needed, after any queues targeting it have terminated.
func NewPool(config *PoolConfig) *Pool {
	p := Pool{
		tasks:   queue.New(),
		workers: runtime.GOMAXPROCS(0),
		done:    make(chan struct{}),
	}
	p.cond.L = &p.mu

	if config != nil && config.Workers != 0 {
		if config.Workers < 0 {
			panic(`dispatch: negative pool workers`)
		}
		p.workers = config.Workers
	}

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			p.work()
		}()
	}
	go func() {
		wg.Wait()
		close(p.done)
	}()

	return &p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit schedules fn to be run by a worker.
func (p *Pool) Submit(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks.Add(fn)
	p.cond.Signal()
	return nil
}

// Shutdown prevents further submissions, then waits for all already
// submitted functions to complete, or ctx to be canceled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stop(false)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close prevents further submissions, discards pending functions, and
// waits for running functions to complete.
//
// This method is unsafe to call from within a submitted function.
func (p *Pool) Close() error {
	p.stop(true)
	<-p.done
	return nil
}

func (p *Pool) stop(discard bool) {
	p.mu.Lock()
	p.closed = true
	p.stopping = true
	if discard {
		p.tasks = queue.New()
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *Pool) work() {
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.stopping {
			p.cond.Wait()
		}
		if p.tasks.Length() == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.tasks.Remove().(func())
		p.mu.Unlock()

		fn()
	}
}
