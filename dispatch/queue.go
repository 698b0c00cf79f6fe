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
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-rxsched/internal/goroutineid"
	"github.com/joeycumines/logiface"
)

// Queue is a serial execution queue. See the package documentation for
// details. Instances must be initialized using NewQueue.
type Queue struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	// State machine (cache-line padded internally)
	state fastState

	// configuration
	logger       *logiface.Logger[logiface.Event]
	target       *Pool
	recoverFn    func(any)
	onOverload   func(error)
	name         string
	budget       int
	lockOSThread bool

	// guards tasks, timers, clock, closed, and the transition to StateTerminated
	mu     sync.Mutex
	tasks  *queue.Queue // of func()
	timers timerHeap
	clock  *time.Timer // armed for timers[0], if any
	closed bool        // Close was called, new work is rejected

	// dedicated mode: set by the first call to Run
	started atomic.Bool

	// dedicated mode: wakes Run
	wake chan struct{}

	// targeted mode: set while a drain is submitted to, or running on, the target
	draining atomic.Bool

	// goroutine currently executing the queue's bodies, or 0
	goroutineID atomic.Uint64

	// closed on StateTerminated
	done chan struct{}

	submitted       atomic.Uint64
	executed        atomic.Uint64
	timersScheduled atomic.Uint64
	timersFired     atomic.Uint64
	timersStopped   atomic.Uint64
}

// Stats is a point-in-time snapshot of a Queue's counters.
type Stats struct {
	Submitted       uint64
	Executed        uint64
	TimersScheduled uint64
	TimersFired     uint64
	TimersStopped   uint64
	Pending         int
	PendingTimers   int
}

// overloadLimiter rate limits overload warnings, per queue
var overloadLimiter = catrate.NewLimiter(map[time.Duration]int{
	time.Second: 1,
	time.Minute: 10,
})

// NewQueue initializes a new Queue. Queues configured WithTarget start
// running immediately, otherwise Queue.Run must be called.
func NewQueue(opts ...QueueOption) (*Queue, error) {
	cfg, err := resolveQueueOptions(opts)
	if err != nil {
		return nil, err
	}

	q := &Queue{
		logger:       cfg.logger,
		target:       cfg.target,
		recoverFn:    cfg.recoverFn,
		onOverload:   cfg.onOverload,
		name:         cfg.name,
		budget:       cfg.budget,
		lockOSThread: cfg.lockOSThread,
		tasks:        queue.New(),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}

	if q.target != nil {
		q.state.Store(StateRunning)
	}

	return q, nil
}

// Name returns the name the queue was configured with.
func (q *Queue) Name() string {
	return q.name
}

// State returns the current queue state.
func (q *Queue) State() QueueState {
	return q.state.Load()
}

// Done returns a channel that is closed once the queue has terminated.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// IsCurrent reports whether the calling goroutine is currently executing the
// queue's bodies.
func (q *Queue) IsCurrent() bool {
	id := q.goroutineID.Load()
	return id != 0 && id == goroutineid.Get()
}

// Run drains the queue on the calling goroutine, blocking until the queue
// terminates, via Shutdown, Close, or ctx cancellation. Cancellation drains
// already submitted work, then returns ctx.Err().
func (q *Queue) Run(ctx context.Context) error {
	if q.IsCurrent() {
		return ErrReentrantRun
	}
	if q.target != nil {
		return ErrQueueTargeted
	}
	if !q.started.CompareAndSwap(false, true) {
		if q.state.Load() == StateTerminated {
			return ErrQueueTerminated
		}
		return ErrQueueAlreadyRunning
	}
	// Shutdown before Run leaves the queue terminating, with work to drain
	if !q.state.TryTransition(StateAwake, StateRunning) && q.state.Load() != StateTerminating {
		return ErrQueueTerminated
	}

	if q.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	q.goroutineID.Store(goroutineid.Get())
	defer q.goroutineID.Store(0)

	q.logger.Debug().
		Str(`queue`, q.name).
		Log(`dispatch: queue running`)

	for {
		finished, more := q.drain()
		if finished {
			return nil
		}

		if more {
			// budget exhausted, re-check ctx without blocking
			select {
			case <-ctx.Done():
				return q.cancelRun(ctx)
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return q.cancelRun(ctx)
		case <-q.wake:
		}
	}
}

// cancelRun initiates termination, then drains the remaining work, on the Run goroutine.
func (q *Queue) cancelRun(ctx context.Context) error {
	q.terminate(false)
	for {
		if finished, _ := q.drain(); finished {
			return ctx.Err()
		}
	}
}

// Shutdown stops the queue accepting new work, once all already submitted
// work has been executed, blocking until termination completes, or ctx is
// canceled. Pending timers are discarded.
//
// If the queue has not yet been run, and has pending work, termination
// completes only after Run drains that work.
//
// If called from within the queue, termination is initiated, but Shutdown
// returns immediately, without waiting.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.terminate(false)
	if q.IsCurrent() {
		return nil
	}
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close terminates the queue without executing any pending work. It does
// not wait for a currently executing task to finish. Submit and AfterFunc
// fail with ErrQueueTerminated from the moment Close is called.
func (q *Queue) Close() error {
	if q.state.Load() == StateTerminated {
		return ErrQueueTerminated
	}
	q.terminate(true)
	return nil
}

// terminate transitions towards StateTerminated, optionally discarding
// pending tasks.
func (q *Queue) terminate(discard bool) {
	q.mu.Lock()
	if discard {
		q.closed = true
		q.tasks = queue.New()
	}
	if q.tasks.Length() == 0 {
		if q.state.TryTransition(StateAwake, StateTerminated) {
			q.finishLocked()
			q.mu.Unlock()
			return
		}
	} else {
		// pending work is drained by a later Run
		q.state.TryTransition(StateAwake, StateTerminating)
	}
	if q.state.Load() == StateTerminated {
		q.mu.Unlock()
		return
	}
	q.state.TryTransition(StateRunning, StateTerminating)
	q.mu.Unlock()

	q.logger.Debug().
		Str(`queue`, q.name).
		Bool(`discard`, discard).
		Log(`dispatch: queue terminating`)

	q.signal()
}

// finishLocked completes termination, must be called with mu held.
func (q *Queue) finishLocked() {
	q.state.Store(StateTerminated)
	if q.clock != nil {
		q.clock.Stop()
	}
	for _, t := range q.timers {
		t.index = -1
	}
	q.timers = nil
	q.tasks = queue.New()
	close(q.done)

	q.logger.Debug().
		Str(`queue`, q.name).
		Log(`dispatch: queue terminated`)
}

// Submit enqueues fn, to be executed after all previously submitted work.
// It is safe to call from any goroutine, including from within the queue.
//
// State Policy:
//   - StateTerminated, or after Close: returns ErrQueueTerminated
//   - StateTerminating: accepted, drained before termination completes
//   - StateAwake: accepted, executed once Run is called
func (q *Queue) Submit(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}

	q.mu.Lock()
	if q.closed || q.state.Load() == StateTerminated {
		q.mu.Unlock()
		return ErrQueueTerminated
	}
	q.tasks.Add(fn)
	q.mu.Unlock()

	q.submitted.Add(1)
	q.signal()

	return nil
}

// signal ensures that a drain pass will observe the current queue contents.
func (q *Queue) signal() {
	if q.target == nil {
		select {
		case q.wake <- struct{}{}:
		default:
		}
		return
	}

	if !q.draining.CompareAndSwap(false, true) {
		return
	}

	if err := q.target.Submit(q.drainOnTarget); err != nil {
		q.draining.Store(false)
		q.logger.Err().
			Err(err).
			Str(`queue`, q.name).
			Log(`dispatch: target rejected queue, discarding pending work`)
		q.mu.Lock()
		if q.state.Load() != StateTerminated {
			q.finishLocked()
		}
		q.mu.Unlock()
	}
}

// drainOnTarget is the body submitted to the target pool.
func (q *Queue) drainOnTarget() {
	q.goroutineID.Store(goroutineid.Get())
	finished, _ := q.drain()
	q.goroutineID.Store(0)

	q.draining.Store(false)

	// anything submitted while draining would have failed to claim the pool
	if !finished && q.hasWork() {
		q.signal()
	}
}

func (q *Queue) hasWork() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.state.Load() {
	case StateTerminated:
		return false
	case StateTerminating:
		return true
	default:
		return q.tasks.Length() != 0
	}
}

// drain executes tasks until the queue is empty, terminated, or the budget
// is exhausted, the latter indicated by more.
func (q *Queue) drain() (finished, more bool) {
	for i := 0; i < q.budget; i++ {
		fn, ok, done := q.pop()
		if done {
			return true, false
		}
		if !ok {
			return false, false
		}
		q.execute(fn)
	}

	q.mu.Lock()
	more = q.tasks.Length() != 0
	q.mu.Unlock()

	if more {
		q.overloaded()
	}

	return false, more
}

// pop removes the next task, or completes termination, if appropriate.
func (q *Queue) pop() (fn func(), ok, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state.Load() == StateTerminated {
		return nil, false, true
	}

	if q.tasks.Length() != 0 {
		return q.tasks.Remove().(func()), true, false
	}

	if q.state.Load() == StateTerminating {
		q.finishLocked()
		return nil, false, true
	}

	return nil, false, false
}

func (q *Queue) execute(fn func()) {
	if q.recoverFn != nil {
		defer func() {
			if r := recover(); r != nil {
				q.logger.Err().
					Str(`queue`, q.name).
					Interface(`panic`, r).
					Log(`dispatch: task panicked`)
				q.recoverFn(r)
			}
		}()
	}

	fn()

	q.executed.Add(1)
}

func (q *Queue) overloaded() {
	if q.onOverload != nil {
		q.onOverload(ErrQueueOverloaded)
	}
	if _, ok := overloadLimiter.Allow(q); ok {
		q.logger.Warning().
			Str(`queue`, q.name).
			Int(`budget`, q.budget).
			Log(`dispatch: queue is overloaded`)
	}
}

// Stats returns a snapshot of the queue's counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending, pendingTimers := q.tasks.Length(), len(q.timers)
	q.mu.Unlock()
	return Stats{
		Submitted:       q.submitted.Load(),
		Executed:        q.executed.Load(),
		TimersScheduled: q.timersScheduled.Load(),
		TimersFired:     q.timersFired.Load(),
		TimersStopped:   q.timersStopped.Load(),
		Pending:         pending,
		PendingTimers:   pendingTimers,
	}
}
