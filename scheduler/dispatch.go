// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"time"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/dispatch"
	"github.com/joeycumines/go-rxsched/internal/fatal"
)

// Dispatch is a Scheduler that runs actions on a dispatch.Queue. Actions
// scheduled via Schedule run in submission order, and actions scheduled via
// ScheduleRelative run in due time order. At most one action runs at a time.
type Dispatch struct {
	queue  *dispatch.Queue
	config *Config
}

var (
	// compile time assertions

	_ Scheduler[time.Time, time.Duration] = (*Dispatch)(nil)
	_ Serial                              = (*Dispatch)(nil)
)

// NewDispatch initializes a Dispatch scheduler, running on q.
func NewDispatch(q *dispatch.Queue, opts ...Option) (*Dispatch, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	config, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Dispatch{queue: q, config: config}, nil
}

// NewSerialOnPool initializes a Dispatch scheduler running on a new queue,
// named name, that executes serially on the given (concurrent) pool. The
// queue should be shut down, via Dispatch.Queue, before the pool.
func NewSerialOnPool(pool *dispatch.Pool, name string, opts ...Option) (*Dispatch, error) {
	if pool == nil {
		return nil, ErrNilQueue
	}
	config, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	q, err := dispatch.NewQueue(
		dispatch.WithTarget(pool),
		dispatch.WithName(name),
		dispatch.WithLogger(config.logger),
	)
	if err != nil {
		return nil, err
	}
	return &Dispatch{queue: q, config: config}, nil
}

// Queue returns the underlying queue.
func (x *Dispatch) Queue() *dispatch.Queue {
	return x.queue
}

// Config returns the scheduler's configuration.
func (x *Dispatch) Config() *Config {
	return x.config
}

// Now returns the current wall clock time.
func (x *Dispatch) Now() time.Time {
	return time.Now()
}

func (x *Dispatch) SerialExecution() {}

// Schedule submits action to the queue. The returned disposable may be
// disposed before the action runs, in which case it is skipped, or after,
// in which case the action's result is disposed.
func (x *Dispatch) Schedule(action Action) (disposable.Disposable, error) {
	if action == nil {
		fatal.Raise(ErrNilAction)
	}

	cancel := disposable.NewSingleAssignment()

	if err := x.queue.Submit(func() {
		if cancel.Disposed() {
			return
		}
		cancel.Set(x.config.Run(action))
	}); err != nil {
		return nil, err
	}

	return cancel, nil
}

// ScheduleRelative runs action on the queue, after delay. Negative delays are
// treated as 0. Disposing the result stops the timer, or disposes the action's
// result, if it has already run.
func (x *Dispatch) ScheduleRelative(delay time.Duration, action Action) (disposable.Disposable, error) {
	if action == nil {
		fatal.Raise(ErrNilAction)
	}
	if delay < 0 {
		delay = 0
	}

	composite := disposable.NewComposite()

	timer, err := x.queue.AfterFunc(delay, func() {
		if composite.Disposed() {
			return
		}
		composite.Add(x.config.Run(action))
	})
	if err != nil {
		return nil, err
	}

	composite.Add(disposable.Func(func() { timer.Stop() }))

	return composite, nil
}
