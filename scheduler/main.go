// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/dispatch"
	"github.com/joeycumines/go-rxsched/internal/fatal"
)

// Main is a Dispatch scheduler for the program's main execution context,
// typically a queue run by the main goroutine, see dispatch.Queue.Run.
//
// Schedule runs actions synchronously, if called from within the queue.
// Such actions nest, rather than running after the current body returns.
// ScheduleRelative always goes through the queue.
type Main struct {
	*Dispatch
}

// NewMain initializes a Main scheduler, running on q.
func NewMain(q *dispatch.Queue, opts ...Option) (*Main, error) {
	d, err := NewDispatch(q, opts...)
	if err != nil {
		return nil, err
	}
	return &Main{Dispatch: d}, nil
}

// Schedule runs action immediately, if the caller is executing on the queue,
// otherwise it behaves like Dispatch.Schedule.
func (x *Main) Schedule(action Action) (disposable.Disposable, error) {
	if action == nil {
		fatal.Raise(ErrNilAction)
	}
	if x.queue.IsCurrent() {
		return x.config.Run(action), nil
	}
	return x.Dispatch.Schedule(action)
}

// ScheduleQueued behaves like Dispatch.Schedule, never running action
// synchronously.
func (x *Main) ScheduleQueued(action Action) (disposable.Disposable, error) {
	return x.Dispatch.Schedule(action)
}

// EnsureExecuting panics with ErrWrongExecutionContext if the caller is not
// executing on the queue.
func (x *Main) EnsureExecuting() {
	if !x.queue.IsCurrent() {
		x.config.logger.Emerg().
			Str(`queue`, x.queue.Name()).
			Log(`scheduler: executing on wrong scheduler`)
		fatal.Raise(ErrWrongExecutionContext)
	}
}
