// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"github.com/joeycumines/go-rxsched/disposable"
)

type (
	// Action is a unit of scheduled work. The returned disposable is retained
	// by the scheduling disposable, and disposed with it. A nil disposable is
	// equivalent to disposable.Nop. A non-nil error is passed to the action
	// error handler, see Config.
	Action func() (disposable.Disposable, error)

	// Immediate runs actions as soon as possible, on some execution context.
	Immediate interface {
		// Schedule runs action as soon as possible.
		Schedule(action Action) (disposable.Disposable, error)
	}

	// Scheduler runs actions, where T is the absolute time type, and D is the
	// relative time (delay) type.
	//
	// The returned error indicates that the action could not be scheduled at
	// all, e.g. because the underlying queue has terminated. Disposing the
	// returned disposable prevents the action from running, if it has not
	// already started.
	Scheduler[T, D any] interface {
		Immediate

		// Now returns the scheduler's current notion of time.
		Now() T

		// ScheduleRelative runs action after delay.
		ScheduleRelative(delay D, action Action) (disposable.Disposable, error)
	}

	// Serial is implemented by schedulers that never run two actions
	// concurrently, and run actions scheduled via Schedule in submission order.
	Serial interface {
		SerialExecution()
	}

	// Inline is implemented by schedulers whose Schedule may run the action
	// synchronously, on the calling goroutine. ScheduleQueued never does,
	// and is ordered after everything already scheduled.
	Inline interface {
		Immediate
		ScheduleQueued(action Action) (disposable.Disposable, error)
	}
)

// ScheduleState schedules fn, passing it state, using s.Schedule.
func ScheduleState[S any](s Immediate, state S, fn func(state S) (disposable.Disposable, error)) (disposable.Disposable, error) {
	return s.Schedule(func() (disposable.Disposable, error) { return fn(state) })
}

// ScheduleRelativeState schedules fn, passing it state, using
// s.ScheduleRelative. The type parameters T and D usually cannot be inferred.
func ScheduleRelativeState[S, T, D any](s Scheduler[T, D], state S, delay D, fn func(state S) (disposable.Disposable, error)) (disposable.Disposable, error) {
	return s.ScheduleRelative(delay, func() (disposable.Disposable, error) { return fn(state) })
}

// IsSerial reports whether s implements Serial.
func IsSerial(s any) bool {
	_, ok := s.(Serial)
	return ok
}
