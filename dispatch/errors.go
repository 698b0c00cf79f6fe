// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dispatch

import (
	"errors"
)

var (
	// ErrQueueAlreadyRunning is returned when Run is called on a queue that
	// is already running.
	ErrQueueAlreadyRunning = errors.New(`dispatch: queue is already running`)

	// ErrQueueTerminated is returned when operations are attempted on a
	// terminated queue.
	ErrQueueTerminated = errors.New(`dispatch: queue has been terminated`)

	// ErrQueueTargeted is returned when Run is called on a queue that
	// executes on a Pool.
	ErrQueueTargeted = errors.New(`dispatch: queue executes on a target pool`)

	// ErrQueueOverloaded is passed to the overload callback, when the backlog
	// exceeds a single drain budget.
	ErrQueueOverloaded = errors.New(`dispatch: queue is overloaded`)

	// ErrReentrantRun is returned when Run is called from within the queue.
	ErrReentrantRun = errors.New(`dispatch: cannot call Run from within the queue`)

	// ErrNilTask is returned when a nil function is submitted.
	ErrNilTask = errors.New(`dispatch: nil task`)

	// ErrPoolClosed is returned when submitting to a closed Pool.
	ErrPoolClosed = errors.New(`dispatch: pool has been closed`)
)
