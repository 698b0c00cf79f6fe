// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"errors"
)

var (
	// ErrWrongExecutionContext is raised by Main.EnsureExecuting.
	ErrWrongExecutionContext = errors.New(`scheduler: executing on wrong scheduler`)

	// ErrNilQueue is returned by constructors, given a nil queue or pool.
	ErrNilQueue = errors.New(`scheduler: nil queue`)

	// ErrNilAction is raised when scheduling a nil Action.
	ErrNilAction = errors.New(`scheduler: nil action`)
)

// ActionError wraps an error returned by a scheduled Action.
type ActionError struct {
	Err error
}

func (e *ActionError) Error() string {
	return `scheduler: action failed: ` + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
