// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package disposable

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-rxsched/internal/fatal"
)

// SingleAssignment is a cell holding at most one disposable, which may be
// set exactly once. The zero value is ready to use.
//
// Setting it twice is a defect, see ErrAlreadyAssigned. If the cell has
// already been disposed, the assigned disposable is disposed immediately,
// within Set.
type SingleAssignment struct {
	mu       sync.Mutex
	current  Disposable
	assigned bool
	disposed atomic.Bool
}

// NewSingleAssignment is provided for symmetry with the other constructors,
// the zero value may be used directly.
func NewSingleAssignment() *SingleAssignment { return new(SingleAssignment) }

// Set assigns d, panicking with ErrAlreadyAssigned if already assigned.
func (x *SingleAssignment) Set(d Disposable) {
	d = orNop(d)
	x.mu.Lock()
	if x.assigned {
		x.mu.Unlock()
		fatal.Raise(ErrAlreadyAssigned)
	}
	x.assigned = true
	if x.disposed.Load() {
		x.mu.Unlock()
		d.Dispose()
		return
	}
	x.current = d
	x.mu.Unlock()
}

// Assigned reports whether Set has been called.
func (x *SingleAssignment) Assigned() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.assigned
}

// Disposed reports whether Dispose has been called.
func (x *SingleAssignment) Disposed() bool {
	return x.disposed.Load()
}

// Dispose disposes the assigned disposable, if any, and causes any later
// assignment to be disposed immediately.
func (x *SingleAssignment) Dispose() {
	x.mu.Lock()
	if x.disposed.Load() {
		x.mu.Unlock()
		return
	}
	x.disposed.Store(true)
	current := x.current
	x.current = nil
	x.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}
