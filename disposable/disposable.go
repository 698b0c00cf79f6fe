// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package disposable

import (
	"errors"
	"sync/atomic"
)

type (
	// Disposable releases an associated resource. Implementations must
	// tolerate multiple (including concurrent) calls, performing the release
	// at most once.
	Disposable interface {
		Dispose()
	}

	// FuncDisposable wraps a cleanup function, see Func.
	FuncDisposable struct {
		fn atomic.Pointer[func()]
	}

	nopDisposable struct{}
)

var (
	// ErrAlreadyAssigned is raised (as a panic) by SingleAssignment.Set, if
	// called more than once.
	ErrAlreadyAssigned = errors.New(`disposable: single assignment disposable already assigned`)
)

// Nop returns the stateless, no-op disposable, used as a placeholder for an
// already neutralized handle. All values returned by Nop are equal.
func Nop() Disposable { return nopDisposable{} }

func (nopDisposable) Dispose() {}

// Func returns a disposable that calls fn, at most once, on the first call
// to Dispose. The first caller wins the exchange; concurrent callers return
// immediately, without waiting for fn to finish. A nil fn is allowed.
func Func(fn func()) *FuncDisposable {
	if fn == nil {
		fn = func() {}
	}
	var x FuncDisposable
	x.fn.Store(&fn)
	return &x
}

// Dispose calls the wrapped function, if this is the first call.
func (x *FuncDisposable) Dispose() {
	if fn := x.fn.Swap(nil); fn != nil {
		(*fn)()
	}
}

// Disposed reports whether Dispose has been called.
func (x *FuncDisposable) Disposed() bool {
	return x.fn.Load() == nil
}

func orNop(d Disposable) Disposable {
	if d == nil {
		return Nop()
	}
	return d
}
