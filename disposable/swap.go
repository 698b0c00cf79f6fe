// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package disposable

import (
	"sync/atomic"
)

type (
	// Swap holds a replaceable disposable. Disposing it atomically exchanges
	// the held value for the no-op disposable, then disposes the previous
	// value, exactly once. The zero value holds nothing, and is ready to use.
	Swap struct {
		v atomic.Pointer[swapValue]
	}

	swapValue struct {
		d Disposable
	}
)

// swapDisposed marks a disposed Swap, its identity is what matters
var swapDisposed = &swapValue{d: Nop()}

// NewSwap initializes a Swap holding d.
func NewSwap(d Disposable) *Swap {
	var x Swap
	x.v.Store(&swapValue{d: orNop(d)})
	return &x
}

// Replace stores d, returning the previous value, which is NOT disposed.
// If the receiver has already been disposed, d is disposed immediately, and
// the no-op disposable is returned.
func (x *Swap) Replace(d Disposable) Disposable {
	next := &swapValue{d: orNop(d)}
	for {
		prev := x.v.Load()
		if prev == swapDisposed {
			next.d.Dispose()
			return Nop()
		}
		if x.v.CompareAndSwap(prev, next) {
			if prev == nil {
				return Nop()
			}
			return prev.d
		}
	}
}

// Load returns the currently held disposable, or the no-op disposable.
func (x *Swap) Load() Disposable {
	if v := x.v.Load(); v != nil {
		return v.d
	}
	return Nop()
}

// Disposed reports whether Dispose has been called.
func (x *Swap) Disposed() bool {
	return x.v.Load() == swapDisposed
}

// Dispose exchanges the held value for the no-op disposable, then disposes
// it. Only the first call has any effect.
func (x *Swap) Dispose() {
	if prev := x.v.Swap(swapDisposed); prev != swapDisposed && prev != nil {
		prev.d.Dispose()
	}
}
