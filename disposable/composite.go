// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package disposable

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-rxsched/internal/bag"
)

type (
	// Composite is a mutable set of disposables, disposed together.
	// Once disposed, it stays disposed, and any disposable added afterward is
	// disposed immediately, instead of being stored.
	//
	// Instances must be initialized using NewComposite.
	Composite struct {
		mu       sync.Mutex
		items    bag.Bag[Disposable]
		disposed atomic.Bool
	}

	// CompositeKey identifies a disposable stored in a Composite.
	CompositeKey uint64
)

// NewComposite initializes a Composite, containing the provided disposables.
func NewComposite(ds ...Disposable) *Composite {
	x := new(Composite)
	for _, d := range ds {
		x.items.Put(orNop(d))
	}
	return x
}

// Add inserts d, unless the receiver has already been disposed, in which
// case d is disposed synchronously, and not retained.
func (x *Composite) Add(d Disposable) {
	x.Insert(d)
}

// Insert behaves like Add, but returns the key of the stored disposable, for
// use with Remove. The bool will be false if d was disposed instead.
func (x *Composite) Insert(d Disposable) (CompositeKey, bool) {
	d = orNop(d)
	x.mu.Lock()
	if x.disposed.Load() {
		x.mu.Unlock()
		d.Dispose()
		return 0, false
	}
	key := x.items.Put(d)
	x.mu.Unlock()
	return CompositeKey(key), true
}

// Remove deletes the disposable for key, without disposing it, returning nil
// if it was not found (e.g. because the receiver was already disposed).
func (x *Composite) Remove(key CompositeKey) Disposable {
	x.mu.Lock()
	defer x.mu.Unlock()
	d, _ := x.items.Remove(bag.Key(key))
	return d
}

// Len returns the number of disposables currently stored.
func (x *Composite) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.items.Len()
}

// Disposed reports whether Dispose has been called.
func (x *Composite) Disposed() bool {
	return x.disposed.Load()
}

// Dispose disposes every contained disposable, in undefined order, and
// permanently marks the receiver disposed, clearing its storage.
func (x *Composite) Dispose() {
	x.mu.Lock()
	if x.disposed.Load() {
		x.mu.Unlock()
		return
	}
	x.disposed.Store(true)
	items := x.items.Clear()
	x.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}
