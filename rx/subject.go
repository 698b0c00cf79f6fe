// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package rx

import (
	"sync"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/internal/bag"
	"github.com/joeycumines/go-rxsched/internal/fatal"
)

type (
	// Subject is both an Observer and an Observable, forwarding events to
	// all current observers. Once stopped, it replays the stop event to new
	// observers. Instances must be initialized using NewSubject.
	Subject[E any] struct {
		confine   func()
		observers bag.Bag[Observer[E]]
		stop      *Event[E]
		mu        sync.Mutex
	}

	// SubjectKey identifies an observer added to a Subject.
	SubjectKey uint64

	// SubjectOption configures a Subject.
	SubjectOption interface {
		applySubject(*subjectOptions)
	}

	subjectOptions struct {
		confine func()
	}

	subjectOptionImpl struct {
		applySubjectFunc func(*subjectOptions)
	}
)

var (
	// compile time assertions

	_ Observer[any]   = (*Subject[any])(nil)
	_ Observable[any] = (*Subject[any])(nil)
)

func (o *subjectOptionImpl) applySubject(opts *subjectOptions) {
	o.applySubjectFunc(opts)
}

// WithConfinement configures a function called at the start of every Subject
// method, intended to assert the caller's execution context, e.g.
// scheduler.Main.EnsureExecuting.
func WithConfinement(fn func()) SubjectOption {
	return &subjectOptionImpl{func(opts *subjectOptions) {
		opts.confine = fn
	}}
}

// NewSubject initializes a new Subject.
func NewSubject[E any](opts ...SubjectOption) *Subject[E] {
	var cfg subjectOptions
	for _, opt := range opts {
		if opt != nil {
			opt.applySubject(&cfg)
		}
	}
	return &Subject[E]{confine: cfg.confine}
}

func (x *Subject[E]) ensure() {
	if x.confine != nil {
		x.confine()
	}
}

// On forwards event to all current observers. Events following a stop event
// are ignored.
func (x *Subject[E]) On(event Event[E]) {
	x.ensure()

	x.mu.Lock()
	if x.stop != nil {
		x.mu.Unlock()
		return
	}
	var observers []Observer[E]
	if event.IsStop() {
		x.stop = &event
		observers = x.observers.Clear()
	} else {
		observers = x.observers.Values()
	}
	x.mu.Unlock()

	for _, observer := range observers {
		observer.On(event)
	}
}

// AddObserver adds observer, returning its key. If the subject has already
// stopped, the stop event is delivered immediately, and the zero key is
// returned.
func (x *Subject[E]) AddObserver(observer Observer[E]) SubjectKey {
	x.ensure()

	x.mu.Lock()
	if stop := x.stop; stop != nil {
		x.mu.Unlock()
		observer.On(*stop)
		return 0
	}
	key := x.observers.Put(observer)
	x.mu.Unlock()

	return SubjectKey(key)
}

// RemoveObserver removes the observer identified by key. It is a no-op once
// the subject has stopped. Otherwise, removing a key that is not present
// panics with ErrUnknownObserverKey.
func (x *Subject[E]) RemoveObserver(key SubjectKey) {
	x.ensure()

	x.mu.Lock()
	if x.stop != nil {
		x.mu.Unlock()
		return
	}
	_, ok := x.observers.Remove(bag.Key(key))
	x.mu.Unlock()

	if !ok {
		fatal.Raise(ErrUnknownObserverKey)
	}
}

// Subscribe adds observer, returning a disposable that removes it.
func (x *Subject[E]) Subscribe(observer Observer[E]) disposable.Disposable {
	key := x.AddObserver(observer)
	if key == 0 {
		return disposable.Nop()
	}
	return disposable.Func(func() { x.RemoveObserver(key) })
}

// HasObservers reports whether any observers are subscribed.
func (x *Subject[E]) HasObservers() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.observers.Len() != 0
}
