// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package rx

import (
	"sync/atomic"

	"github.com/joeycumines/go-rxsched/disposable"
)

type (
	// Observer receives events. Well-behaved sources call On serially, with
	// at most one stop event (KindError or KindCompleted), which is last.
	Observer[E any] interface {
		On(event Event[E])
	}

	// ObserverFunc implements Observer.
	ObserverFunc[E any] func(event Event[E])

	// Observable is a source of events. Subscribe returns a disposable that
	// cancels the subscription.
	Observable[E any] interface {
		Subscribe(observer Observer[E]) disposable.Disposable
	}

	// ObservableFunc implements Observable.
	ObservableFunc[E any] func(observer Observer[E]) disposable.Disposable

	// stopGuard drops events following a stop event
	stopGuard[E any] struct {
		observer Observer[E]
		stopped  atomic.Bool
	}
)

func (f ObserverFunc[E]) On(event Event[E]) { f(event) }

func (f ObservableFunc[E]) Subscribe(observer Observer[E]) disposable.Disposable {
	return f(observer)
}

func (x *stopGuard[E]) On(event Event[E]) {
	if event.IsStop() {
		if !x.stopped.CompareAndSwap(false, true) {
			return
		}
	} else if x.stopped.Load() {
		return
	}
	x.observer.On(event)
}

// Create returns an Observable that calls subscribe for each subscription.
// Events sent after a stop event are dropped. The subscribe function may
// return nil, if there is nothing to cancel.
func Create[E any](subscribe func(observer Observer[E]) disposable.Disposable) Observable[E] {
	return ObservableFunc[E](func(observer Observer[E]) disposable.Disposable {
		if d := subscribe(&stopGuard[E]{observer: observer}); d != nil {
			return d
		}
		return disposable.Nop()
	})
}

// Just returns an Observable that emits value, then completes.
func Just[E any](value E) Observable[E] {
	return FromSlice([]E{value})
}

// FromSlice returns an Observable that synchronously emits each of values,
// then completes.
func FromSlice[E any](values []E) Observable[E] {
	return Create(func(observer Observer[E]) disposable.Disposable {
		for _, v := range values {
			observer.On(Next(v))
		}
		observer.On(Completed[E]())
		return nil
	})
}

// Empty returns an Observable that completes immediately.
func Empty[E any]() Observable[E] {
	return FromSlice[E](nil)
}

// Throw returns an Observable that fails immediately with err.
func Throw[E any](err error) Observable[E] {
	event := Error[E](err)
	return Create(func(observer Observer[E]) disposable.Disposable {
		observer.On(event)
		return nil
	})
}
