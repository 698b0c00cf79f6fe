// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package rxtest provides helpers for testing streams against a
// virtualtime.Scheduler: an Observer that records events with the virtual
// time of their delivery, and a hot Observable that emits recorded events at
// their virtual times.
package rxtest

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/rx"
	"github.com/joeycumines/go-rxsched/virtualtime"
)

type (
	// Recorded is an event, with the virtual time it was observed at.
	Recorded[E any] struct {
		Event rx.Event[E]
		Time  int64
	}

	// Observer records the events it receives. Instances must be initialized
	// using NewObserver.
	Observer[E any] struct {
		scheduler *virtualtime.Scheduler
		events    []Recorded[E]
		mu        sync.Mutex
	}

	// Subscription records the virtual times of a subscription to a
	// HotObservable. Unsubscribe is math.MaxInt64 while subscribed.
	Subscription struct {
		Subscribe   int64
		Unsubscribe int64
	}

	// HotObservable emits events at their recorded times, regardless of
	// subscribers. Instances must be initialized using NewHotObservable.
	HotObservable[E any] struct {
		scheduler     *virtualtime.Scheduler
		subject       *rx.Subject[E]
		subscriptions []Subscription
		mu            sync.Mutex
	}
)

// Unsubscribed is the Unsubscribe value of an active Subscription.
const Unsubscribed = math.MaxInt64

var _ rx.Observer[any] = (*Observer[any])(nil)

// OnNext returns a Recorded KindNext event.
func OnNext[E any](time int64, value E) Recorded[E] {
	return Recorded[E]{Time: time, Event: rx.Next(value)}
}

// OnError returns a Recorded KindError event.
func OnError[E any](time int64, err error) Recorded[E] {
	return Recorded[E]{Time: time, Event: rx.Error[E](err)}
}

// OnCompleted returns a Recorded KindCompleted event.
func OnCompleted[E any](time int64) Recorded[E] {
	return Recorded[E]{Time: time, Event: rx.Completed[E]()}
}

func (r Recorded[E]) String() string {
	return fmt.Sprintf(`%s@%d`, r.Event, r.Time)
}

// NewObserver initializes an Observer, stamping events with s.Now().
func NewObserver[E any](s *virtualtime.Scheduler) *Observer[E] {
	return &Observer[E]{scheduler: s}
}

func (x *Observer[E]) On(event rx.Event[E]) {
	now := x.scheduler.Now()
	x.mu.Lock()
	x.events = append(x.events, Recorded[E]{Time: now, Event: event})
	x.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (x *Observer[E]) Events() []Recorded[E] {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Recorded[E](nil), x.events...)
}

// NewHotObservable initializes a HotObservable, scheduling each of events
// on s, at its recorded time.
func NewHotObservable[E any](s *virtualtime.Scheduler, events ...Recorded[E]) *HotObservable[E] {
	x := &HotObservable[E]{
		scheduler: s,
		subject:   rx.NewSubject[E](),
	}
	for _, event := range events {
		_, _ = s.ScheduleAbsolute(event.Time, func() (disposable.Disposable, error) {
			x.subject.On(event.Event)
			return nil, nil
		})
	}
	return x
}

func (x *HotObservable[E]) Subscribe(observer rx.Observer[E]) disposable.Disposable {
	x.mu.Lock()
	index := len(x.subscriptions)
	x.subscriptions = append(x.subscriptions, Subscription{
		Subscribe:   x.scheduler.Now(),
		Unsubscribe: Unsubscribed,
	})
	x.mu.Unlock()

	d := x.subject.Subscribe(observer)

	return disposable.Func(func() {
		d.Dispose()
		x.mu.Lock()
		x.subscriptions[index].Unsubscribe = x.scheduler.Now()
		x.mu.Unlock()
	})
}

// Subscriptions returns a copy of the recorded subscriptions.
func (x *HotObservable[E]) Subscriptions() []Subscription {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Subscription(nil), x.subscriptions...)
}

// Diff compares recorded events, returning a human-readable diff, or an empty
// string, if they are equal. Values are compared using go-cmp, and errors are
// equal if either matches the other via errors.Is, or they have the same
// message.
func Diff[E any](want, got []Recorded[E], opts ...cmp.Option) string {
	valueOpts := opts
	opts = append(opts[:len(opts):len(opts)], cmp.Comparer(func(a, b rx.Event[E]) bool {
		if a.Kind() != b.Kind() {
			return false
		}
		va, _ := a.Value()
		vb, _ := b.Value()
		if !cmp.Equal(va, vb, valueOpts...) {
			return false
		}
		ea, eb := a.Err(), b.Err()
		if ea == nil || eb == nil {
			return ea == eb
		}
		return errors.Is(ea, eb) || errors.Is(eb, ea) || ea.Error() == eb.Error()
	}))
	return cmp.Diff(want, got, opts...)
}
