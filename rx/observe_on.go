// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package rx

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/internal/fatal"
	"github.com/joeycumines/go-rxsched/scheduler"
)

// observeOnSink re-delivers events on a scheduler.
//
// Disposal is two-layered: upstream holds the source subscription, and
// cancel holds the composite of pending deliveries, which is exchanged for
// the no-op disposable, then disposed, preventing any late delivery.
type observeOnSink[E any] struct {
	scheduler scheduler.Immediate
	inline    scheduler.Inline // set if scheduler may run actions synchronously
	observer  Observer[E]
	pending   *disposable.Composite
	upstream  disposable.Swap
	cancel    disposable.Swap
	disposed  atomic.Bool
	serial    bool

	// non-serial schedulers only
	mu       sync.Mutex
	queue    []Event[E]
	draining bool
}

// ObserveOn returns an Observable that delivers the events of source to
// observers using s, preserving their order. The source is subscribed
// immediately, on the subscribing goroutine.
//
// Each event is scheduled separately, if s implements scheduler.Serial.
// Otherwise, events are buffered, and delivered by at most one scheduled
// action at a time. If s implements scheduler.Inline, events are only
// delivered synchronously while no earlier delivery is pending.
//
// Disposing the subscription cancels the source subscription, and any
// scheduled deliveries. No events are delivered after disposal.
func ObserveOn[E any](source Observable[E], s scheduler.Immediate) Observable[E] {
	return ObservableFunc[E](func(observer Observer[E]) disposable.Disposable {
		sink := &observeOnSink[E]{
			scheduler: s,
			observer:  observer,
			pending:   disposable.NewComposite(),
			serial:    scheduler.IsSerial(s),
		}
		sink.inline, _ = s.(scheduler.Inline)
		sink.cancel.Replace(sink.pending)
		sink.upstream.Replace(source.Subscribe(sink))
		return sink
	})
}

func (x *observeOnSink[E]) On(event Event[E]) {
	if x.disposed.Load() {
		return
	}

	if x.serial {
		x.schedule(func() { x.deliver(event) })
		return
	}

	x.mu.Lock()
	x.queue = append(x.queue, event)
	if x.draining {
		x.mu.Unlock()
		return
	}
	x.draining = true
	x.mu.Unlock()

	x.schedule(x.drain)
}

// schedule runs fn using the scheduler, tracking the scheduled disposable in
// pending, until it runs.
func (x *observeOnSink[E]) schedule(fn func()) {
	schedule := x.scheduler.Schedule
	if x.inline != nil && x.pending.Len() != 0 {
		// running inline would overtake the pending deliveries
		schedule = x.inline.ScheduleQueued
	}

	cell := disposable.NewSingleAssignment()
	key, ok := x.pending.Insert(cell)
	if !ok {
		return
	}

	d, err := schedule(func() (disposable.Disposable, error) {
		x.pending.Remove(key)
		fn()
		return nil, nil
	})
	if err != nil {
		// the scheduler can no longer deliver, e.g. its queue terminated
		x.Dispose()
		return
	}

	cell.Set(d)
}

func (x *observeOnSink[E]) drain() {
	for {
		x.mu.Lock()
		if len(x.queue) == 0 || x.disposed.Load() {
			x.draining = false
			x.mu.Unlock()
			return
		}
		event := x.queue[0]
		var zero Event[E]
		x.queue[0] = zero
		x.queue = x.queue[1:]
		x.mu.Unlock()

		x.deliver(event)
	}
}

func (x *observeOnSink[E]) deliver(event Event[E]) {
	if x.disposed.Load() {
		return
	}
	x.observer.On(event)
	if event.IsStop() {
		x.Dispose()
	}
}

func (x *observeOnSink[E]) Dispose() {
	if !x.disposed.CompareAndSwap(false, true) {
		return
	}
	x.upstream.Dispose()
	x.cancel.Dispose()
	x.mu.Lock()
	x.queue = nil
	x.mu.Unlock()
}

// observeSingleOnSink buffers at most one value, delivering the result via a
// single scheduled action, once the source stops.
type observeSingleOnSink[E any] struct {
	scheduler scheduler.Immediate
	observer  Observer[E]
	upstream  disposable.Swap
	cancel    disposable.Swap
	mu        sync.Mutex
	value     E
	hasValue  bool
	stopped   bool
	disposed  atomic.Bool
}

// ObserveSingleOn is a specialization of ObserveOn, for sources that emit at
// most one value before stopping, e.g. the result of some background work.
// A second value is a programming error, and will panic with
// ErrMoreThanOneElement.
//
// The value (if any) and the stop event are delivered by a single scheduled
// action, once the source stops.
func ObserveSingleOn[E any](source Observable[E], s scheduler.Immediate) Observable[E] {
	return ObservableFunc[E](func(observer Observer[E]) disposable.Disposable {
		sink := &observeSingleOnSink[E]{
			scheduler: s,
			observer:  observer,
		}
		sink.upstream.Replace(source.Subscribe(sink))
		return sink
	})
}

func (x *observeSingleOnSink[E]) On(event Event[E]) {
	if x.disposed.Load() {
		return
	}

	x.mu.Lock()
	if x.stopped {
		x.mu.Unlock()
		return
	}
	if !event.IsStop() {
		if x.hasValue {
			x.mu.Unlock()
			fatal.Raise(ErrMoreThanOneElement)
		}
		x.value, _ = event.Value()
		x.hasValue = true
		x.mu.Unlock()
		return
	}
	x.stopped = true
	value, hasValue := x.value, x.hasValue
	var zero E
	x.value = zero
	x.mu.Unlock()

	d, err := x.scheduler.Schedule(func() (disposable.Disposable, error) {
		x.deliver(event, value, hasValue)
		return nil, nil
	})
	if err != nil {
		x.Dispose()
		return
	}
	x.cancel.Replace(d)
}

func (x *observeSingleOnSink[E]) deliver(stop Event[E], value E, hasValue bool) {
	if x.disposed.Load() {
		return
	}
	if stop.Kind() == KindCompleted && hasValue {
		x.observer.On(Next(value))
		if x.disposed.Load() {
			return
		}
	}
	x.observer.On(stop)
	x.Dispose()
}

func (x *observeSingleOnSink[E]) Dispose() {
	if !x.disposed.CompareAndSwap(false, true) {
		return
	}
	x.upstream.Dispose()
	x.cancel.Dispose()
}
