// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package virtualtime implements a deterministic scheduler, driven by a
// simulated clock, for testing time dependent logic without real delays.
//
// Actions run on the goroutine that calls Start (or AdvanceTo, AdvanceBy),
// one at a time, in due time order. The order of actions with equal due times
// is undefined: tests that rely on ordering must use distinct due times.
package virtualtime

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/internal/fatal"
	"github.com/joeycumines/go-rxsched/scheduler"
)

type (
	// Scheduler is a virtual time scheduler, with int64 absolute and relative
	// times. Instances must be initialized using New.
	Scheduler struct {
		config  *scheduler.Config
		mu      sync.Mutex
		items   []*item // unordered
		clock   int64
		nextID  uint64
		running bool
	}

	item struct {
		action   scheduler.Action
		result   *disposable.Composite
		due      int64
		id       uint64
		disposed atomic.Bool
	}
)

var (
	// ErrAlreadyRunning is raised by AdvanceTo and AdvanceBy, if called while
	// the scheduler is running, e.g. from within an action.
	ErrAlreadyRunning = errors.New(`virtualtime: scheduler is already running`)

	// compile time assertion
	_ scheduler.Scheduler[int64, int64] = (*Scheduler)(nil)
)

// New initializes a Scheduler, with the clock set to initialClock. Errors
// returned by actions are handled per scheduler.WithActionErrorHandler.
func New(initialClock int64, opts ...scheduler.Option) (*Scheduler, error) {
	config, err := scheduler.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		config: config,
		clock:  initialClock,
	}, nil
}

// Now returns the current virtual time.
func (x *Scheduler) Now() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.clock
}

// Schedule schedules action at the current virtual time.
func (x *Scheduler) Schedule(action scheduler.Action) (disposable.Disposable, error) {
	return x.ScheduleRelative(0, action)
}

// ScheduleRelative schedules action at Now() + delay, saturating at the
// bounds of int64.
func (x *Scheduler) ScheduleRelative(delay int64, action scheduler.Action) (disposable.Disposable, error) {
	return x.ScheduleAbsolute(addClamped(x.Now(), delay), action)
}

// ScheduleAbsolute schedules action at the given virtual time. Times in the
// past are run as soon as the scheduler runs, without moving the clock
// backwards. The returned error is always nil.
//
// Disposing the result marks the item as disposed, and it is removed lazily,
// when the scheduler next looks for work.
func (x *Scheduler) ScheduleAbsolute(due int64, action scheduler.Action) (disposable.Disposable, error) {
	if action == nil {
		fatal.Raise(scheduler.ErrNilAction)
	}

	it := &item{
		action: action,
		due:    due,
	}
	it.result = disposable.NewComposite(disposable.Func(func() { it.disposed.Store(true) }))

	x.mu.Lock()
	it.id = x.nextID
	x.nextID++
	x.items = append(x.items, it)
	x.mu.Unlock()

	return it.result, nil
}

// Start runs scheduled actions, in due time order, advancing the clock to
// each action's due time, until no actions remain, or Stop is called.
// Actions may schedule further actions. Calling Start while the scheduler is
// already running is a no-op.
func (x *Scheduler) Start() {
	if !x.begin() {
		return
	}
	x.config.Logger().Debug().
		Int64(`clock`, x.Now()).
		Log(`virtualtime: started`)
	x.drain(0, false)
	x.config.Logger().Debug().
		Int64(`clock`, x.Now()).
		Log(`virtualtime: idle`)
}

// Stop causes a running Start, AdvanceTo, or AdvanceBy to return once the
// current action completes.
func (x *Scheduler) Stop() {
	x.mu.Lock()
	x.running = false
	x.mu.Unlock()
}

// AdvanceTo runs all actions due at or before t, then sets the clock to t,
// unless it was stopped, or t is before the current time. It must not be
// called while the scheduler is running.
func (x *Scheduler) AdvanceTo(t int64) {
	if !x.begin() {
		fatal.Raise(ErrAlreadyRunning)
	}
	if stopped := x.drain(t, true); stopped {
		return
	}
	x.mu.Lock()
	if t > x.clock {
		x.clock = t
	}
	x.mu.Unlock()
}

// AdvanceBy is equivalent to AdvanceTo(Now() + d).
func (x *Scheduler) AdvanceBy(d int64) {
	x.AdvanceTo(addClamped(x.Now(), d))
}

func addClamped(t, d int64) int64 {
	switch {
	case d > 0 && t > math.MaxInt64-d:
		return math.MaxInt64
	case d < 0 && t < math.MinInt64-d:
		return math.MinInt64
	}
	return t + d
}

// Pending returns the number of scheduled actions that have not run, and
// have not been disposed.
func (x *Scheduler) Pending() (n int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, it := range x.items {
		if !it.disposed.Load() {
			n++
		}
	}
	return
}

func (x *Scheduler) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, `virtualtime.Scheduler{clock: %d, running: %t, items: [`, x.clock, x.running)
	var n int
	for _, it := range x.items {
		if it.disposed.Load() {
			continue
		}
		if n != 0 {
			b.WriteString(`, `)
		}
		fmt.Fprintf(&b, `#%d@%d`, it.id, it.due)
		n++
	}
	b.WriteString(`]}`)
	return b.String()
}

// begin transitions idle to running, returning false if already running.
func (x *Scheduler) begin() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.running {
		return false
	}
	x.running = true
	return true
}

// drain invokes items until pop returns none, returning true if that was due
// to Stop.
func (x *Scheduler) drain(limit int64, bounded bool) bool {
	var completed bool
	defer func() {
		if !completed {
			// an action panicked
			x.Stop()
		}
	}()
	for {
		it, ok, stopped := x.pop(limit, bounded)
		if !ok {
			completed = true
			return stopped
		}
		x.invoke(it)
	}
}

// pop removes the non-disposed item with the smallest due time, advancing
// the clock, and dropping any disposed items. If there is no such item (due
// at or before limit, if bounded), the scheduler transitions to idle.
func (x *Scheduler) pop(limit int64, bounded bool) (it *item, ok bool, stopped bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.running {
		return nil, false, true
	}

	next := -1
	n := 0
	for _, v := range x.items {
		if v.disposed.Load() {
			continue
		}
		x.items[n] = v
		if next == -1 || v.due < x.items[next].due {
			next = n
		}
		n++
	}
	clear(x.items[n:])
	x.items = x.items[:n]

	if next == -1 || (bounded && x.items[next].due > limit) {
		x.running = false
		return nil, false, false
	}

	it = x.items[next]
	x.items = slices.Delete(x.items, next, next+1)

	if it.due > x.clock {
		x.clock = it.due
	}

	return it, true, false
}

func (x *Scheduler) invoke(it *item) {
	// may have been disposed since being popped
	if it.disposed.Load() {
		return
	}
	it.result.Add(x.config.Run(it.action))
}
