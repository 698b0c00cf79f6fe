// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dispatch

import (
	"container/heap"
	"sync/atomic"
	"time"
)

const (
	timerPending uint32 = iota
	timerFired
	timerStopped
)

// Timer is a one-shot timer source, created by Queue.AfterFunc, that fires
// on its queue.
type Timer struct {
	queue *Queue
	fn    func()
	when  time.Time
	state atomic.Uint32
	index int // position in timerHeap, or -1, guarded by queue.mu
}

// timerHeap is a min-heap of timers, ordered by deadline.
type timerHeap []*Timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// AfterFunc creates a timer that executes fn on the queue, once, no sooner
// than delay from now. Timers fire in deadline order, relative to each
// other. A delay <= 0 behaves like Submit, except that the returned timer
// may still be stopped.
func (q *Queue) AfterFunc(delay time.Duration, fn func()) (*Timer, error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	t := &Timer{
		queue: q,
		fn:    fn,
		when:  time.Now().Add(delay),
		index: -1,
	}

	q.mu.Lock()
	if q.closed || q.state.Load() == StateTerminated {
		q.mu.Unlock()
		return nil, ErrQueueTerminated
	}
	q.timersScheduled.Add(1)
	if delay <= 0 {
		q.tasks.Add(t.fire)
		q.mu.Unlock()
		q.signal()
		return t, nil
	}
	heap.Push(&q.timers, t)
	if q.timers[0] == t {
		q.armLocked()
	}
	q.mu.Unlock()

	return t, nil
}

// Stop prevents the timer from firing, returning false if it has already
// fired, or been stopped.
func (t *Timer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}

	q := t.queue
	q.timersStopped.Add(1)

	q.mu.Lock()
	if t.index >= 0 {
		root := t.index == 0
		heap.Remove(&q.timers, t.index)
		if root {
			q.armLocked()
		}
	}
	q.mu.Unlock()

	return true
}

func (t *Timer) fire() {
	if t.state.CompareAndSwap(timerPending, timerFired) {
		t.queue.timersFired.Add(1)
		t.fn()
	}
}

// armLocked (re)arms the runtime timer for the earliest deadline, must be
// called with mu held.
func (q *Queue) armLocked() {
	if len(q.timers) == 0 || q.state.Load() == StateTerminated {
		if q.clock != nil {
			q.clock.Stop()
		}
		return
	}
	d := time.Until(q.timers[0].when)
	if q.clock == nil {
		q.clock = time.AfterFunc(d, q.fireTimers)
	} else {
		q.clock.Reset(d)
	}
}

// fireTimers moves all due timers onto the queue, in deadline order.
func (q *Queue) fireTimers() {
	q.mu.Lock()
	if q.closed || q.state.Load() == StateTerminated {
		q.mu.Unlock()
		return
	}
	now := time.Now()
	var moved bool
	for len(q.timers) != 0 && !q.timers[0].when.After(now) {
		t := heap.Pop(&q.timers).(*Timer)
		q.tasks.Add(t.fire)
		moved = true
	}
	q.armLocked()
	q.mu.Unlock()

	if moved {
		q.signal()
	}
}
