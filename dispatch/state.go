// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dispatch

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// QueueState represents the lifecycle state of a Queue.
//
// State Machine:
//
//	StateAwake → StateRunning             [Run(), or NewQueue WithTarget]
//	StateAwake → StateTerminated          [Shutdown()/Close() before Run(), nothing pending]
//	StateAwake → StateTerminating         [Shutdown() before Run(), work pending]
//	StateRunning → StateTerminating       [Shutdown()/Close()/ctx cancel]
//	StateTerminating → StateTerminated    [queue drained, by Run if never started]
//	StateTerminated → (terminal)
//
// Transitions out of StateAwake and StateRunning use CAS. StateTerminated is
// only ever stored, while holding the queue's lock.
type QueueState uint32

const (
	// StateAwake indicates the queue has been created but not started.
	StateAwake QueueState = iota
	// StateRunning indicates the queue is accepting and executing work.
	StateRunning
	// StateTerminating indicates termination was requested, and the queue is
	// draining.
	StateTerminating
	// StateTerminated indicates the queue is fully stopped.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s QueueState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state word, padded to avoid false sharing with
// the queue's other hot fields.
type fastState struct { // betteralign:ignore
	_ cpu.CacheLinePad
	v atomic.Uint32
	_ cpu.CacheLinePad
}

func (s *fastState) Load() QueueState {
	return QueueState(s.v.Load())
}

func (s *fastState) Store(state QueueState) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically transition from one state to another.
func (s *fastState) TryTransition(from, to QueueState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
