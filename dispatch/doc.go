// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package dispatch provides serial execution queues, and a concurrent worker
// pool, for use as the execution substrate of schedulers.
//
// # Queue
//
// A [Queue] executes submitted functions one at a time, in submission order.
// Timers created using [Queue.AfterFunc] are fired on the queue, in deadline
// order. A queue runs in one of two modes:
//
//   - Dedicated: [Queue.Run] drains the queue on the calling goroutine, which
//     becomes the queue's execution context, e.g. a program's main goroutine.
//   - Targeted: configured using [WithTarget], the queue's bodies run on the
//     workers of a [Pool], but never more than one at a time. This is how a
//     concurrent pool is normalized to serial execution.
//
// [Queue.IsCurrent] reports whether the caller is running on the queue,
// which supports same-context fast paths, and confinement assertions.
//
// # Panics
//
// Panics raised by submitted functions are NOT recovered, unless the queue
// was configured using [WithRecover]. Panics are defect signals, and are
// expected to terminate the process.
//
// # Usage
//
//	q, err := dispatch.NewQueue(dispatch.WithName(`main`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = q.Submit(func() {
//	    fmt.Println(`on the main goroutine`)
//	    _ = q.Shutdown(context.Background())
//	})
//
//	if err := q.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package dispatch
