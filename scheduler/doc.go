// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package scheduler defines the Scheduler abstraction, which runs actions now
// or after a delay, on some execution context, returning a disposable that
// cancels work that has not yet started.
//
// Two implementations backed by a [dispatch.Queue] are provided. Dispatch
// submits every action to the queue. Main behaves identically, except that
// Schedule runs the action synchronously when the caller is already executing
// on the queue, and it exposes [Main.EnsureExecuting], an assertion used to
// enforce thread confinement.
//
// Errors returned by actions are not control flow. They are passed to the
// configured action error handler, which by default panics with an
// [*ActionError], terminating the process unless recovered further up. See
// [WithActionErrorHandler].
package scheduler
