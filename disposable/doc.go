// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package disposable implements resource handles, that release or cancel an
// associated resource, at most once.
//
// Every type in this package is safe to dispose concurrently, from any
// goroutine, which is necessary because scheduled work is routinely
// cancelled from a different execution context than the one it runs on.
// Disposing an already-disposed handle is a no-op, never an error.
//
// Misuse, such as assigning a [SingleAssignment] twice, is a defect, and
// panics. It is not reported as an error.
package disposable
