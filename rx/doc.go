// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package rx implements a minimal push-based stream model, sufficient to move
// the delivery of events between execution contexts, via ObserveOn and
// ObserveSingleOn.
//
// A stream is a sequence of zero or more KindNext events, optionally
// terminated by exactly one stop event, either KindError or KindCompleted.
// Observers are notified serially.
package rx
