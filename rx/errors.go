// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package rx

import (
	"errors"
)

var (
	// ErrMoreThanOneElement is raised by ObserveSingleOn, if the source
	// emits a second value.
	ErrMoreThanOneElement = errors.New(`rx: sequence contains more than one element`)

	// ErrUnknownObserverKey is raised by Subject.RemoveObserver.
	ErrUnknownObserverKey = errors.New(`rx: removing observer for key failed`)

	// ErrInvalidEvent is raised on encountering a zero (unconstructed) Event.
	ErrInvalidEvent = errors.New(`rx: invalid event`)

	// ErrNilError is raised by Error, given a nil error.
	ErrNilError = errors.New(`rx: nil error event`)
)
