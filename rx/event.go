// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package rx

import (
	"fmt"

	"github.com/joeycumines/go-rxsched/internal/fatal"
)

// Kind is the kind of an Event. The zero value is invalid.
type Kind uint8

const (
	// KindNext carries a value, and may be followed by further events.
	KindNext Kind = iota + 1
	// KindError terminates a sequence with an error.
	KindError
	// KindCompleted terminates a sequence successfully.
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return `Next`
	case KindError:
		return `Error`
	case KindCompleted:
		return `Completed`
	default:
		return fmt.Sprintf(`Kind(%d)`, uint8(k))
	}
}

// Event is a notification delivered to an Observer. Instances must be
// constructed using Next, Error, or Completed.
type Event[E any] struct {
	value E
	err   error
	kind  Kind
}

// Next returns a KindNext event, carrying value.
func Next[E any](value E) Event[E] {
	return Event[E]{kind: KindNext, value: value}
}

// Error returns a KindError event. A nil err is a programming error, and
// will panic.
func Error[E any](err error) Event[E] {
	if err == nil {
		fatal.Raise(ErrNilError)
	}
	return Event[E]{kind: KindError, err: err}
}

// Completed returns a KindCompleted event.
func Completed[E any]() Event[E] {
	return Event[E]{kind: KindCompleted}
}

func (e Event[E]) Kind() Kind {
	return e.kind
}

// Value returns the value of a KindNext event.
func (e Event[E]) Value() (value E, ok bool) {
	if e.kind == KindNext {
		return e.value, true
	}
	return
}

// Err returns the error of a KindError event, or nil.
func (e Event[E]) Err() error {
	return e.err
}

// IsStop reports whether the event terminates the sequence.
func (e Event[E]) IsStop() bool {
	return e.kind == KindError || e.kind == KindCompleted
}

// Match calls the function corresponding to the event's kind. Nil functions
// are skipped.
func (e Event[E]) Match(onNext func(value E), onError func(err error), onCompleted func()) {
	switch e.kind {
	case KindNext:
		if onNext != nil {
			onNext(e.value)
		}
	case KindError:
		if onError != nil {
			onError(e.err)
		}
	case KindCompleted:
		if onCompleted != nil {
			onCompleted()
		}
	default:
		fatal.Raise(fmt.Errorf(`%w: %s`, ErrInvalidEvent, e.kind))
	}
}

// Fold maps e to a value using the function corresponding to its kind.
func Fold[E, R any](e Event[E], onNext func(value E) R, onError func(err error) R, onCompleted func() R) R {
	switch e.kind {
	case KindNext:
		return onNext(e.value)
	case KindError:
		return onError(e.err)
	case KindCompleted:
		return onCompleted()
	default:
		return fatal.Never[R](fmt.Errorf(`%w: %s`, ErrInvalidEvent, e.kind))
	}
}

func (e Event[E]) String() string {
	return Fold(
		e,
		func(value E) string { return fmt.Sprintf(`Next(%v)`, value) },
		func(err error) string { return fmt.Sprintf(`Error(%v)`, err) },
		func() string { return `Completed` },
	)
}
