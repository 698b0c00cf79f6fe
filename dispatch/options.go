// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package dispatch

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// defaultBudget is the maximum number of tasks executed per drain pass,
// before yielding (targeted) or checking for cancellation (dedicated).
const defaultBudget = 1024

// queueOptions holds configuration options for Queue creation.
type queueOptions struct {
	logger       *logiface.Logger[logiface.Event]
	target       *Pool
	recoverFn    func(any)
	onOverload   func(error)
	name         string
	budget       int
	lockOSThread bool
}

// QueueOption configures a Queue instance.
type QueueOption interface {
	applyQueue(*queueOptions) error
}

// queueOptionImpl implements QueueOption.
type queueOptionImpl struct {
	applyQueueFunc func(*queueOptions) error
}

func (x *queueOptionImpl) applyQueue(opts *queueOptions) error {
	return x.applyQueueFunc(opts)
}

// WithName sets the queue's name, used for logging and diagnostics.
func WithName(name string) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.name = name
		return nil
	}}
}

// WithLogger configures structured logging. A nil logger disables logging,
// which is the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithTarget causes the queue to execute on the given pool, rather than via
// Queue.Run. At most one of the queue's bodies will be in flight on the pool,
// at any given time.
func WithTarget(pool *Pool) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		if pool == nil {
			return errors.New(`dispatch: nil target pool`)
		}
		opts.target = pool
		return nil
	}}
}

// WithLockOSThread sets whether Queue.Run locks the calling goroutine to its
// OS thread, for the duration of the call. This is relevant if the queue
// stands in for a thread-affine context, e.g. a UI thread.
func WithLockOSThread(enabled bool) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.lockOSThread = enabled
		return nil
	}}
}

// WithRecover configures the queue to recover panics raised by tasks, and
// pass the recovered values to fn. By default, panics are not recovered.
func WithRecover(fn func(r any)) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.recoverFn = fn
		return nil
	}}
}

// WithOnOverload sets a callback, that is called with ErrQueueOverloaded,
// on the queue, whenever work remains after a drain pass exhausts its budget.
func WithOnOverload(fn func(err error)) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.onOverload = fn
		return nil
	}}
}

// WithBudget sets the maximum number of tasks executed per drain pass.
// **Defaults to 1024.** Must be positive.
func WithBudget(budget int) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		if budget <= 0 {
			return errors.New(`dispatch: budget must be positive`)
		}
		opts.budget = budget
		return nil
	}}
}

// resolveQueueOptions applies QueueOption instances to queueOptions.
func resolveQueueOptions(opts []QueueOption) (*queueOptions, error) {
	cfg := &queueOptions{
		name:   `queue`,
		budget: defaultBudget,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyQueue(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
