// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"errors"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/internal/fatal"
	"github.com/joeycumines/logiface"
)

type (
	// Config is the configuration shared by schedulers, see NewConfig.
	Config struct {
		logger        *logiface.Logger[logiface.Event]
		actionErrorFn func(err error)
	}

	// Option configures a scheduler.
	Option interface {
		applyConfig(*Config) error
	}

	optionImpl struct {
		applyConfigFunc func(*Config) error
	}
)

func (o *optionImpl) applyConfig(c *Config) error {
	return o.applyConfigFunc(c)
}

// WithLogger configures the logger used by the scheduler. Defaults to nil,
// which disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(c *Config) error {
		c.logger = logger
		return nil
	}}
}

// WithActionErrorHandler replaces the handling of errors returned by actions.
// The handler receives an *ActionError, and is called on the goroutine that
// ran the action. The default handler panics with the *ActionError.
//
// Handlers that return normally relax the policy: the action is treated as
// having returned disposable.Nop.
func WithActionErrorHandler(fn func(err error)) Option {
	return &optionImpl{func(c *Config) error {
		if fn == nil {
			return errors.New(`scheduler: nil action error handler`)
		}
		c.actionErrorFn = fn
		return nil
	}}
}

// NewConfig resolves the given options. Nil options are ignored.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		actionErrorFn: fatal.Raise,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyConfig(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Logger returns the configured logger, which may be nil.
func (c *Config) Logger() *logiface.Logger[logiface.Event] {
	return c.logger
}

// EnsureScheduledSuccessfully handles the error result of an action. A nil
// err is a no-op.
func (c *Config) EnsureScheduledSuccessfully(err error) {
	if err == nil {
		return
	}
	err = &ActionError{Err: err}
	c.logger.Crit().
		Err(err).
		Log(`scheduler: scheduled action failed`)
	c.actionErrorFn(err)
}

// Run invokes action, passing any error to EnsureScheduledSuccessfully, and
// returning a non-nil disposable.
func (c *Config) Run(action Action) disposable.Disposable {
	d, err := action()
	c.EnsureScheduledSuccessfully(err)
	if d == nil {
		return disposable.Nop()
	}
	return d
}
