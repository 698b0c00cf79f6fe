// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package fatal raises defect signals: usage errors and conditions that
// cannot happen in a correct program. They are panics, not returned errors,
// and nothing in this module recovers them by default, so they terminate
// the process with the error as the diagnostic.
package fatal

// Raise panics with err. A nil err is itself a defect.
func Raise(err error) {
	if err == nil {
		panic(`fatal: nil error`)
	}
	panic(err)
}

// Never panics with err, and is typed so it may be used as an expression,
// e.g. as the result of an exhaustive switch's impossible branch.
func Never[T any](err error) T {
	Raise(err)
	panic(`unreachable`)
}
