// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package goroutineid identifies the calling goroutine, which is the unit of
// "execution context" used by the serial queues to implement their
// same-context fast path, and thread confinement assertions.
package goroutineid

import (
	"runtime"
)

// Get returns the current goroutine's ID, parsed from the header of
// runtime.Stack, e.g. "goroutine 18 [running]:". It never returns 0.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

func parse(b []byte) (id uint64) {
	const prefix = `goroutine `
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		panic(`goroutineid: unexpected stack header`)
	}
	for _, c := range b[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	if id == 0 {
		panic(`goroutineid: unable to parse id`)
	}
	return id
}
