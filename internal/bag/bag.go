// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package bag implements unordered, keyed storage, where each inserted value
// is identified by a unique key, rather than by value.
//
// Bag is not safe for concurrent use; callers provide synchronization.
package bag

type (
	// Key identifies a value in a Bag. The zero Key is never issued.
	Key uint64

	// Bag stores values by Key. The zero value is ready to use.
	Bag[T any] struct {
		items map[Key]T
		next  Key
	}
)

// Put stores v, returning the key that may be used to remove it.
func (x *Bag[T]) Put(v T) Key {
	if x.items == nil {
		x.items = make(map[Key]T)
	}
	x.next++
	x.items[x.next] = v
	return x.next
}

// Remove deletes and returns the value for key, reporting false if there
// was no such value.
func (x *Bag[T]) Remove(key Key) (v T, ok bool) {
	if v, ok = x.items[key]; ok {
		delete(x.items, key)
	}
	return
}

// Len returns the number of stored values.
func (x *Bag[T]) Len() int {
	return len(x.items)
}

// Values returns a snapshot of the stored values, in undefined order.
func (x *Bag[T]) Values() []T {
	if len(x.items) == 0 {
		return nil
	}
	values := make([]T, 0, len(x.items))
	for _, v := range x.items {
		values = append(values, v)
	}
	return values
}

// Clear removes all values, returning them, in undefined order.
func (x *Bag[T]) Clear() []T {
	values := x.Values()
	x.items = nil
	return values
}
