//go:build go1.19

package xsync

import (
	"sync/atomic"
)

// AtomicCell is an atomic signed 64-bit counter, wrapping [atomic.Int64] in
// the same thin, strongly-typed shape as the rest of this package: a value
// that reads and writes with the ordering the caller expects, without
// spelling out sync/atomic at every call site.
type AtomicCell atomic.Int64

// Load acquire-loads the wrapped counter.
func (x *AtomicCell) Load() int64 {
	return (*atomic.Int64)(x).Load()
}

// Store release-stores val into the wrapped counter.
func (x *AtomicCell) Store(val int64) {
	(*atomic.Int64)(x).Store(val)
}

// Add atomically adds delta to this value and returns the result.
func (x *AtomicCell) Add(delta int64) (new int64) {
	return (*atomic.Int64)(x).Add(delta)
}

// CompareAndSwap atomically sets the cell to new if it currently holds old.
func (x *AtomicCell) CompareAndSwap(old, new int64) (swapped bool) {
	return (*atomic.Int64)(x).CompareAndSwap(old, new)
}
