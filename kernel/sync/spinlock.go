// Package sync provides the synchronization primitives that are safe to
// use inside the kernel: a busy-wait spinlock and a spin-based once latch.
// The standard library primitives cannot be used here as they park the
// calling goroutine via the runtime scheduler.
package sync

import (
	"sync/atomic"

	"thalos/kernel/cpu"
)

var (
	pauseFn = cpu.Pause
)

// Spinlock implements a lock where each core trying to acquire it
// busy-waits till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the calling core. Any
// attempt to re-acquire a lock already held by the current core will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for !atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		pauseFn()
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock
// could be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Release relinquishes a held lock allowing other cores to acquire it.
// Calling Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
