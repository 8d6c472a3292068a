package sync

import "sync/atomic"

const (
	onceNotStarted uint32 = iota
	onceRunning
	onceDone
)

// Once is a set-once latch: the first caller of Do runs fn and publishes
// its effects; every other caller busy-waits until that run completes and
// then returns without invoking fn. Unlike the standard library Once it
// never parks the caller, which makes it usable during parallel boot
// before the runtime scheduler exists.
type Once struct {
	state uint32
}

// Do invokes fn if and only if this is the first call to Do for this
// latch. Concurrent callers spin until the first caller's fn returns, so
// once Do returns the published state is visible to the caller.
func (o *Once) Do(fn func()) {
	if atomic.CompareAndSwapUint32(&o.state, onceNotStarted, onceRunning) {
		fn()
		atomic.StoreUint32(&o.state, onceDone)
		return
	}

	for atomic.LoadUint32(&o.state) != onceDone {
		pauseFn()
	}
}

// Done returns true if the latch has been set.
func (o *Once) Done() bool {
	return atomic.LoadUint32(&o.state) == onceDone
}
