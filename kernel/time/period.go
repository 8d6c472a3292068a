// Package time implements the kernel clocks: the PIT-driven reference
// clock used once at boot for calibration, the calibrated TSC fast clock
// that all duration math derives from, the legacy calendar clock and the
// per-core local APIC timer that drives the scheduling tick.
package time

import "math"

// Period is an opaque duration measured in microseconds. The raw magnitude
// is never renormalized; converting a value to a Period and back always
// yields the original value.
type Period uint64

// MaxPeriod is the largest representable Period.
const MaxPeriod = Period(math.MaxUint64)

const microsPerSecond = 1000000

// Micros returns the period's raw magnitude in microseconds.
func (p Period) Micros() uint64 {
	return uint64(p)
}

// Millis constructs a Period spanning ms milliseconds.
func Millis(ms uint64) Period {
	return Period(ms * 1000)
}
