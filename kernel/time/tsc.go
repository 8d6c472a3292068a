package time

import (
	"math"
	"math/bits"
	"sync/atomic"

	"thalos/kernel"
	"thalos/kernel/cpu"
	"thalos/kernel/sync"
)

// calibrationPeriod is the reference interval the fast counter is measured
// against.
const calibrationPeriod = Period(1000)

var (
	errNotCalibrated = &kernel.Error{Module: "time", Message: "fast counter frequency not calibrated"}

	// calibrateOnce latches the calibration so it runs exactly once per
	// boot even when multiple cores race into Calibrate.
	calibrateOnce sync.Once

	// tscHz is the published fast counter frequency. Zero means
	// uncalibrated; the value transitions 0 -> nonzero exactly once.
	tscHz uint64

	readCounterFn = readCounter
	sleepFn       = Sleep
)

// readCounter samples the fast counter, preferring the serializing RDTSCP
// variant when the CPU provides it.
func readCounter() uint64 {
	if cpu.HasRDTSCP() {
		return cpu.ReadTSCP()
	}
	return cpu.ReadTSC()
}

// Now returns the current raw value of the fast counter.
func Now() uint64 {
	return readCounterFn()
}

// Calibrate measures the fast counter frequency against the reference
// clock and publishes it. The first caller performs the measurement; any
// caller that arrives while the measurement is in flight blocks until the
// value is published and then observes it. Calibration never runs twice
// and never overwrites a published frequency.
//
// A measurement that observes no counter progress over the reference
// interval indicates the reference counter could not be programmed; it is
// retried rather than published.
func Calibrate() uint64 {
	calibrateOnce.Do(func() {
		var delta uint64
		for delta == 0 {
			start := readCounterFn()
			sleepFn(calibrationPeriod)
			delta = readCounterFn() - start
		}

		atomic.StoreUint64(&tscHz, delta*(microsPerSecond/calibrationPeriod.Micros()))
	})

	return Frequency()
}

// Frequency returns the published fast counter frequency in Hz, or zero
// while the counter is still uncalibrated.
func Frequency() uint64 {
	return atomic.LoadUint64(&tscHz)
}

// TicksFor converts p into fast counter ticks. It fails while the counter
// is uncalibrated instead of silently returning a bogus duration. The
// conversion saturates at the maximum tick count.
func TicksFor(p Period) (uint64, *kernel.Error) {
	hz := Frequency()
	if hz == 0 {
		return 0, errNotCalibrated
	}

	// Compute micros*hz/1e6 through a 128-bit intermediate so non-whole
	// MHz frequencies convert without truncation error.
	hi, lo := bits.Mul64(p.Micros(), hz)
	if hi >= microsPerSecond {
		return math.MaxUint64, nil
	}

	ticks, _ := bits.Div64(hi, lo, microsPerSecond)
	return ticks, nil
}
