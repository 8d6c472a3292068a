package time

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"thalos/kernel/sync"
)

func TestCalibratePublishesMeasuredFrequency(t *testing.T) {
	defer restoreCounterFns()
	resetCalibration()

	// The counter advances by 3,000,000 ticks over the 1ms reference
	// interval, which is a 3GHz clock.
	samples := []uint64{1000, 3001000}
	readCounterFn = func() uint64 {
		val := samples[0]
		samples = samples[1:]
		return val
	}
	sleepFn = func(p Period) {
		assert.Equal(t, calibrationPeriod, p)
	}

	assert.EqualValues(t, 3000000000, Calibrate())
	assert.EqualValues(t, 3000000000, Frequency())
}

func TestCalibrateRunsOnce(t *testing.T) {
	defer restoreCounterFns()
	resetCalibration()

	var sampleCount int
	readCounterFn = func() uint64 {
		sampleCount++
		return uint64(sampleCount) * 3000000
	}
	sleepFn = func(Period) {}

	first := Calibrate()
	second := Calibrate()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, sampleCount)
}

func TestCalibrateRetriesOnStuckCounter(t *testing.T) {
	defer restoreCounterFns()
	resetCalibration()

	// The first measurement observes no progress and must be retried.
	samples := []uint64{500, 500, 500, 3000500}
	readCounterFn = func() uint64 {
		val := samples[0]
		samples = samples[1:]
		return val
	}
	sleepFn = func(Period) {}

	assert.EqualValues(t, 3000000000, Calibrate())
	assert.Empty(t, samples)
}

func TestTicksFor(t *testing.T) {
	defer restoreCounterFns()
	resetCalibration()

	if _, err := TicksFor(Millis(1)); assert.Error(t, err) {
		assert.Equal(t, errNotCalibrated, err)
	}

	tscHz = 3000000000

	ticks, err := TicksFor(Millis(1))
	assert.Nil(t, err)
	assert.EqualValues(t, 3000000, ticks)

	ticks, err = TicksFor(MaxPeriod)
	assert.Nil(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64), ticks)
}

func TestTicksForFractionalFrequencies(t *testing.T) {
	defer restoreCounterFns()
	resetCalibration()

	// A counter just below 4MHz must not be truncated down to 3MHz.
	tscHz = 3999999
	ticks, err := TicksFor(Millis(1))
	assert.Nil(t, err)
	assert.EqualValues(t, 3999, ticks)

	// A sub-MHz counter yields fewer than one tick per microsecond.
	tscHz = 500000
	ticks, err = TicksFor(Period(3))
	assert.Nil(t, err)
	assert.EqualValues(t, 1, ticks)

	ticks, err = TicksFor(Period(1))
	assert.Nil(t, err)
	assert.EqualValues(t, 0, ticks)
}

func TestNowUsesCounterReader(t *testing.T) {
	defer restoreCounterFns()

	readCounterFn = func() uint64 { return 42 }
	assert.EqualValues(t, 42, Now())
}

func resetCalibration() {
	calibrateOnce = sync.Once{}
	tscHz = 0
}

func restoreCounterFns() {
	readCounterFn = readCounter
	sleepFn = Sleep
	resetCalibration()
}
