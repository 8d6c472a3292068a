package time

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"thalos/kernel/cpu"
	"thalos/kernel/irq"
)

type msrWrite struct {
	reg uint32
	val uint64
}

func TestArmPeriodicTick(t *testing.T) {
	defer restoreMSRFns()
	defer restoreCounterFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}
	readCounterFn = func() uint64 { return 1000 }
	tscHz = 3000000000

	assert.Nil(t, ArmPeriodicTick(Millis(1)))

	expWrites := []msrWrite{
		{msrAPICLVTTimer, uint64(irq.LocalTimer) | lvtModeDeadline},
		{msrTSCDeadline, 1000 + 3000000},
	}
	assert.Equal(t, expWrites, writes)
}

func TestArmPeriodicTickRequiresCalibration(t *testing.T) {
	defer restoreMSRFns()
	defer restoreCounterFns()
	resetCalibration()

	writeMSRFn = func(uint32, uint64) {
		t.Fatal("no timer register may be written while uncalibrated")
	}

	assert.Equal(t, errNotCalibrated, ArmPeriodicTick(Millis(1)))
}

func TestOnTimerInterruptRearmsFromCurrentCounter(t *testing.T) {
	defer restoreMSRFns()
	defer restoreCounterFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}
	readCounterFn = func() uint64 { return 1000 }
	tscHz = 3000000000

	assert.Nil(t, ArmPeriodicTick(Millis(1)))

	// The next deadline is anchored to the counter value at interrupt
	// time, not to the previous deadline.
	readCounterFn = func() uint64 { return 5000000 }
	OnTimerInterrupt()

	assert.Equal(t, msrWrite{msrTSCDeadline, 5000000 + 3000000}, writes[len(writes)-1])
}

func TestDeadlineSaturatesInsteadOfWrapping(t *testing.T) {
	assert.EqualValues(t, uint64(math.MaxUint64),
		saturatingDeadline(math.MaxUint64-10, 3000000))
	assert.EqualValues(t, uint64(4000000),
		saturatingDeadline(1000000, 3000000))
}

func TestArmLegacyPeriodic(t *testing.T) {
	defer restoreMSRFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}

	ArmLegacyPeriodic(DivideBy16, 0x10000)

	expWrites := []msrWrite{
		{msrAPICDivideConf, uint64(DivideBy16)},
		{msrAPICLVTTimer, uint64(irq.LocalTimer) | lvtModePeriodic},
		{msrAPICInitCount, 0x10000},
	}
	assert.Equal(t, expWrites, writes)
}

func TestArmOneShot(t *testing.T) {
	defer restoreMSRFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}

	ArmOneShot(DivideBy1, 5000)

	expWrites := []msrWrite{
		{msrAPICDivideConf, uint64(DivideBy1)},
		{msrAPICLVTTimer, uint64(irq.LocalTimer)},
		{msrAPICInitCount, 5000},
	}
	assert.Equal(t, expWrites, writes)
}

func TestCurrentCount(t *testing.T) {
	defer restoreMSRFns()

	readMSRFn = func(reg uint32) uint64 {
		assert.EqualValues(t, msrAPICCurrentCount, reg)
		return 0xbeef
	}

	assert.EqualValues(t, 0xbeef, CurrentCount())
}

func TestDisableTimer(t *testing.T) {
	defer restoreMSRFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}

	DisableTimer()

	expWrites := []msrWrite{
		{msrAPICLVTTimer, lvtMasked},
		{msrAPICInitCount, 0},
		{msrTSCDeadline, 0},
	}
	assert.Equal(t, expWrites, writes)
}

func TestEndOfInterrupt(t *testing.T) {
	defer restoreMSRFns()

	var writes []msrWrite
	writeMSRFn = func(reg uint32, val uint64) {
		writes = append(writes, msrWrite{reg, val})
	}

	EndOfInterrupt()

	assert.Equal(t, []msrWrite{{msrAPICEOI, 0}}, writes)
}

func restoreMSRFns() {
	readMSRFn = cpu.ReadMSR
	writeMSRFn = cpu.WriteMSR
}
