package time

import (
	"math"
	"sync/atomic"

	"thalos/kernel"
	"thalos/kernel/cpu"
	"thalos/kernel/irq"
)

const (
	// msrTSCDeadline arms the per-core timer in deadline mode: the timer
	// fires when the fast counter passes the written value.
	msrTSCDeadline = 0x6e0

	// x2APIC register block.
	msrAPICEOI          = 0x80b
	msrAPICLVTTimer     = 0x832
	msrAPICInitCount    = 0x838
	msrAPICCurrentCount = 0x839
	msrAPICDivideConf   = 0x83e

	lvtMasked       = 1 << 16
	lvtModeOneShot  = 0 << 17
	lvtModePeriodic = 1 << 17
	lvtModeDeadline = 2 << 17
)

// TimerDivider selects the bus clock divider used by the legacy counting
// modes. The encodings are fixed by the local APIC register layout.
type TimerDivider uint64

const (
	DivideBy1   TimerDivider = 0b1011
	DivideBy2   TimerDivider = 0b0000
	DivideBy4   TimerDivider = 0b0001
	DivideBy8   TimerDivider = 0b0010
	DivideBy16  TimerDivider = 0b0011
	DivideBy32  TimerDivider = 0b1000
	DivideBy64  TimerDivider = 0b1001
	DivideBy128 TimerDivider = 0b1010
)

var (
	// tickTicks caches the per-tick deadline increment so the interrupt
	// handler rearms with a single load and add; it must never divide or
	// consult the calibration under interrupt context.
	tickTicks uint64

	readMSRFn  = cpu.ReadMSR
	writeMSRFn = cpu.WriteMSR
)

// ArmPeriodicTick programs the calling core's local timer to raise the
// local timer vector every p, using deadline mode driven by the calibrated
// fast counter. The fast counter must be calibrated first.
//
// Each core arms its own timer; the registers written here are strictly
// core-local.
func ArmPeriodicTick(p Period) *kernel.Error {
	ticks, err := TicksFor(p)
	if err != nil {
		return err
	}

	atomic.StoreUint64(&tickTicks, ticks)

	writeMSRFn(msrAPICLVTTimer, uint64(irq.LocalTimer)|lvtModeDeadline)
	writeMSRFn(msrTSCDeadline, saturatingDeadline(readCounterFn(), ticks))
	return nil
}

// OnTimerInterrupt rearms the deadline for the next tick. It runs in the
// local timer's interrupt handler and therefore performs no allocation and
// takes no locks. The deadline is anchored to the current counter value
// rather than the previous deadline, so a late tick slips the schedule
// instead of bunching up.
func OnTimerInterrupt() {
	writeMSRFn(msrTSCDeadline,
		saturatingDeadline(readCounterFn(), atomic.LoadUint64(&tickTicks)))
}

// saturatingDeadline computes now+ticks, clamping at the counter maximum
// instead of wrapping. A wrapped deadline would sit in the past and the
// timer would never fire again.
func saturatingDeadline(now, ticks uint64) uint64 {
	if ticks > math.MaxUint64-now {
		return math.MaxUint64
	}
	return now + ticks
}

// ArmOneShot programs a single bus-clock countdown of count ticks with
// the given divider. The timer raises the local timer vector once and
// stops; it is used for deferred work rather than the main tick.
func ArmOneShot(divider TimerDivider, count uint32) {
	writeMSRFn(msrAPICDivideConf, uint64(divider))
	writeMSRFn(msrAPICLVTTimer, uint64(irq.LocalTimer)|lvtModeOneShot)
	writeMSRFn(msrAPICInitCount, uint64(count))
}

// ArmLegacyPeriodic programs the timer's bus-clock periodic mode with the
// given divider and initial count. It serves hardware that lacks deadline
// mode and is also the mode used while measuring the bus clock itself.
func ArmLegacyPeriodic(divider TimerDivider, count uint32) {
	writeMSRFn(msrAPICDivideConf, uint64(divider))
	writeMSRFn(msrAPICLVTTimer, uint64(irq.LocalTimer)|lvtModePeriodic)
	writeMSRFn(msrAPICInitCount, uint64(count))
}

// CurrentCount returns the live value of the legacy downcounter.
func CurrentCount() uint32 {
	return uint32(readMSRFn(msrAPICCurrentCount))
}

// DisableTimer masks the local timer and stops the legacy counter. A
// deadline already written is also cleared so it cannot fire between the
// mask taking effect and the next arm.
func DisableTimer() {
	writeMSRFn(msrAPICLVTTimer, lvtMasked)
	writeMSRFn(msrAPICInitCount, 0)
	writeMSRFn(msrTSCDeadline, 0)
}

// EndOfInterrupt signals completion of the in-service interrupt to the
// local APIC. Spurious interrupts must not be acknowledged this way.
func EndOfInterrupt() {
	writeMSRFn(msrAPICEOI, 0)
}
