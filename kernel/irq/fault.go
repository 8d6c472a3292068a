package irq

import (
	"sync/atomic"

	"thalos/kernel/cpu"
	"thalos/kernel/sync"
)

// CoreFaultState tracks how far a core has progressed through the fault
// protocol. Transitions are monotonic and terminal: NotArmed -> Armed ->
// Panicked, never backwards.
type CoreFaultState uint32

const (
	// FaultNotArmed is the state of a core that has not yet installed
	// its fault-entry handler. A fault this early cannot be coordinated.
	FaultNotArmed CoreFaultState = iota

	// FaultArmed marks a core that can both declare a fault and receive
	// the cross-core broadcast.
	FaultArmed

	// FaultPanicked is terminal; the core never returns to normal
	// execution.
	FaultPanicked
)

const (
	// msrAPICICR is the x2APIC interrupt command register used to send
	// the non-maskable broadcast.
	msrAPICICR = 0x830

	// icrDeliveryNMI selects non-maskable delivery mode. An NMI preempts
	// essentially any execution state, including code holding a
	// spinlock, which is exactly why the broadcast uses it.
	icrDeliveryNMI = 0x400
)

var (
	// faultTableOnce latches the per-core table; it must be fully
	// constructed before any core is allowed to arm.
	faultTableOnce sync.Once

	// faultStates holds one CoreFaultState cell per detected core. Cells
	// are only ever mutated through atomic compare-and-swap: this code
	// runs from non-maskable interrupt context where the interrupted
	// code may hold arbitrary locks, so taking any lock here could
	// self-deadlock.
	faultStates []uint32

	// coreAPICIDs maps core IDs to the interrupt-controller identities
	// the broadcast is routed by.
	coreAPICIDs []uint32

	cpuHaltFn = cpu.Halt
	sendNMIFn = sendNMI
)

func sendNMI(apicID uint32) {
	cpu.WriteMSR(msrAPICICR, uint64(apicID)<<32|icrDeliveryNMI)
}

// InitFaultTable latches the per-core fault table. The first caller sizes
// it from apicIDs (indexed by core ID, as produced during core
// enumeration); later callers are no-ops that observe the latched table.
func InitFaultTable(apicIDs []uint32) {
	faultTableOnce.Do(func() {
		faultStates = make([]uint32, len(apicIDs))
		coreAPICIDs = append([]uint32(nil), apicIDs...)
	})
}

// ArmCore transitions coreID from NotArmed to Armed. It must be called
// exactly once per core during that core's boot sequence, after the core
// has installed its fault-entry handler. If the kernel panicked before
// this core finished booting, the core joins the halt path and the call
// does not return.
func ArmCore(coreID uint32) {
	if !tableReady(coreID) {
		// Arming before the table is latched is a bootstrap bug; there
		// is nothing to coordinate with yet.
		cpuHaltFn()
		return
	}

	if !atomic.CompareAndSwapUint32(&faultStates[coreID],
		uint32(FaultNotArmed), uint32(FaultArmed)) {
		OnFaultBroadcast(coreID)
		return
	}

	// Close the race with a panic that scanned the table before this
	// core armed.
	if Panicked() {
		OnFaultBroadcast(coreID)
	}
}

// PanicCore declares an unrecoverable fault on coreID. The core's own cell
// moves to Panicked first; every other armed core is then transitioned and
// sent a non-maskable interrupt so it stops before it can keep mutating
// shared kernel state. The call never returns.
//
// PanicCore is lock-free end to end: it may run with arbitrary locks
// already held by the interrupted context.
func PanicCore(coreID uint32) {
	if tableReady(coreID) &&
		atomic.CompareAndSwapUint32(&faultStates[coreID],
			uint32(FaultArmed), uint32(FaultPanicked)) {
		for id := range faultStates {
			if uint32(id) == coreID {
				continue
			}
			if atomic.CompareAndSwapUint32(&faultStates[id],
				uint32(FaultArmed), uint32(FaultPanicked)) {
				sendNMIFn(coreAPICIDs[id])
			}
		}
	}

	// Already panicked, not yet armed or no table: nothing to broadcast.
	// Either way this core stops here.
	cpuHaltFn()
}

// OnFaultBroadcast runs in the fault-entry (non-maskable) handler of a
// core that received the cross-core broadcast. The core marks itself
// Panicked and halts instead of resuming the interrupted instruction
// stream. From Panicked the transition is an idempotent no-op.
func OnFaultBroadcast(coreID uint32) {
	if tableReady(coreID) {
		atomic.CompareAndSwapUint32(&faultStates[coreID],
			uint32(FaultArmed), uint32(FaultPanicked))
	}

	cpuHaltFn()
}

// CoreState returns the fault state of coreID. Diagnostics only.
func CoreState(coreID uint32) CoreFaultState {
	if !tableReady(coreID) {
		return FaultNotArmed
	}
	return CoreFaultState(atomic.LoadUint32(&faultStates[coreID]))
}

// CorePanicked reports whether coreID has reached the terminal fault
// state.
func CorePanicked(coreID uint32) bool {
	return CoreState(coreID) == FaultPanicked
}

// Panicked reports whether any core has declared a fault.
func Panicked() bool {
	if !faultTableOnce.Done() {
		return false
	}

	for id := range faultStates {
		if atomic.LoadUint32(&faultStates[id]) == uint32(FaultPanicked) {
			return true
		}
	}
	return false
}

func tableReady(coreID uint32) bool {
	return faultTableOnce.Done() && int(coreID) < len(faultStates)
}
