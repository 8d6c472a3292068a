// Package irq defines the kernel's interrupt vector assignments and the
// cross-core fault coordinator that stops every core once one of them
// hits an unrecoverable fault.
package irq

import "thalos/kernel"

// InterruptVector identifies a logical interrupt source. Each source is
// bound to a fixed numeric vector consumed by the dispatch table builder
// and by the hardware programming code; the assignments below are an
// immutable contract.
type InterruptVector uint8

// VectorBase is the first vector available to kernel-defined interrupt
// sources. Everything below it belongs to CPU exceptions.
const VectorBase = 0x20

const (
	// Spurious receives interrupts the local APIC cannot attribute to a
	// real source. It must not be acknowledged.
	Spurious InterruptVector = VectorBase + iota

	// LocalTimer is raised by the per-core local timer on every tick.
	LocalTimer

	// LocalError is raised by the local APIC when it detects an internal
	// error.
	LocalError

	// Keyboard is raised by the PS/2 controller when a scancode is
	// available.
	Keyboard

	// Reschedule is the inter-processor vector used to poke a core into
	// re-evaluating its run queue.
	Reschedule
)

var (
	errVectorOutOfRange = &kernel.Error{Module: "irq", Message: "interrupt vector outside the hardware-supported range"}

	// assignedVectors lists every vector in the contract; it is used for
	// boot-time validation.
	assignedVectors = [...]InterruptVector{Spurious, LocalTimer, LocalError, Keyboard, Reschedule}
)

// ValidateVectors checks each assigned vector against the valid vector
// range reported by the interrupt hardware.
func ValidateVectors(lowest, highest uint8) *kernel.Error {
	for _, vec := range assignedVectors {
		if uint8(vec) < lowest || uint8(vec) > highest {
			return errVectorOutOfRange
		}
	}
	return nil
}
