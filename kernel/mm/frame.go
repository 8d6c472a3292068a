// Package mm defines the physical memory model shared by the frame
// allocator and the boot handoff code: frame indices and the closed set of
// ownership tags a frame can carry.
package mm

import "math"

// Frame describes a physical memory page index.
type Frame uintptr

// InvalidFrame is returned by frame allocators when they fail to reserve a
// frame.
const InvalidFrame = Frame(math.MaxUint64)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address where this Frame begins.
func (f Frame) Address() uintptr {
	return uintptr(f << PageShift)
}

// FrameFromAddress returns the Frame containing physAddr. Addresses that
// are not page-aligned are rounded down to the frame that contains them.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(PageSize - 1)) >> PageShift)
}

// MemoryType is the closed set of ownership categories a tracked physical
// frame can be tagged with. A frame is available for allocation if and
// only if its tag is MemFree. The tag of a tracked frame is owned
// exclusively by the frame allocator; no other code may mutate it.
type MemoryType uint8

const (
	// MemFree marks a frame that may be handed out by the allocator.
	MemFree MemoryType = iota

	// MemBootReclaimable marks memory still holding boot-protocol data.
	// It can be reclaimed once the handoff structures are no longer
	// needed.
	MemBootReclaimable

	// MemKernelPageTables marks frames backing page table structures.
	MemKernelPageTables

	// MemKernelHeap marks frames owned by the kernel heap.
	MemKernelHeap

	// MemKernelStack marks frames backing kernel stacks.
	MemKernelStack

	// MemUser marks frames mapped into user address spaces.
	MemUser

	// MemReserved marks firmware or device memory that must never be
	// allocated.
	MemReserved
)

// String implements fmt.Stringer for MemoryType.
func (t MemoryType) String() string {
	switch t {
	case MemFree:
		return "free"
	case MemBootReclaimable:
		return "boot-reclaimable"
	case MemKernelPageTables:
		return "kernel-page-tables"
	case MemKernelHeap:
		return "kernel-heap"
	case MemKernelStack:
		return "kernel-stack"
	case MemUser:
		return "user"
	case MemReserved:
		return "reserved"
	}
	return "unknown"
}
