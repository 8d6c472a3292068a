// Package bootinfo defines the handoff structures that the boot-protocol
// parsing code fills in before Kmain runs. Parsing the boot protocol
// itself happens outside this subsystem; these types are the interface
// boundary it is consumed through.
package bootinfo

import "thalos/kernel/mm"

// MemoryRegion describes a contiguous physical memory region reported by
// the bootloader. Type is one of mm.MemFree, mm.MemBootReclaimable or
// mm.MemReserved; the finer-grained kernel ownership tags only appear once
// the frame allocator hands frames out.
type MemoryRegion struct {
	// PhysAddress is the physical address where the region starts. It is
	// not required to be page-aligned.
	PhysAddress uintptr

	// Length of the region in bytes.
	Length uintptr

	// Type reported by the bootloader for this region.
	Type mm.MemoryType
}

// Core describes a physical core detected during enumeration.
type Core struct {
	// ID is the kernel-assigned core index, dense in [0, len(Cores)).
	ID uint32

	// APICID is the interrupt-controller identity used to target this
	// core with inter-processor signals.
	APICID uint32

	// BootCore is true for the core that entered Kmain.
	BootCore bool
}

// BootInfo carries everything the boot protocol hands over to the kernel
// proper.
type BootInfo struct {
	Regions []MemoryRegion
	Cores   []Core
}

// VisitMemRegions invokes fn for each memory region. Iteration stops early
// if fn returns false.
func (b *BootInfo) VisitMemRegions(fn func(*MemoryRegion) bool) {
	for i := range b.Regions {
		if !fn(&b.Regions[i]) {
			return
		}
	}
}

// APICIDs returns the per-core APIC identities indexed by core ID.
func (b *BootInfo) APICIDs() []uint32 {
	ids := make([]uint32, len(b.Cores))
	for _, core := range b.Cores {
		ids[core.ID] = core.APICID
	}
	return ids
}
