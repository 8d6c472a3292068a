// Package pmm implements the kernel's physical frame allocator. Every
// tracked frame carries a mm.MemoryType tag and freeing a frame requires
// the caller to state the tag it expects; a mismatch is reported as an
// inspectable error instead of silently corrupting the frame accounting.
package pmm

import (
	"thalos/kernel"
	"thalos/kernel/hal/bootinfo"
	"thalos/kernel/kfmt"
	"thalos/kernel/mm"
	"thalos/kernel/sync"
)

var (
	errOutOfMemory  = &kernel.Error{Module: "pmm", Message: "out of memory"}
	errBadAllocType = &kernel.Error{Module: "pmm", Message: "cannot allocate a frame with the free tag"}
)

// FreeErrorKind enumerates the ways a FreeFrame request can be rejected.
type FreeErrorKind uint8

const (
	// FrameNotAllocated indicates the frame is not tracked by the
	// allocator at all.
	FrameNotAllocated FreeErrorKind = iota

	// WrongMemoryType indicates the frame is tracked under a different
	// tag than the caller expected.
	WrongMemoryType
)

// FreeError describes why a FreeFrame request was rejected. A failed free
// has no effect on the frame's tag.
type FreeError struct {
	Kind FreeErrorKind

	// Expected and Found are only meaningful when Kind is
	// WrongMemoryType.
	Expected mm.MemoryType
	Found    mm.MemoryType
}

// Error implements the error interface.
func (e *FreeError) Error() string {
	if e.Kind == FrameNotAllocated {
		return "frame not allocated"
	}
	return "wrong memory type: expected " + e.Expected.String() + ", found " + e.Found.String()
}

// TypedAllocator tracks the ownership tag of each usable physical frame.
// All methods serialize on an internal spinlock so concurrent cores can
// allocate and free safely; the allocator is never entered from
// non-maskable interrupt context.
type TypedAllocator struct {
	lock sync.Spinlock

	// tags maps each tracked frame to its current ownership tag.
	tags map[mm.Frame]mm.MemoryType

	// freeList holds the frames currently tagged mm.MemFree.
	freeList []mm.Frame
}

// Init seeds the allocator from the bootloader-provided memory regions.
// Usable regions become free frames; boot-reclaimable regions are tracked
// under their tag so they can be freed once the handoff data is dead.
// Reserved regions are not tracked.
func (alloc *TypedAllocator) Init(info *bootinfo.BootInfo) *kernel.Error {
	alloc.tags = make(map[mm.Frame]mm.MemoryType)

	info.VisitMemRegions(func(region *bootinfo.MemoryRegion) bool {
		if region.Type != mm.MemFree && region.Type != mm.MemBootReclaimable {
			return true
		}

		// Reported addresses may not be page-aligned; round the region
		// start up and its end down so only whole frames are tracked. A
		// region too small to contain a whole frame is skipped.
		pageSizeMinus1 := mm.PageSize - 1
		alignedStart := (region.PhysAddress + pageSizeMinus1) & ^pageSizeMinus1
		alignedEnd := (region.PhysAddress + region.Length) & ^pageSizeMinus1
		if alignedStart >= alignedEnd {
			return true
		}

		startFrame := mm.Frame(alignedStart >> mm.PageShift)
		endFrame := mm.Frame(alignedEnd>>mm.PageShift) - 1

		for frame := startFrame; frame <= endFrame; frame++ {
			alloc.tags[frame] = region.Type
			if region.Type == mm.MemFree {
				alloc.freeList = append(alloc.freeList, frame)
			}
		}
		return true
	})

	if len(alloc.freeList) == 0 {
		return errOutOfMemory
	}
	return nil
}

// AllocFrame reserves a free frame and re-tags it to memType. It returns
// an error if memType is the free tag or if no free frame remains.
func (alloc *TypedAllocator) AllocFrame(memType mm.MemoryType) (mm.Frame, *kernel.Error) {
	if memType == mm.MemFree {
		return mm.InvalidFrame, errBadAllocType
	}

	alloc.lock.Acquire()
	defer alloc.lock.Release()

	if len(alloc.freeList) == 0 {
		return mm.InvalidFrame, errOutOfMemory
	}

	frame := alloc.freeList[len(alloc.freeList)-1]
	alloc.freeList = alloc.freeList[:len(alloc.freeList)-1]
	alloc.tags[frame] = memType

	return frame, nil
}

// FreeFrame resets frame's tag to free, making it eligible for a future
// AllocFrame. The caller must state the tag it believes the frame carries:
// an untracked frame fails with FrameNotAllocated and a tag mismatch fails
// with WrongMemoryType, leaving the frame untouched in both cases.
func (alloc *TypedAllocator) FreeFrame(frame mm.Frame, expected mm.MemoryType) *FreeError {
	alloc.lock.Acquire()
	defer alloc.lock.Release()

	found, tracked := alloc.tags[frame]
	if !tracked {
		return &FreeError{Kind: FrameNotAllocated}
	}

	if found != expected {
		return &FreeError{Kind: WrongMemoryType, Expected: expected, Found: found}
	}

	if found != mm.MemFree {
		alloc.tags[frame] = mm.MemFree
		alloc.freeList = append(alloc.freeList, frame)
	}
	return nil
}

// FrameType returns the current tag of frame and whether the frame is
// tracked at all. Intended for diagnostics; the returned tag may be stale
// by the time the caller inspects it.
func (alloc *TypedAllocator) FrameType(frame mm.Frame) (mm.MemoryType, bool) {
	alloc.lock.Acquire()
	defer alloc.lock.Release()

	memType, tracked := alloc.tags[frame]
	return memType, tracked
}

// FreeFrameCount returns the number of frames currently tagged free.
func (alloc *TypedAllocator) FreeFrameCount() int {
	alloc.lock.Acquire()
	defer alloc.lock.Release()

	return len(alloc.freeList)
}

// printMemoryMap logs the memory region information handed over by the
// bootloader.
func printMemoryMap(info *bootinfo.BootInfo) {
	kfmt.Printf("[pmm] system memory map:\n")
	var totalFree uintptr
	info.VisitMemRegions(func(region *bootinfo.MemoryRegion) bool {
		kfmt.Printf("\t[0x%10x - 0x%10x], size: %10d, type: %s\n",
			region.PhysAddress, region.PhysAddress+region.Length, region.Length, region.Type.String())

		if region.Type == mm.MemFree {
			totalFree += region.Length
		}
		return true
	})
	kfmt.Printf("[pmm] available memory: %dKb\n", uint64(totalFree/1024))
}
