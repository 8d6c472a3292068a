package pmm

import (
	"thalos/kernel"
	"thalos/kernel/hal/bootinfo"
	"thalos/kernel/mm"
)

// frameAllocator is the allocator instance used by the running kernel.
var frameAllocator TypedAllocator

// Init sets up the kernel physical memory allocation sub-system using the
// memory map handed over by the boot protocol.
func Init(info *bootinfo.BootInfo) *kernel.Error {
	printMemoryMap(info)
	return frameAllocator.Init(info)
}

// AllocFrame reserves a free frame via the kernel allocator and tags it
// with memType.
func AllocFrame(memType mm.MemoryType) (mm.Frame, *kernel.Error) {
	return frameAllocator.AllocFrame(memType)
}

// FreeFrame releases a frame via the kernel allocator after verifying the
// caller's expected tag.
func FreeFrame(frame mm.Frame, expected mm.MemoryType) *FreeError {
	return frameAllocator.FreeFrame(frame, expected)
}
