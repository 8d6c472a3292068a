package gate

import (
	"io"
	"unsafe"

	"thalos/kernel/cpu"
	"thalos/kernel/kfmt"
)

// Registers contains a snapshot of all register values when an exception,
// interrupt or syscall occurs.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	// Vector is the interrupt number pushed by the gate entry stub.
	Vector uint64

	// ErrorCode is pushed by the CPU for the exceptions that define one;
	// the entry stubs push zero for everything else.
	ErrorCode uint64

	// The return frame used by IRETQ.
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// DumpTo outputs the register contents to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "RAX = %16x RBX = %16x\n", r.RAX, r.RBX)
	kfmt.Fprintf(w, "RCX = %16x RDX = %16x\n", r.RCX, r.RDX)
	kfmt.Fprintf(w, "RSI = %16x RDI = %16x\n", r.RSI, r.RDI)
	kfmt.Fprintf(w, "RBP = %16x\n", r.RBP)
	kfmt.Fprintf(w, "R8  = %16x R9  = %16x\n", r.R8, r.R9)
	kfmt.Fprintf(w, "R10 = %16x R11 = %16x\n", r.R10, r.R11)
	kfmt.Fprintf(w, "R12 = %16x R13 = %16x\n", r.R12, r.R13)
	kfmt.Fprintf(w, "R14 = %16x R15 = %16x\n", r.R14, r.R15)
	kfmt.Fprintf(w, "\n")
	kfmt.Fprintf(w, "RIP = %16x CS  = %16x\n", r.RIP, r.CS)
	kfmt.Fprintf(w, "RSP = %16x SS  = %16x\n", r.RSP, r.SS)
	kfmt.Fprintf(w, "RFL = %16x\n", r.RFlags)
}

// InterruptNumber describes an x86 interrupt/exception/trap slot.
type InterruptNumber uint8

const (
	// DivideByZero occurs when dividing any number by 0 using the DIV or
	// IDIV instruction.
	DivideByZero = InterruptNumber(0)

	// NMI (non-maskable-interrupt) is a hardware interrupt that cannot be
	// masked by the interrupt flag. The kernel reserves it for the
	// cross-core fault broadcast.
	NMI = InterruptNumber(2)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid or
	// undefined instruction opcode.
	InvalidOpcode = InterruptNumber(6)

	// DoubleFault occurs when an unhandled exception occurs or when an
	// exception occurs within a running exception handler.
	DoubleFault = InterruptNumber(8)

	// GPFException occurs when a general protection fault occurs.
	GPFException = InterruptNumber(13)

	// PageFaultException occurs when accessing a page that is not present
	// or when a privilege and/or RW protection check fails.
	PageFaultException = InterruptNumber(14)
)

const (
	// gateCount is the number of generated gate entry stubs. It covers
	// the CPU exception range plus the kernel's assigned vectors.
	gateCount = 37

	// gateStubSize is the stride between generated gate entries.
	gateStubSize = 16

	idtEntries = 256

	kernelCS = 0x08

	// 64-bit interrupt gate, DPL 0.
	typeInterruptGate = 0xe
	flagPresent       = 1 << 7
)

// gateDescriptor is a 16-byte IDT entry.
type gateDescriptor struct {
	offsetLow  uint16
	selector   uint16
	flags      uint16
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

var (
	idt [idtEntries]gateDescriptor

	// idtDescriptor is the 10-byte limit/base pair loaded via LIDT. The
	// leading padding keeps base 8-byte aligned while leaving limit and
	// base contiguous.
	idtDescriptor struct {
		_     [3]uint16
		limit uint16
		base  uint64
	}

	gateHandlers [idtEntries]func(*Registers)

	errWriter io.Writer

	cpuHaltFn = cpu.Halt
)

// Init populates the IDT with the generated gate entries and loads it to
// the CPU. All entries start out non-present; each one is enabled by a
// HandleInterrupt call.
func Init() {
	installIDT()
}

// HandleInterrupt ensures that the provided handler will be invoked when a
// particular interrupt number occurs. The value of the istOffset argument
// specifies the offset in the interrupt stack table (if 0 then IST is not
// used).
func HandleInterrupt(intNumber InterruptNumber, istOffset uint8, handler func(*Registers)) {
	// Interrupt numbers without a generated entry stub cannot be wired.
	if intNumber >= gateCount {
		return
	}

	gateHandlers[intNumber] = handler
	setGate(intNumber, istOffset, handler != nil)
}

func installIDT() {
	for num := 0; num < gateCount; num++ {
		setGate(InterruptNumber(num), 0, false)
	}

	idtDescriptor.limit = uint16(unsafe.Sizeof(idt) - 1)
	idtDescriptor.base = uint64(uintptr(unsafe.Pointer(&idt)))
	loadIDT(uintptr(unsafe.Pointer(&idtDescriptor.limit)))
}

// setGate points IDT entry num at its generated entry stub. The entry is
// marked present only when enabled.
func setGate(num InterruptNumber, istOffset uint8, enabled bool) {
	offset := uint64(gateEntryBase()) + uint64(num)*gateStubSize

	flags := uint16(istOffset&0x7) | typeInterruptGate<<8
	if enabled {
		flags |= flagPresent << 8
	}

	idt[num] = gateDescriptor{
		offsetLow:  uint16(offset),
		selector:   kernelCS,
		flags:      flags,
		offsetMid:  uint16(offset >> 16),
		offsetHigh: uint32(offset >> 32),
	}
}

// SetErrorWriter selects the destination for unhandled interrupt dumps.
func SetErrorWriter(w io.Writer) {
	errWriter = w
}

// dispatchGate routes an incoming interrupt to its registered handler. It
// is invoked by the common gate entry code with interrupts disabled.
//
//go:nosplit
func dispatchGate(regs *Registers) {
	if handler := gateHandlers[regs.Vector&0xff]; handler != nil {
		handler(regs)
		return
	}

	w := errWriter
	if w == nil {
		w = kfmt.GetOutputSink()
	}

	kfmt.Fprintf(w, "unhandled interrupt %d (error code %x)\n", regs.Vector, regs.ErrorCode)
	regs.DumpTo(w)
	cpuHaltFn()
}

// gateEntryBase returns the address of the first generated gate entry
// stub. Entry num lives at gateEntryBase() + num*gateStubSize.
func gateEntryBase() uintptr

// loadIDT loads the limit/base pair at descriptorPtr into the CPU's IDT
// register.
func loadIDT(descriptorPtr uintptr)
