package kmain

import (
	"thalos/device/input/keyboard"
	"thalos/kernel/cpu"
	"thalos/kernel/gate"
	"thalos/kernel/hal"
	"thalos/kernel/hal/bootinfo"
	"thalos/kernel/irq"
	"thalos/kernel/kfmt"
	"thalos/kernel/mm/pmm"
	"thalos/kernel/time"
)

// tickPeriod is the scheduling quantum programmed into each core's local
// timer.
var tickPeriod = time.Millis(10)

var (
	// apicToCore maps the interrupt-controller identity reported by the
	// CPU to the kernel's core ID. It is populated once by the boot core
	// before any other core starts and is read-only afterwards.
	apicToCore map[uint32]uint32

	cpuidFn = cpu.ID
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked on the boot core after the rt0 code
// has set up a GDT and a minimal g0 struct, with a pointer to the boot
// information collected by the loader.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the
// CPU.
//
//go:noinline
func Kmain(info *bootinfo.BootInfo) {
	kfmt.Printf("starting thalos on %d core(s)\n", len(info.Cores))

	apicToCore = make(map[uint32]uint32, len(info.Cores))
	for _, core := range info.Cores {
		apicToCore[core.APICID] = core.ID
	}

	gate.Init()
	if err := irq.ValidateVectors(irq.VectorBase, 0xff); err != nil {
		kfmt.Panic(err)
	}

	installInterruptHandlers()

	irq.InitFaultTable(info.APICIDs())
	irq.ArmCore(currentCoreID())
	kfmt.SetPanicHandler(func() {
		irq.PanicCore(currentCoreID())
	})

	if err := pmm.Init(info); err != nil {
		kfmt.Panic(err)
	}

	time.Calibrate()
	kfmt.Printf("[time] fast counter calibrated at %d Hz\n", time.Frequency())

	hal.DetectHardware()

	if err := time.ArmPeriodicTick(tickPeriod); err != nil {
		kfmt.Panic(err)
	}
	cpu.EnableInterrupts()

	for {
		cpu.Halt()
	}
}

// KmainAP is invoked on each application core once the boot core has
// finished the global initialization performed by Kmain. Like Kmain it is
// not expected to return.
//
//go:noinline
func KmainAP() {
	gate.Init()

	irq.ArmCore(currentCoreID())

	if err := time.ArmPeriodicTick(tickPeriod); err != nil {
		kfmt.Panic(err)
	}
	cpu.EnableInterrupts()

	for {
		cpu.Halt()
	}
}

// installInterruptHandlers binds the assigned interrupt vectors to their
// handlers. The handler table is shared by all cores; it is populated once
// by the boot core.
func installInterruptHandlers() {
	gate.HandleInterrupt(gate.NMI, 1, func(*gate.Registers) {
		irq.OnFaultBroadcast(currentCoreID())
	})

	gate.HandleInterrupt(gate.InterruptNumber(irq.LocalTimer), 0, func(*gate.Registers) {
		time.OnTimerInterrupt()
		time.EndOfInterrupt()
	})

	gate.HandleInterrupt(gate.InterruptNumber(irq.LocalError), 0, func(*gate.Registers) {
		kfmt.Printf("[irq] local interrupt controller error\n")
		time.EndOfInterrupt()
	})

	gate.HandleInterrupt(gate.InterruptNumber(irq.Keyboard), 0, func(*gate.Registers) {
		keyboard.ActiveDriver().OnInterrupt()
		time.EndOfInterrupt()
	})

	gate.HandleInterrupt(gate.InterruptNumber(irq.Reschedule), 0, func(*gate.Registers) {
		// Waking from the halt loop is all a reschedule request needs
		// for now.
		time.EndOfInterrupt()
	})

	// Spurious interrupts must not be acknowledged.
	gate.HandleInterrupt(gate.InterruptNumber(irq.Spurious), 0, func(*gate.Registers) {})
}

// currentCoreID returns the kernel core ID of the calling core, derived
// from the interrupt-controller identity reported by the CPU.
func currentCoreID() uint32 {
	_, _, _, apicID := cpuidFn(0x0b)
	return apicToCore[apicID]
}
