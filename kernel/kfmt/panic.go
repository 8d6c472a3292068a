package kfmt

import (
	"thalos/kernel"
	"thalos/kernel/cpu"
)

var (
	// cpuHaltFn is mocked by tests.
	cpuHaltFn = cpu.Halt

	// panicHandlerFn is invoked after a panic message has been printed
	// and must never return. The fault coordinator installs itself here
	// during boot so a panic on one core stops every other core.
	panicHandlerFn func()

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// SetPanicHandler registers fn to run after a panic message has been
// printed. The handler must not return.
func SetPanicHandler(fn func()) {
	panicHandlerFn = fn
}

// Panic outputs the supplied error (if not nil) to the active output sink
// and stops the machine, either through the registered panic handler or by
// halting the current core. Calls to Panic never return.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	if panicHandlerFn != nil {
		panicHandlerFn()
	}

	cpuHaltFn()
}
