// Package keyboard provides a driver for the legacy PS/2 keyboard
// controller. The driver buffers raw scancodes pushed by the keyboard
// interrupt handler; decoding them into keysyms is left to the consumer.
package keyboard

import (
	"io"

	"thalos/device"
	"thalos/kernel"
	"thalos/kernel/cpu"
	"thalos/kernel/kfmt"
)

const (
	// kbdDataPort returns the scancode at the head of the controller's
	// output buffer; kbdStatusPort reports whether one is pending.
	kbdDataPort   = 0x60
	kbdStatusPort = 0x64

	// statusOutputFull is set while the output buffer holds a scancode.
	statusOutputFull = 1 << 0

	// scancodeBufferSize must be a power of 2. When the buffer fills up
	// the oldest scancodes are dropped.
	scancodeBufferSize = 64
)

var (
	portReadByteFn = cpu.PortReadByte

	ps2Dev = &PS2{}
)

// PS2 implements the PS/2 keyboard driver.
type PS2 struct {
	// scancodes is a single-producer ring written from the keyboard
	// interrupt handler and drained by ReadScancode.
	scancodes [scancodeBufferSize]uint8
	rIndex    uint32
	wIndex    uint32
}

// DriverName returns the name of this driver.
func (d *PS2) DriverName() string {
	return "ps2-keyboard"
}

// DriverVersion returns the version of this driver.
func (d *PS2) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver by draining any scancode left in the
// controller's output buffer by firmware.
func (d *PS2) DriverInit(w io.Writer) *kernel.Error {
	for portReadByteFn(kbdStatusPort)&statusOutputFull != 0 {
		portReadByteFn(kbdDataPort)
	}

	kfmt.Fprintf(w, "controller output buffer drained\n")
	return nil
}

// OnInterrupt reads the pending scancode off the controller and buffers
// it. It runs in the keyboard interrupt handler and must not allocate.
func (d *PS2) OnInterrupt() {
	code := portReadByteFn(kbdDataPort)

	if d.wIndex-d.rIndex == scancodeBufferSize {
		d.rIndex++
	}

	d.scancodes[d.wIndex&(scancodeBufferSize-1)] = code
	d.wIndex++
}

// ReadScancode pops the oldest buffered scancode. The second return value
// is false when the buffer is empty.
func (d *PS2) ReadScancode() (uint8, bool) {
	if d.rIndex == d.wIndex {
		return 0, false
	}

	code := d.scancodes[d.rIndex&(scancodeBufferSize-1)]
	d.rIndex++
	return code, true
}

// ActiveDriver returns the active keyboard driver instance.
func ActiveDriver() *PS2 {
	return ps2Dev
}

func probeForPS2() device.Driver {
	return ps2Dev
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForPS2,
	})
}
