// Package cpu wraps the privileged amd64 instructions that the rest of the
// kernel needs. Each bodyless function is implemented in cpu_amd64.s.
package cpu

var (
	cpuidFn = ID
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt arrives. A
// non-maskable interrupt still wakes a halted core.
func Halt()

// Pause hints to the CPU that the caller sits in a spin-wait loop.
func Pause()

// ID returns information about the CPU and its features. It is implemented
// as a CPUID instruction with EAX=leaf and returns the values in EAX, EBX,
// ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}

// HasRDTSCP returns true if the processor implements the RDTSCP
// instruction. The check requires the extended CPUID leaf 0x80000001 to be
// present.
func HasRDTSCP() bool {
	maxExt, _, _, _ := cpuidFn(0x80000000)
	if maxExt < 0x80000001 {
		return false
	}

	_, _, _, edx := cpuidFn(0x80000001)
	return edx&(1<<27) != 0
}

// ReadTSC samples the free-running time-stamp counter. The sample is
// preceded by a load fence so earlier loads cannot be reordered past it.
func ReadTSC() uint64

// ReadTSCP samples the time-stamp counter using the serializing RDTSCP
// instruction. Only valid if HasRDTSCP returns true.
func ReadTSCP() uint64

// ReadMSR returns the contents of the model-specific register reg.
func ReadMSR(reg uint32) uint64

// WriteMSR stores val into the model-specific register reg.
func WriteMSR(reg uint32, val uint64)

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortWriteWord writes a uint16 value to the requested port.
func PortWriteWord(port uint16, val uint16)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// PortReadWord reads a uint16 value from the requested port.
func PortReadWord(port uint16) uint16
