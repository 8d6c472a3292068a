package time

import "thalos/kernel/cpu"

const (
	// pitFrequency is the fixed input clock of the reference counter in
	// Hz.
	pitFrequency = 1193182

	// pitCommandPort selects a channel and programs its mode;
	// pitChannel0Port reads and writes the channel 0 counter. The same
	// port pair serves both calibration and the blocking sleep
	// primitive.
	pitCommandPort  = 0x43
	pitChannel0Port = 0x40

	// pitCmdOneShot programs channel 0 for lobyte/hibyte access in
	// interrupt-on-terminal-count mode using binary counting.
	pitCmdOneShot = 0x30

	// pitCmdLatchCount latches the channel 0 count for reading.
	pitCmdLatchCount = 0x00

	// pitMaxTicks is the longest countdown the 16-bit channel supports.
	pitMaxTicks = 0xffff
)

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte
	pauseFn         = cpu.Pause
)

// referenceClock grants exclusive, serialized access to the reference
// counter's port pair. All reference counter access must go through this
// object; no other code may touch its ports.
type referenceClock struct {
	commandPort uint16
	dataPort    uint16
}

var refClock = referenceClock{
	commandPort: pitCommandPort,
	dataPort:    pitChannel0Port,
}

// Sleep busy-waits until p has elapsed on the reference clock. The wait is
// bounded by p itself: there is no cancellation and no timeout. Periods
// longer than a single 16-bit countdown are split into chunks.
func Sleep(p Period) {
	refClock.sleep(p)
}

func (c *referenceClock) sleep(p Period) {
	const maxChunkMicros = pitMaxTicks * 1000000 / pitFrequency

	for remaining := p.Micros(); remaining > 0; {
		chunk := remaining
		if chunk > maxChunkMicros {
			chunk = maxChunkMicros
		}

		c.countdown(uint16(chunk * pitFrequency / 1000000))
		remaining -= chunk
	}
}

// countdown programs channel 0 with a one-shot countdown and busy-waits
// until the counter reaches zero.
func (c *referenceClock) countdown(ticks uint16) {
	portWriteByteFn(c.commandPort, pitCmdOneShot)
	portWriteByteFn(c.dataPort, uint8(ticks))
	portWriteByteFn(c.dataPort, uint8(ticks>>8))

	for {
		portWriteByteFn(c.commandPort, pitCmdLatchCount)
		lo := portReadByteFn(c.dataPort)
		hi := portReadByteFn(c.dataPort)

		if uint16(lo)|uint16(hi)<<8 == 0 {
			return
		}

		pauseFn()
	}
}
