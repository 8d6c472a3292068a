package time

const (
	// The calendar clock exposes an index port that selects a register
	// and a data port that reads it.
	rtcIndexPort = 0x70
	rtcDataPort  = 0x71

	rtcRegSeconds = 0x00
	rtcRegMinutes = 0x02
	rtcRegHours   = 0x04
)

// calendarClock grants access to the legacy calendar clock's port pair.
// The hardware defines no synchronization for this pair; concurrent reads
// from multiple cores must be serialized by the caller.
type calendarClock struct {
	indexPort uint16
	dataPort  uint16
}

var calClock = calendarClock{
	indexPort: rtcIndexPort,
	dataPort:  rtcDataPort,
}

// WallClockTime holds a calendar clock sample.
type WallClockTime struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8
}

// ReadWallClock samples the calendar clock. The register values are
// binary-coded decimal and are decoded before being returned.
func ReadWallClock() WallClockTime {
	return WallClockTime{
		Hours:   bcdDecode(calClock.readRegister(rtcRegHours)),
		Minutes: bcdDecode(calClock.readRegister(rtcRegMinutes)),
		Seconds: bcdDecode(calClock.readRegister(rtcRegSeconds)),
	}
}

func (c *calendarClock) readRegister(reg uint8) uint8 {
	portWriteByteFn(c.indexPort, reg)
	return portReadByteFn(c.dataPort)
}

// bcdDecode converts a binary-coded-decimal register value: the low nibble
// holds the ones digit and the high nibble the tens digit.
func bcdDecode(v uint8) uint8 {
	return v&0xf + v>>4*10
}
