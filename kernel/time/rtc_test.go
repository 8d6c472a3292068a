package time

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWallClock(t *testing.T) {
	defer restorePortFns()

	var selectedReg uint8
	portWriteByteFn = func(port uint16, val uint8) {
		assert.EqualValues(t, rtcIndexPort, port)
		selectedReg = val
	}
	portReadByteFn = func(port uint16) uint8 {
		assert.EqualValues(t, rtcDataPort, port)

		// Register values are binary-coded decimal.
		switch selectedReg {
		case rtcRegHours:
			return 0x23
		case rtcRegMinutes:
			return 0x59
		case rtcRegSeconds:
			return 0x07
		}
		return 0
	}

	exp := WallClockTime{Hours: 23, Minutes: 59, Seconds: 7}
	assert.Equal(t, exp, ReadWallClock())
}

func TestBCDDecode(t *testing.T) {
	specs := []struct {
		input  uint8
		expVal uint8
	}{
		{0x00, 0},
		{0x09, 9},
		{0x10, 10},
		{0x42, 42},
		{0x59, 59},
	}

	for specIndex, spec := range specs {
		assert.Equal(t, spec.expVal, bcdDecode(spec.input), "spec %d", specIndex)
	}
}
