package irq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorAssignments(t *testing.T) {
	specs := []struct {
		vector InterruptVector
		expVal uint8
	}{
		{Spurious, 0x20},
		{LocalTimer, 0x21},
		{LocalError, 0x22},
		{Keyboard, 0x23},
		{Reschedule, 0x24},
	}

	for specIndex, spec := range specs {
		assert.EqualValues(t, spec.expVal, spec.vector, "spec %d", specIndex)
	}
}

func TestValidateVectors(t *testing.T) {
	assert.Nil(t, ValidateVectors(0x20, 0xff))
	assert.Equal(t, errVectorOutOfRange, ValidateVectors(0x30, 0xff))
	assert.Equal(t, errVectorOutOfRange, ValidateVectors(0x00, 0x23))
}
