package time

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodRoundTrip(t *testing.T) {
	specs := []uint64{
		0,
		1,
		1000,
		123456789,
		math.MaxUint64 - 1,
		math.MaxUint64,
	}

	for specIndex, raw := range specs {
		assert.Equal(t, raw, Period(raw).Micros(), "spec %d", specIndex)
	}

	assert.Equal(t, uint64(math.MaxUint64), MaxPeriod.Micros())
}

func TestPeriodOrdering(t *testing.T) {
	assert.True(t, Period(1) < Period(2))
	assert.True(t, Millis(1) < Millis(2))
	assert.True(t, Period(0) < MaxPeriod)
}

func TestMillis(t *testing.T) {
	specs := []struct {
		ms        uint64
		expMicros uint64
	}{
		{0, 0},
		{1, 1000},
		{120, 120000},
	}

	for specIndex, spec := range specs {
		assert.Equal(t, spec.expMicros, Millis(spec.ms).Micros(), "spec %d", specIndex)
	}
}
