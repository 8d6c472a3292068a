package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIntel(t *testing.T) {
	defer func() {
		cpuidFn = ID
	}()

	specs := []struct {
		eax, ebx, ecx, edx uint32
		exp                bool
	}{
		// CPUID output from an Intel CPU
		{0xd, 0x756e6547, 0x6c65746e, 0x49656e69, true},
		// CPUID output from an AMD Athlon CPU
		{0x1, 68747541, 0x444d4163, 0x69746e65, false},
	}

	for specIndex, spec := range specs {
		cpuidFn = func(_ uint32) (uint32, uint32, uint32, uint32) {
			return spec.eax, spec.ebx, spec.ecx, spec.edx
		}

		assert.Equalf(t, spec.exp, IsIntel(), "[spec %d] IsIntel", specIndex)
	}
}

func TestHasRDTSCP(t *testing.T) {
	defer func() {
		cpuidFn = ID
	}()

	specs := []struct {
		descr  string
		maxExt uint32
		edx    uint32
		exp    bool
	}{
		{"extended leaves missing", 0x80000000, 0, false},
		{"rdtscp bit clear", 0x80000008, 0, false},
		{"rdtscp bit set", 0x80000008, 1 << 27, true},
	}

	for _, spec := range specs {
		cpuidFn = func(leaf uint32) (uint32, uint32, uint32, uint32) {
			if leaf == 0x80000000 {
				return spec.maxExt, 0, 0, 0
			}
			return 0, 0, 0, spec.edx
		}

		assert.Equal(t, spec.exp, HasRDTSCP(), spec.descr)
	}
}
