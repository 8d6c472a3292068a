package hal

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"thalos/device"
	"thalos/kernel"
)

type fakeDriver struct {
	name    string
	initErr *kernel.Error
}

func (d *fakeDriver) DriverName() string                      { return d.name }
func (d *fakeDriver) DriverVersion() (uint16, uint16, uint16) { return 1, 2, 3 }
func (d *fakeDriver) DriverInit(_ io.Writer) *kernel.Error    { return d.initErr }

func TestProbeInitializesDetectedDrivers(t *testing.T) {
	defer func() { activeDrivers = nil }()

	goodDrv := &fakeDriver{name: "good"}
	badDrv := &fakeDriver{
		name:    "bad",
		initErr: &kernel.Error{Module: "bad", Message: "no hardware response"},
	}

	probe(device.DriverInfoList{
		{Probe: func() device.Driver { return goodDrv }},
		{Probe: func() device.Driver { return nil }},
		{Probe: func() device.Driver { return badDrv }},
	})

	if assert.Len(t, ActiveDrivers(), 1) {
		assert.Same(t, goodDrv, ActiveDrivers()[0])
	}
}
