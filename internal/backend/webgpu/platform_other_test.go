//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/rprop/internal/device"
)

func TestPlatformUnsupported(t *testing.T) {
	p := NewPlatform(0)
	assert.False(t, IsAvailable())

	_, err := p.Count()
	assert.ErrorIs(t, err, device.ErrDeviceQuery)

	mgr := device.NewManager(p)
	_, err = mgr.SelectDevice(0)
	assert.ErrorIs(t, err, device.ErrDeviceQuery)
	_, ok := mgr.Current()
	assert.False(t, ok)

	_, err = mgr.TotalMemory(0)
	assert.ErrorIs(t, err, device.ErrDeviceQuery)
}
