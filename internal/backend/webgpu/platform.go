//go:build windows

package webgpu

import (
	"errors"
	"sync"

	"github.com/born-ml/rprop/internal/device"
)

// Platform exposes the default WebGPU adapter as a single device.
// The backend is opened on first use.
type Platform struct {
	memory uint64
	open   func(memory uint64) (*Backend, error)

	once    sync.Once
	backend *Backend
	err     error
}

// NewPlatform creates a platform whose device budget is memory bytes
// (zero selects DefaultMemory).
func NewPlatform(memory uint64) *Platform {
	return &Platform{memory: memory, open: New}
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return "webgpu"
}

// Backend opens the device if needed and returns it.
func (p *Platform) Backend() (*Backend, error) {
	p.once.Do(func() {
		p.backend, p.err = p.open(p.memory)
	})
	if p.err != nil {
		return nil, &device.QueryError{Platform: p.Name(), Op: "open", Index: 0, Err: p.err}
	}
	return p.backend, nil
}

// Count returns 1 when the default adapter opens and 0 when the library
// loads but reports no adapter. Any other open failure, including a
// missing native library, is a *device.QueryError.
func (p *Platform) Count() (int, error) {
	_, err := p.Backend()
	switch {
	case err == nil:
		return 1, nil
	case errors.Is(err, ErrNoAdapter):
		return 0, nil
	}
	return 0, err
}

// MemInfo returns the unreserved and total device budget.
func (p *Platform) MemInfo(index int) (free, total uint64, err error) {
	b, err := p.device(index)
	if err != nil {
		return 0, 0, err
	}
	return b.budget.Free(), b.budget.Total(), nil
}

// Bind opens the device.
func (p *Platform) Bind(index int) error {
	_, err := p.device(index)
	return err
}

// Allocator returns the device budget, or an empty one if the device
// cannot be opened.
func (p *Platform) Allocator(index int) device.Allocator {
	b, err := p.device(index)
	if err != nil {
		return device.NewBudget(0)
	}
	return b.budget
}

// Release frees the device if it was opened.
func (p *Platform) Release() {
	if p.backend != nil {
		p.backend.Release()
	}
}

func (p *Platform) device(index int) (*Backend, error) {
	if index != 0 {
		return nil, &device.InvalidDeviceError{Index: index, Count: 1}
	}
	return p.Backend()
}

var _ device.Platform = (*Platform)(nil)
