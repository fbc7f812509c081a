// Package cuda exposes NVIDIA devices through the CUDA driver API.
//
// The driver library is loaded at runtime with purego, so the package builds
// without cgo and without the CUDA toolkit. Where libcuda is missing every
// query fails with a *device.QueryError.
package cuda

import (
	"sync"

	"github.com/born-ml/rprop/internal/device"
)

// driver is the subset of the driver API the platform needs.
type driver interface {
	deviceCount() (int, error)
	totalMem(index int) (uint64, error)
	memInfo(index int) (free, total uint64, err error)
	bind(index int) error
}

// Platform enumerates CUDA devices.
//
// Array storage stays in host memory; each device gets a Budget sized to its
// total memory so allocations are accounted against the selected device.
type Platform struct {
	drv     driver
	loadErr error

	mu      sync.Mutex
	budgets map[int]*device.Budget
}

// New loads the CUDA driver. It never fails; a missing driver surfaces as
// a query error from Count and MemInfo.
func New() *Platform {
	drv, err := loadDriver()
	return newPlatform(drv, err)
}

func newPlatform(drv driver, loadErr error) *Platform {
	return &Platform{
		drv:     drv,
		loadErr: loadErr,
		budgets: make(map[int]*device.Budget),
	}
}

// Available reports whether the driver library was loaded.
func (p *Platform) Available() bool {
	return p.loadErr == nil
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return "cuda"
}

// Count returns the number of CUDA devices.
func (p *Platform) Count() (int, error) {
	if p.loadErr != nil {
		return 0, p.queryError("count", -1, p.loadErr)
	}
	n, err := p.drv.deviceCount()
	if err != nil {
		return 0, p.queryError("count", -1, err)
	}
	return n, nil
}

// MemInfo returns the driver's free and total memory for device index.
func (p *Platform) MemInfo(index int) (free, total uint64, err error) {
	if p.loadErr != nil {
		return 0, 0, p.queryError("meminfo", index, p.loadErr)
	}
	free, total, err = p.drv.memInfo(index)
	if err != nil {
		return 0, 0, p.queryError("meminfo", index, err)
	}
	return free, total, nil
}

// Bind makes the primary context of index current and sizes its budget.
// The context is bound to the OS thread that happens to run Bind; it is not
// pinned to the calling goroutine.
func (p *Platform) Bind(index int) error {
	if p.loadErr != nil {
		return p.queryError("bind", index, p.loadErr)
	}
	if err := p.drv.bind(index); err != nil {
		return p.queryError("bind", index, err)
	}
	total, err := p.drv.totalMem(index)
	if err != nil {
		return p.queryError("bind", index, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.budgets[index]; !ok {
		p.budgets[index] = device.NewBudget(total)
	}
	return nil
}

// Allocator returns the budget of device index. Before Bind the budget is
// empty and every reservation fails.
func (p *Platform) Allocator(index int) device.Allocator {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok := p.budgets[index]; ok {
		return b
	}
	return device.NewBudget(0)
}

func (p *Platform) queryError(op string, index int, err error) error {
	return &device.QueryError{Platform: p.Name(), Op: op, Index: index, Err: err}
}

var _ device.Platform = (*Platform)(nil)
