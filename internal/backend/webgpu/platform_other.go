//go:build !windows

// Package webgpu runs the weight-update kernels on a GPU through WebGPU.
// The bindings are only wired on windows; elsewhere the platform reports
// a query failure.
package webgpu

import (
	"errors"
	"runtime"

	"github.com/born-ml/rprop/internal/device"
)

var errUnsupported = errors.New("webgpu: not supported on " + runtime.GOOS)

// Platform is the WebGPU device family.
type Platform struct{}

// NewPlatform creates the platform. The memory budget is ignored.
func NewPlatform(_ uint64) *Platform {
	return &Platform{}
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return "webgpu"
}

// Count fails with a *device.QueryError.
func (p *Platform) Count() (int, error) {
	return 0, p.queryError("count", -1)
}

// MemInfo fails with a *device.QueryError.
func (p *Platform) MemInfo(index int) (free, total uint64, err error) {
	return 0, 0, p.queryError("meminfo", index)
}

// Bind fails with a *device.QueryError.
func (p *Platform) Bind(index int) error {
	return p.queryError("bind", index)
}

// Allocator returns an empty budget.
func (p *Platform) Allocator(_ int) device.Allocator {
	return device.NewBudget(0)
}

// Release is a no-op.
func (p *Platform) Release() {}

// IsAvailable reports false.
func IsAvailable() bool {
	return false
}

func (p *Platform) queryError(op string, index int) error {
	return &device.QueryError{Platform: p.Name(), Op: op, Index: index, Err: errUnsupported}
}

var _ device.Platform = (*Platform)(nil)
