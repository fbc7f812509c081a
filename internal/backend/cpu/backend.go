// Package cpu implements the host platform: a single device whose memory
// pool is a fixed byte budget, running the update kernels on goroutines.
package cpu

import (
	"fmt"

	"github.com/born-ml/rprop/internal/device"
)

// DefaultMemory is the host budget used when none is configured.
const DefaultMemory = 1 << 30 // 1 GiB

// CPUBackend is the host platform. It always reports exactly one device.
type CPUBackend struct {
	budget *device.Budget
}

// New creates a host platform with a memory budget of memory bytes.
// A zero budget selects DefaultMemory.
func New(memory uint64) *CPUBackend {
	if memory == 0 {
		memory = DefaultMemory
	}
	return &CPUBackend{budget: device.NewBudget(memory)}
}

// Name returns the platform name.
func (cpu *CPUBackend) Name() string {
	return "cpu"
}

// Count returns 1.
func (cpu *CPUBackend) Count() (int, error) {
	return 1, nil
}

// MemInfo returns the unreserved and total budget of the host device.
func (cpu *CPUBackend) MemInfo(index int) (free, total uint64, err error) {
	if err := cpu.check(index); err != nil {
		return 0, 0, err
	}
	return cpu.budget.Free(), cpu.budget.Total(), nil
}

// Bind is a no-op for the host device.
func (cpu *CPUBackend) Bind(index int) error {
	return cpu.check(index)
}

// Allocator returns the host budget.
func (cpu *CPUBackend) Allocator(_ int) device.Allocator {
	return cpu.budget
}

// Budget exposes the host budget, mainly for reporting peak usage.
func (cpu *CPUBackend) Budget() *device.Budget {
	return cpu.budget
}

func (cpu *CPUBackend) check(index int) error {
	if index != 0 {
		return &device.InvalidDeviceError{Index: index, Count: 1}
	}
	return nil
}

// Compile-time check that CPUBackend implements device.Platform.
var _ device.Platform = (*CPUBackend)(nil)

// String describes the platform.
func (cpu *CPUBackend) String() string {
	return fmt.Sprintf("cpu (%d bytes)", cpu.budget.Total())
}
