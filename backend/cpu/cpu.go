// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host platform.
//
// The host is a single device whose memory is a fixed byte budget; the
// update kernels run on goroutines.
//
//	mgr := device.NewManager(cpu.New(512 << 20))
//	ctx, err := mgr.SelectDevice(0)
package cpu

import (
	"github.com/born-ml/rprop/device"
	internalcpu "github.com/born-ml/rprop/internal/backend/cpu"
)

// CPUBackend is the host platform.
type CPUBackend = internalcpu.CPUBackend

// DefaultMemory is the budget used when New is given zero.
const DefaultMemory = internalcpu.DefaultMemory

// Compile-time check that CPUBackend implements device.Platform.
var _ device.Platform = (*CPUBackend)(nil)

// New creates the host platform with a budget of memory bytes.
func New(memory uint64) *CPUBackend {
	return internalcpu.New(memory)
}
