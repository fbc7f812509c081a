//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package webgpu

import (
	internalwebgpu "github.com/born-ml/rprop/internal/backend/webgpu"
)

// Backend runs the update kernels on one WebGPU device.
type Backend = internalwebgpu.Backend

// Buffer is a float32 array resident on the device.
type Buffer = internalwebgpu.Buffer

// New opens the high-performance adapter with a budget of memory bytes.
func New(memory uint64) (*Backend, error) {
	return internalwebgpu.New(memory)
}
